package httpapi

import (
	"golang.org/x/time/rate"
)

const defaultMaxBodyBytes int64 = 1 << 20

// maxBodyBytes caps request bodies on JSON endpoints.
var maxBodyBytes = defaultMaxBodyBytes

// SetMaxBodyBytes sets the request body cap; n <= 0 restores the 1 MiB default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
		return
	}
	maxBodyBytes = n
}

// CORS configuration (opt-in). With no origins no CORS middleware is added.
var (
	corsAllowedOrigins []string
	corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	corsAllowedHeaders = []string{"Content-Type", "X-Request-Id", "X-Log-Level"}
)

// SetCORSOrigins enables CORS for the given origins; an empty list disables it.
func SetCORSOrigins(origins []string) {
	corsAllowedOrigins = append([]string(nil), origins...)
}

// chatLimit throttles POST /chat when non-nil.
var chatLimit *rateLimit

type rateLimit struct {
	rps   rate.Limit
	burst int
}

// SetChatRateLimit enables a token bucket on POST /chat. rps <= 0 disables it.
// The limiter is shared by all clients: the engine serves one generation at a time.
func SetChatRateLimit(rps float64, burst int) {
	if rps <= 0 {
		chatLimit = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	chatLimit = &rateLimit{rps: rate.Limit(rps), burst: burst}
}
