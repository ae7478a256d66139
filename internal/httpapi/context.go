package httpapi

import (
	"context"
)

// serverBaseCtx is cancelled on process shutdown. Handlers derive from it so
// in-progress generations stop with the server.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context; nil resets to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives from a and is additionally cancelled when b is done.
// The cancel func must be called when the handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
