package manager

import (
	"fmt"
	"math"

	"localmind/internal/common/hostinfo"
)

const (
	minEngineThreads = 2
	maxEngineThreads = 4
)

// engineThreads is clamp(2, 4, floor(hw * 0.75)).
func engineThreads(hw int) int {
	return hostinfo.Clamp(int(math.Floor(float64(hw)*0.75)), minEngineThreads, maxEngineThreads)
}

// approxTokens estimates four bytes per token.
func approxTokens(text string) int { return len(text) / 4 }

func systemInfo(name string, threads int, gpu bool) string {
	accel := "NO"
	if gpu {
		accel = "YES"
	}
	return fmt.Sprintf("%s\nThreads: %d\nGPU: %s", name, threads, accel)
}
