package adapter

import (
	"strconv"
	"time"
)

// parseRetryAfter parses a Retry-After header in delay-seconds form.
// HTTP-date values and negative or unparseable input yield zero.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
