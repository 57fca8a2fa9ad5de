package notify

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrRateLimited is wrapped by senders when the provider asks the caller to slow down
var ErrRateLimited = errors.New("rate limited")

// IsRateLimited reports whether err is a "too many requests" signal, either wrapped
// ErrRateLimited or a Google API error with a rate limit code or reason
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}
