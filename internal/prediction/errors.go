package prediction

import "fmt"

// APIError is the single error shape the client surfaces. Transport
// failures, non-2xx statuses and undecodable bodies all collapse into it;
// StatusCode is zero when no HTTP response was received.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("prediction api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("prediction api: %s", e.Message)
}
