package gatherly

import "fmt"

// APIError is returned when the platform responds with a non-2xx status.
// Message is the server-reported error string when one is present, Status is
// the HTTP status code and Body is the raw decoded response body.
type APIError struct {
	Message string
	Status  int
	Body    map[string]interface{}
}

// Error returns the server-reported message so callers can surface it to
// users unchanged.
func (e *APIError) Error() string {
	return e.Message
}

// messageFromBody picks the user-facing message out of an error response
// body, preferring the "error" key over "message".
func messageFromBody(body map[string]interface{}, status int) string {
	if msg, ok := body["error"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := body["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("API request failed with status %d", status)
}
