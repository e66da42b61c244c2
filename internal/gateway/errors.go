package gateway

// invalidRequestError signals an enqueue request the gateway cannot accept,
// for 400 mapping in the HTTP layer.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

func (invalidRequestError) StatusCode() int { return 400 }

// IsInvalidRequest reports whether err indicates a malformed enqueue request.
func IsInvalidRequest(err error) bool {
	_, ok := err.(invalidRequestError)
	return ok
}
