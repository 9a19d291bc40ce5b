package restcore

// Result is the success value of a call. Exactly one of Object and Objects is
// set, unless nothing was found at the configured key paths.
type Result[T any] struct {
	Object  *T
	Objects []T

	// RawJSON is the undecoded response body
	RawJSON   []byte
	SourceURL string

	// FromCache is true when the response came from the cache without a
	// network call. StatusCode is 0 in that case.
	FromCache  bool
	StatusCode int
}

// IsSequence reports whether the response decoded as an array
func (r *Result[T]) IsSequence() bool {
	return r.Objects != nil
}

// IsEmpty reports whether no payload was decoded
func (r *Result[T]) IsEmpty() bool {
	return r.Object == nil && r.Objects == nil
}
