package coverage

// Outcome is the settled result of one concurrent query: either a value or
// the error that prevented it.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

// Failed wraps an error.
func Failed[T any](err error) Outcome[T] { return Outcome[T]{Err: err} }

// OK reports whether the query produced a value.
func (o Outcome[T]) OK() bool { return o.Err == nil }
