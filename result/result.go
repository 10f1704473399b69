// Package result provides the tri-state value used to report the lifecycle of one fetch.
package result

// DefaultErrorMessage is used when a fault carries no description
const DefaultErrorMessage = "An error occurred"

// Kind identifies which variant of a Result is active
type Kind int

// Result variants
const (
	KindLoading Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is one of Loading, Success(data) or Error(message).
// The zero value is Loading.
type Result[T any] struct {
	kind    Kind
	data    T
	message string
}

// Loading returns the in-progress variant
func Loading[T any]() Result[T] {
	return Result[T]{kind: KindLoading}
}

// Success wraps fetched data
func Success[T any](data T) Result[T] {
	return Result[T]{kind: KindSuccess, data: data}
}

// Error wraps a human-readable failure message. An empty message is
// replaced with DefaultErrorMessage.
func Error[T any](message string) Result[T] {
	if message == "" {
		message = DefaultErrorMessage
	}
	return Result[T]{kind: KindError, message: message}
}

// Kind returns the active variant
func (r Result[T]) Kind() Kind {
	return r.kind
}

// IsLoading reports whether r is the Loading variant
func (r Result[T]) IsLoading() bool {
	return r.kind == KindLoading
}

// IsTerminal reports whether r is Success or Error
func (r Result[T]) IsTerminal() bool {
	return r.kind == KindSuccess || r.kind == KindError
}

// Data returns the wrapped data and true for Success, the zero value and false otherwise
func (r Result[T]) Data() (T, bool) {
	return r.data, r.kind == KindSuccess
}

// Message returns the failure message and true for Error
func (r Result[T]) Message() (string, bool) {
	return r.message, r.kind == KindError
}

// Handlers holds one callback per variant. Match panics on a missing
// handler so that every consumer has to deal with every variant.
type Handlers[T, S any] struct {
	Loading func() S
	Success func(data T) S
	Error   func(message string) S
}

// Match dispatches r to the handler for its active variant
func Match[T, S any](r Result[T], h Handlers[T, S]) S {
	if h.Loading == nil || h.Success == nil || h.Error == nil {
		panic("result: Match requires a handler for every variant")
	}
	switch r.kind {
	case KindLoading:
		return h.Loading()
	case KindSuccess:
		return h.Success(r.data)
	case KindError:
		return h.Error(r.message)
	default:
		panic("result: unknown kind " + r.kind.String())
	}
}
