package recommend

import "errors"

// Kind classifies a pipeline failure.
type Kind int

const (
	// SessionEstablishment means no session could be created for the endpoint.
	SessionEstablishment Kind = iota + 1
	// RemoteCall means the predict call on an established session failed.
	RemoteCall
)

func (k Kind) String() string {
	switch k {
	case SessionEstablishment:
		return "session_error"
	case RemoteCall:
		return "remote_error"
	default:
		return "unknown"
	}
}

// fallbackMessage is surfaced when the underlying error carries no text.
const fallbackMessage = "failed to fetch recommendations"

var (
	ErrSessionEstablishment = errors.New("session establishment failed")
	ErrRemoteCall           = errors.New("remote call failed")
)

// Error is the single error a failed recommendation request surfaces.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = fallbackMessage
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrSessionEstablishment and ErrRemoteCall by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSessionEstablishment:
		return e.Kind == SessionEstablishment
	case ErrRemoteCall:
		return e.Kind == RemoteCall
	}
	return false
}
