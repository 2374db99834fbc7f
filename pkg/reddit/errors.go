package reddit

import (
	"github.com/pkg/errors"
)

// ErrorKind классифицирует неудачу действия бота. Снаружи все виды
// сводятся к «не получилось», но внутри их можно различить.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNotLoaded
	KindNoSession
	KindLoginFailed
	KindTransport
	KindUnexpectedResponse
	KindNoCallbackBound
	KindInvalidArgument
	KindStorage
	KindUnknown
)

var kindNames = map[ErrorKind]string{
	KindNone:               "none",
	KindNotLoaded:          "not_loaded",
	KindNoSession:          "no_session",
	KindLoginFailed:        "login_failed",
	KindTransport:          "transport",
	KindUnexpectedResponse: "unexpected_response",
	KindNoCallbackBound:    "no_callback_bound",
	KindInvalidArgument:    "invalid_argument",
	KindStorage:            "storage",
	KindUnknown:            "unknown",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error — ошибка действия бота: вид, операция и исходная причина.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is позволяет сравнивать с ErrNotLoaded и другими шаблонами по виду.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrNotLoaded          = &Error{Kind: KindNotLoaded}
	ErrNoSession          = &Error{Kind: KindNoSession}
	ErrLoginFailed        = &Error{Kind: KindLoginFailed}
	ErrTransport          = &Error{Kind: KindTransport}
	ErrUnexpectedResponse = &Error{Kind: KindUnexpectedResponse}
	ErrNoCallbackBound    = &Error{Kind: KindNoCallbackBound}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrStorage            = &Error{Kind: KindStorage}
)

func newError(op string, kind ErrorKind, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf возвращает вид ошибки; для nil — KindNone, для посторонних ошибок — KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
