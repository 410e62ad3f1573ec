package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrIndexOutOfRange   = fmt.Errorf("statement index out of range")
	ErrEmptyStatement    = fmt.Errorf("statement text is empty")
	ErrStatementResolved = fmt.Errorf("statement already resolved")
	ErrUnknownAction     = fmt.Errorf("unknown session action")
	ErrInvalidPayload    = fmt.Errorf("invalid payload type")
	ErrMalformedEnvelope = fmt.Errorf("malformed message envelope")
)
