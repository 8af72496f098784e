package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrStorage        = fmt.Errorf("message log unavailable")
	ErrEmptyMessage   = fmt.Errorf("message body is empty")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")
	ErrEmptyWords     = fmt.Errorf("no words have been found")
)
