package service

import "errors"

// WarnError marks a no-op outcome that is reported to the actor as a
// warning rather than a failure (empty consolidation selection, paying
// expenses with none unpaid). Handlers render it as 200 with a warning
// body instead of an error envelope.
type WarnError struct {
	Message string
}

func (e *WarnError) Error() string { return e.Message }

func Warn(msg string) *WarnError { return &WarnError{Message: msg} }

// AsWarn reports whether err is a warning no-op and returns it.
func AsWarn(err error) (*WarnError, bool) {
	var w *WarnError
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBookingCancelled = errors.New("booking is cancelled and read-only")
	ErrClientNotFound   = errors.New("client not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrExpenseNotFound  = errors.New("expense not found")
)
