package domain

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnauthenticated    Code = "unauthenticated"
	CodePermissionDenied   Code = "permission-denied"
	CodeInvalidArgument    Code = "invalid-argument"
	CodeNotFound           Code = "not-found"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeAlreadyExists      Code = "already-exists"
	CodeInternal           Code = "internal"
)

// Error is a domain failure with a stable code and reason. Two errors match
// under errors.Is when their reasons are equal, so callers can compare against
// the sentinels below even after WithMessage.
type Error struct {
	Code    Code
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Reason == e.Reason
}

func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Reason: e.Reason, Message: fmt.Sprintf(format, args...)}
}

func NewError(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// AsError unwraps err to a domain error if it carries one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}

	return nil, false
}

var (
	ErrUnauthenticated  = NewError(CodeUnauthenticated, "UNAUTHENTICATED", "authentication required")
	ErrPermissionDenied = NewError(CodePermissionDenied, "PERMISSION_DENIED", "you do not have permission to perform this action")
	ErrInvalidArgument  = NewError(CodeInvalidArgument, "INVALID_ARGUMENT", "invalid request")
	ErrInternal         = NewError(CodeInternal, "INTERNAL", "internal server error")

	ErrEventNotFound   = NewError(CodeNotFound, "EVENT_NOT_FOUND", "event not found")
	ErrDuplicateTicket = NewError(CodeFailedPrecondition, "DUPLICATE_TICKET", "you already have a ticket for this event")
	ErrSoldOut         = NewError(CodeFailedPrecondition, "SOLD_OUT", "this event is sold out")

	ErrPaymentSetupFailed    = NewError(CodeInternal, "PAYMENT_SETUP_FAILED", "failed to set up payment")
	ErrPaymentRecordNotFound = NewError(CodeNotFound, "PAYMENT_RECORD_NOT_FOUND", "payment record not found")
	ErrAlreadyProcessed      = NewError(CodeAlreadyExists, "ALREADY_PROCESSED", "this payment has already been processed")
	ErrPaymentNotCompleted   = NewError(CodeFailedPrecondition, "PAYMENT_NOT_COMPLETED", "payment has not been completed")
	ErrUnauthorizedPayment   = NewError(CodePermissionDenied, "UNAUTHORIZED", "this payment does not belong to you")

	ErrInvalidFormat    = NewError(CodeInvalidArgument, "INVALID_FORMAT", "unrecognised ticket code")
	ErrInvalidSignature = NewError(CodeInvalidArgument, "INVALID_SIGNATURE", "ticket code failed verification")
	ErrTicketNotFound   = NewError(CodeNotFound, "TICKET_NOT_FOUND", "ticket not found")
	ErrVenueMismatch    = NewError(CodePermissionDenied, "VENUE_MISMATCH", "this ticket is for a different venue")
	ErrWrongEvent       = NewError(CodeFailedPrecondition, "WRONG_EVENT", "this ticket is for a different event")
	ErrNotEventDay      = NewError(CodeFailedPrecondition, "NOT_EVENT_DAY", "this ticket is not valid today")
	ErrTicketCancelled  = NewError(CodeFailedPrecondition, "TICKET_CANCELLED", "this ticket has been cancelled")
	ErrTicketUnusable   = NewError(CodeFailedPrecondition, "TICKET_UNUSABLE", "this ticket can no longer be used")
)
