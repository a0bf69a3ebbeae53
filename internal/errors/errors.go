package errors

import "errors"

var ErrAmountRequired = errors.New("Amount is required")
var ErrTransactionIDRequired = errors.New("merchant transaction id is required")
var ErrEventNotFound = errors.New("event not found")
var ErrInvalidRequest = errors.New("invalid request")
var ErrEmailRequired = errors.New("email is required")
