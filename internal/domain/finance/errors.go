package finance

import "errors"

var (
	ErrRecordNotFound = errors.New("receipt/payment record not found")
	ErrEditForbidden  = errors.New("only admin can modify receipts and payments")
)
