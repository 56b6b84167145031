package market

import "errors"

var (
	ErrInvalidOrder        = errors.New("invalid order parameters")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownPosition     = errors.New("unknown position")
	ErrBadSource           = errors.New("bad series source")
	ErrBadConfig           = errors.New("bad configuration")
	ErrNotFound            = errors.New("not found")
)
