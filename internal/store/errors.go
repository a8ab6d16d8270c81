package store

import "errors"

// Domain errors returned by wallet and redemption operations. Handlers match
// these with errors.Is to render inline failures; anything else is treated as
// fatal for the request.
var (
	ErrNotFound          = errors.New("not found")
	ErrRewardUnavailable = errors.New("reward unavailable")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOutOfStock        = errors.New("out of stock")
)
