package auction

import "errors"

// Terminal validation and state errors. None of them is retryable, and the
// literal messages are part of the engine's compatibility surface: clients
// branch on them.
var (
	// ErrInvalidPrice rejects a creation whose starting price would decay
	// to zero or below before the window ends.
	ErrInvalidPrice = errors.New("incorrect starting price")

	// ErrInvalidDuration rejects a zero or negative auction window.
	ErrInvalidDuration = errors.New("incorrect duration")

	// ErrInvalidDiscount rejects a zero or negative discount rate.
	ErrInvalidDiscount = errors.New("incorrect discount rate")

	// ErrNotFound reports an unknown auction id.
	ErrNotFound = errors.New("auction not found")

	// ErrStopped reports an operation on an already-settled auction.
	ErrStopped = errors.New("stopped!")

	// ErrExpired reports a buy attempt past the auction's end time.
	ErrExpired = errors.New("ended!")

	// ErrInsufficientFunds reports a payment below the current price.
	ErrInsufficientFunds = errors.New("not enough funds!")
)
