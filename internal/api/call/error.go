package call

import "errors"

var (
	ErrCallNotFound     = errors.New("call session not found")
	ErrSessionExpired   = errors.New("call session expired")
	ErrDuplicateTurn    = errors.New("another turn for this call is still being processed")
	ErrCallAlreadyEnded = errors.New("call has already ended")
)
