package dispute

import "errors"

var (
	ErrDisputeNotFound = errors.New("dispute not found")
	ErrAlreadyFiled    = errors.New("dispute already filed for this review")
	ErrNotResolvable   = errors.New("dispute is not resolvable")
	ErrNotDisputable   = errors.New("review is not in a disputable state")
	ErrNotListingOwner = errors.New("only the listing owner may file a dispute")
	ErrEmptyReason     = errors.New("dispute reason cannot be empty")
)
