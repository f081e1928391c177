package listing

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingNotOpen      = errors.New("listing is not open")
	ErrNotListingOwner     = errors.New("only the owner may act on this listing")
	ErrOwnListing          = errors.New("cannot claim your own listing")
	ErrReviewerSuspended   = errors.New("reviewer is suspended")
	ErrAlreadyReviewed     = errors.New("reviewer already has a review for this listing")
	ErrInsufficientBalance = errors.New("insufficient token balance to post")
)
