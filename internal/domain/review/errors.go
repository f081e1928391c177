package review

import "errors"

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrNotReviewer         = errors.New("only the claiming reviewer may submit")
	ErrNotSubmittable      = errors.New("review is not in progress")
	ErrNotRatable          = errors.New("only submitted reviews can be rated")
	ErrNotListingOwner     = errors.New("only the listing owner may rate its review")
	ErrAlreadyRated        = errors.New("review already rated")
	ErrRatingNotFound      = errors.New("rating not found")
	ErrInvalidRubricScore  = errors.New("rubric scores must be between 1 and 5")
)
