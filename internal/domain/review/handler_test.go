package review_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/domain/review"
	"github.com/scriptswap/scriptswap-api/internal/pkg/response"
)

func passthroughAuth(next http.Handler) http.Handler {
	return next
}

/* ==============================
   Test: Lookup Review By Listing
   ============================== */

func TestGetReviewByListingRoute(t *testing.T) {
	env := setupTestEnv(t)
	defer cleanupTestEnv(env)

	_, _, rv := claimedReview(t, env)

	router := review.NewHandler(env.reviews).Routes(passthroughAuth)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/?listing_id=%s", rv.ListingID), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool                  `json:"success"`
		Data    review.ReviewResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.ID != rv.ID.String() {
		t.Fatalf("expected review %s, got %s", rv.ID, body.Data.ID)
	}
	if body.Data.ListingID != rv.ListingID.String() {
		t.Fatalf("expected listing %s, got %s", rv.ListingID, body.Data.ListingID)
	}

	// A listing with no review is a 404, not an empty body.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/?listing_id=%s", uuid.New()), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var errBody struct {
		Error *response.ErrorInfo `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errBody.Error == nil || errBody.Error.Code != "review_not_found" {
		t.Fatalf("expected review_not_found, got %+v", errBody.Error)
	}

	// A malformed listing_id never reaches the service.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/?listing_id=not-a-uuid", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
