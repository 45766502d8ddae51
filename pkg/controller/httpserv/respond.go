package httpserv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/repository"
	"github.com/pantry-lab/sousschef/pkg/utils/errutil"
	"github.com/pantry-lab/sousschef/pkg/utils/safe"
)

const requiredFieldMessage = "Missing data for required field."

// validationBody is the 422 response shape: field violations keyed under
// errors.json, matching what schema-validating backends emit.
type validationBody struct {
	Errors struct {
		JSON map[string][]string `json:"json"`
	} `json:"errors"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		errutil.Handle(ctx, err, "failed to encode response body")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, raw)
}

func writeStatus(ctx context.Context, w http.ResponseWriter, status int) {
	writeJSON(ctx, w, status, map[string]any{
		"code":   status,
		"status": http.StatusText(status),
	})
}

func writeViolations(ctx context.Context, w http.ResponseWriter, violations map[string][]string) {
	var body validationBody
	body.Errors.JSON = violations
	writeJSON(ctx, w, http.StatusUnprocessableEntity, body)
}

// writeError maps repository failures onto wire statuses. Duplicate names
// surface as a validation violation on the name field so clients render them
// inline like any other field error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeStatus(ctx, w, http.StatusNotFound)
	case errors.Is(err, repository.ErrDuplicateName):
		writeViolations(ctx, w, map[string][]string{
			"name": {"Name already exists."},
		})
	default:
		errutil.Handle(ctx, err, "request failed")
		writeStatus(ctx, w, http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeStatus(r.Context(), w, http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeStatus(r.Context(), w, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// listFilter reads the query parameters of a listing request. Paging
// parameters are optional: their absence means the first default-sized page.
func listFilter(r *http.Request) interfaces.ListFilter {
	q := r.URL.Query()

	f := interfaces.ListFilter{Name: q.Get("name")}
	if raw := q.Get("productId"); raw != "" {
		if pid, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.ProductID = &pid
		}
	}
	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			f.Page = page
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			f.PageSize = size
		}
	}
	return f
}

// etagFor derives the entity tag of a resource from its identity and last
// modification. A changed UpdatedAt always changes the tag.
func etagFor(id int64, updatedAt time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", id, updatedAt.UTC().Format(time.RFC3339Nano)))
	return strconv.Quote(hex.EncodeToString(sum[:8]))
}

// requireIfMatch enforces conditional mutation: a missing If-Match header is
// rejected with 428, a stale one with 412.
func requireIfMatch(w http.ResponseWriter, r *http.Request, etag string) bool {
	provided := r.Header.Get("If-Match")
	if provided == "" {
		writeStatus(r.Context(), w, http.StatusPreconditionRequired)
		return false
	}
	if provided != etag && provided != "*" {
		writeStatus(r.Context(), w, http.StatusPreconditionFailed)
		return false
	}
	return true
}
