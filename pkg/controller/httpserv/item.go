package httpserv

import (
	"errors"
	"net/http"

	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

const maxProductID = 999_999_999_999

type itemRequest struct {
	Name         string `json:"name"`
	Amount       *int64 `json:"amount"`
	ProductID    *int64 `json:"productId"`
	IngredientID *int64 `json:"ingredientId"`
}

func (x itemRequest) violations() map[string][]string {
	v := map[string][]string{}
	if x.Name == "" {
		v["name"] = []string{requiredFieldMessage}
	}
	if x.Amount == nil {
		v["amount"] = []string{requiredFieldMessage}
	}
	if x.ProductID != nil && (*x.ProductID < 0 || *x.ProductID > maxProductID) {
		v["productId"] = []string{"Not a valid product ID."}
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func (x itemRequest) toModel(id int64) *model.Item {
	item := &model.Item{
		ID:           id,
		Name:         x.Name,
		ProductID:    x.ProductID,
		IngredientID: x.IngredientID,
	}
	if x.Amount != nil {
		item.Amount = *x.Amount
	}
	return item
}

// checkItemReference verifies that a referenced ingredient exists, turning a
// dangling ingredientId into a field violation rather than a server error.
func (s *Server) checkItemReference(r *http.Request, req itemRequest) (map[string][]string, error) {
	if req.IngredientID == nil {
		return nil, nil
	}
	if _, err := s.repo.Ingredient().Get(r.Context(), *req.IngredientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return map[string][]string{
				"ingredientId": {"Ingredient does not exist."},
			}, nil
		}
		return nil, err
	}
	return nil, nil
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.repo.Item().List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(model.PaginationHeader, info.Encode())
	writeJSON(r.Context(), w, http.StatusOK, items)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}
	if v, err := s.checkItemReference(r, req); err != nil {
		writeError(w, r, err)
		return
	} else if v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	created, err := s.repo.Item().Create(r.Context(), req.toModel(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := s.repo.Item().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etagFor(item.ID, item.UpdatedAt))
	writeJSON(r.Context(), w, http.StatusOK, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.repo.Item().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireIfMatch(w, r, etagFor(current.ID, current.UpdatedAt)) {
		return
	}

	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}
	if v, err := s.checkItemReference(r, req); err != nil {
		writeError(w, r, err)
		return
	} else if v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	updated, err := s.repo.Item().Update(r.Context(), req.toModel(id))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etagFor(updated.ID, updated.UpdatedAt))
	writeJSON(r.Context(), w, http.StatusOK, updated)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.repo.Item().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireIfMatch(w, r, etagFor(current.ID, current.UpdatedAt)) {
		return
	}

	if err := s.repo.Item().Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
