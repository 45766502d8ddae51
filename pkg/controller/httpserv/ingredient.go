package httpserv

import (
	"net/http"

	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

type ingredientRequest struct {
	Name string `json:"name"`
}

func (x ingredientRequest) violations() map[string][]string {
	v := map[string][]string{}
	if x.Name == "" {
		v["name"] = []string{requiredFieldMessage}
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, info, err := s.repo.Ingredient().List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(model.PaginationHeader, info.Encode())
	writeJSON(r.Context(), w, http.StatusOK, ingredients)
}

func (s *Server) createIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	created, err := s.repo.Ingredient().Create(r.Context(), &model.Ingredient{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ingredient, err := s.repo.Ingredient().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etagFor(ingredient.ID, ingredient.UpdatedAt))
	writeJSON(r.Context(), w, http.StatusOK, ingredient)
}

func (s *Server) updateIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.repo.Ingredient().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireIfMatch(w, r, etagFor(current.ID, current.UpdatedAt)) {
		return
	}

	var req ingredientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	updated, err := s.repo.Ingredient().Update(r.Context(), &model.Ingredient{ID: id, Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etagFor(updated.ID, updated.UpdatedAt))
	writeJSON(r.Context(), w, http.StatusOK, updated)
}

func (s *Server) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.repo.Ingredient().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireIfMatch(w, r, etagFor(current.ID, current.UpdatedAt)) {
		return
	}

	if err := s.repo.Ingredient().Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
