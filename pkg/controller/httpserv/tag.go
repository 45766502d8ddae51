package httpserv

import (
	"net/http"

	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

type tagRequest struct {
	Name string `json:"name"`
}

func (x tagRequest) violations() map[string][]string {
	if x.Name == "" {
		return map[string][]string{"name": {requiredFieldMessage}}
	}
	return nil
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, info, err := s.repo.Tag().List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(model.PaginationHeader, info.Encode())
	writeJSON(r.Context(), w, http.StatusOK, tags)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	created, err := s.repo.Tag().Create(r.Context(), &model.Tag{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tag, err := s.repo.Tag().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, tag)
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.repo.Tag().Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
