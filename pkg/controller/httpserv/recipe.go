package httpserv

import (
	"errors"
	"net/http"

	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

type recipeRequest struct {
	Name        string             `json:"name"`
	Steps       string             `json:"steps"`
	Notes       string             `json:"notes"`
	Rating      int64              `json:"rating"`
	Ingredients []recipeRowRequest `json:"ingredients"`
}

type recipeRowRequest struct {
	IngredientID int64  `json:"ingredientId"`
	Amount       int64  `json:"amount"`
	Unit         string `json:"unit"`
}

func (x recipeRequest) violations() map[string][]string {
	v := map[string][]string{}
	if x.Name == "" {
		v["name"] = []string{requiredFieldMessage}
	}
	if x.Steps == "" {
		v["steps"] = []string{requiredFieldMessage}
	}
	if x.Rating < 0 || x.Rating > 5 {
		v["rating"] = []string{"Not a valid rating."}
	}
	for i, row := range x.Ingredients {
		if row.IngredientID == 0 {
			key := model.Indexed("ingredients", i, "ingredientId").String()
			v[key] = []string{requiredFieldMessage}
		}
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func (x recipeRequest) toModel(id int64) (*model.Recipe, []model.RecipeIngredient) {
	rows := make([]model.RecipeIngredient, 0, len(x.Ingredients))
	for _, row := range x.Ingredients {
		rows = append(rows, model.RecipeIngredient{
			IngredientID: row.IngredientID,
			Amount:       row.Amount,
			Unit:         row.Unit,
		})
	}
	return &model.Recipe{
		ID:     id,
		Name:   x.Name,
		Steps:  x.Steps,
		Notes:  x.Notes,
		Rating: x.Rating,
	}, rows
}

// checkRecipeReferences resolves every row's ingredient, reporting dangling
// references against the row that carries them.
func (s *Server) checkRecipeReferences(r *http.Request, req recipeRequest) (map[string][]string, error) {
	v := map[string][]string{}
	for i, row := range req.Ingredients {
		if row.IngredientID == 0 {
			continue
		}
		if _, err := s.repo.Ingredient().Get(r.Context(), row.IngredientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				key := model.Indexed("ingredients", i, "ingredientId").String()
				v[key] = []string{"Ingredient does not exist."}
				continue
			}
			return nil, err
		}
	}
	if len(v) == 0 {
		return nil, nil
	}
	return v, nil
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, info, err := s.repo.Recipe().List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set(model.PaginationHeader, info.Encode())
	writeJSON(r.Context(), w, http.StatusOK, recipes)
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}
	if v, err := s.checkRecipeReferences(r, req); err != nil {
		writeError(w, r, err)
		return
	} else if v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	recipe, rows := req.toModel(0)
	created, err := s.repo.Recipe().Create(r.Context(), recipe, rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	recipe, err := s.repo.Recipe().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etagFor(recipe.ID, recipe.UpdatedAt))
	writeJSON(r.Context(), w, http.StatusOK, recipe)
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.repo.Recipe().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireIfMatch(w, r, etagFor(current.ID, current.UpdatedAt)) {
		return
	}

	var req recipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := req.violations(); v != nil {
		writeViolations(r.Context(), w, v)
		return
	}
	if v, err := s.checkRecipeReferences(r, req); err != nil {
		writeError(w, r, err)
		return
	} else if v != nil {
		writeViolations(r.Context(), w, v)
		return
	}

	recipe, _ := req.toModel(id)
	updated, err := s.repo.Recipe().Update(r.Context(), recipe)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etagFor(updated.ID, updated.UpdatedAt))
	writeJSON(r.Context(), w, http.StatusOK, updated)
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := s.repo.Recipe().Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !requireIfMatch(w, r, etagFor(current.ID, current.UpdatedAt)) {
		return
	}

	if err := s.repo.Recipe().Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recipeIngredients(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.repo.Recipe().Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.repo.Recipe().Ingredients(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rows)
}

func (s *Server) recipeTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.repo.Recipe().Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	tags, err := s.repo.Recipe().Tags(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, tags)
}

type recipeTagsRequest struct {
	TagIDs []int64 `json:"tagIds"`
}

func (s *Server) setRecipeTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.repo.Recipe().Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	var req recipeTagsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	for _, tagID := range req.TagIDs {
		if _, err := s.repo.Tag().Get(r.Context(), tagID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeViolations(r.Context(), w, map[string][]string{
					"tagIds": {"Tag does not exist."},
				})
				return
			}
			writeError(w, r, err)
			return
		}
	}

	if err := s.repo.Recipe().SetTags(r.Context(), id, req.TagIDs); err != nil {
		writeError(w, r, err)
		return
	}

	tags, err := s.repo.Recipe().Tags(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, tags)
}
