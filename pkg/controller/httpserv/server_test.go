package httpserv_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pantry-lab/sousschef/pkg/controller/httpserv"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository/memory"
)

func newServer(t *testing.T) *httpserv.Server {
	t.Helper()
	return httpserv.New(memory.New())
}

func do(t *testing.T, srv http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}

	req := httptest.NewRequest(method, path, &buf)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out)).Required()
	return out
}

type errorsBody struct {
	Errors struct {
		JSON map[string][]string `json:"json"`
	} `json:"errors"`
}

func violations(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	return decodeAs[errorsBody](t, rec).Errors.JSON
}

func ifMatch(etag string) http.Header {
	return http.Header{"If-Match": []string{etag}}
}

func TestListPagination(t *testing.T) {
	srv := newServer(t)

	for _, name := range []string{"Flour", "Sugar", "Salt"} {
		rec := do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": name}, nil)
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
	}

	rec := do(t, srv, http.MethodGet, "/ingredients/?page=2&page_size=2", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	info := gt.R1(model.ParsePageInfo(rec.Header().Get(model.PaginationHeader))).NoError(t)
	gt.Value(t, info).Equal(model.PageInfo{Page: 2, LastPage: 2})

	page := decodeAs[[]model.Ingredient](t, rec)
	gt.Array(t, page).Length(1)
	gt.Value(t, page[0].Name).Equal("Salt")
}

func TestListNameFilter(t *testing.T) {
	srv := newServer(t)

	for _, name := range []string{"Whole milk", "Oat milk", "Butter"} {
		rec := do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": name}, nil)
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
	}

	rec := do(t, srv, http.MethodGet, "/ingredients/?name=milk", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Array(t, decodeAs[[]model.Ingredient](t, rec)).Length(2)
}

func TestCreateItemValidation(t *testing.T) {
	srv := newServer(t)

	t.Run("missing required fields", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/items/", map[string]any{}, nil)
		v := violations(t, rec)
		gt.Array(t, v["name"]).Equal([]string{"Missing data for required field."})
		gt.Array(t, v["amount"]).Equal([]string{"Missing data for required field."})
	})

	t.Run("product id out of range", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/items/",
			map[string]any{"name": "Milk", "amount": 1, "productId": 1_000_000_000_000}, nil)
		v := violations(t, rec)
		gt.Array(t, v["productId"]).Equal([]string{"Not a valid product ID."})
	})

	t.Run("dangling ingredient reference", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/items/",
			map[string]any{"name": "Milk", "amount": 1, "ingredientId": 99}, nil)
		v := violations(t, rec)
		gt.Array(t, v["ingredientId"]).Equal([]string{"Ingredient does not exist."})
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/items/", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestCreateDuplicateName(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": "Sugar"}, nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": "sugar"}, nil)
	v := violations(t, rec)
	gt.Array(t, v["name"]).Equal([]string{"Name already exists."})
}

func TestConditionalUpdate(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": "Flour"}, nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decodeAs[model.Ingredient](t, rec)

	path := fmt.Sprintf("/ingredients/%d", created.ID)
	rec = do(t, srv, http.MethodGet, path, nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	etag := rec.Header().Get("ETag")
	gt.String(t, etag).NotEqual("")

	body := map[string]any{"name": "Wheat flour"}

	t.Run("missing precondition", func(t *testing.T) {
		rec := do(t, srv, http.MethodPut, path, body, nil)
		gt.Value(t, rec.Code).Equal(http.StatusPreconditionRequired)
	})

	t.Run("stale precondition", func(t *testing.T) {
		rec := do(t, srv, http.MethodPut, path, body, ifMatch(`"bogus"`))
		gt.Value(t, rec.Code).Equal(http.StatusPreconditionFailed)
	})

	t.Run("matching tag updates and rotates it", func(t *testing.T) {
		rec := do(t, srv, http.MethodPut, path, body, ifMatch(etag))
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Header().Get("ETag")).NotEqual("")
		gt.String(t, rec.Header().Get("ETag")).NotEqual(etag)
		gt.Value(t, decodeAs[model.Ingredient](t, rec).Name).Equal("Wheat flour")

		// The pre-update tag is no longer acceptable.
		rec = do(t, srv, http.MethodPut, path, body, ifMatch(etag))
		gt.Value(t, rec.Code).Equal(http.StatusPreconditionFailed)
	})

	t.Run("wildcard always matches", func(t *testing.T) {
		rec := do(t, srv, http.MethodPut, path, map[string]any{"name": "Rye flour"}, ifMatch("*"))
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})
}

func TestConditionalDelete(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/items/", map[string]any{"name": "Honey", "amount": 1}, nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decodeAs[model.Item](t, rec)

	path := fmt.Sprintf("/items/%d", created.ID)
	rec = do(t, srv, http.MethodGet, path, nil, nil)
	etag := rec.Header().Get("ETag")

	rec = do(t, srv, http.MethodDelete, path, nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusPreconditionRequired)

	rec = do(t, srv, http.MethodDelete, path, nil, ifMatch(etag))
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = do(t, srv, http.MethodGet, path, nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestRecipeValidation(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": "Flour"}, nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	flour := decodeAs[model.Ingredient](t, rec)

	t.Run("row violations carry indexed keys", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/recipes/", map[string]any{
			"name":  "Pancakes",
			"steps": "Mix and fry.",
			"ingredients": []map[string]any{
				{"ingredientId": flour.ID, "amount": 200},
				{"amount": 300},
			},
		}, nil)
		v := violations(t, rec)
		gt.Array(t, v["ingredients[1].ingredientId"]).Equal([]string{"Missing data for required field."})
	})

	t.Run("dangling row reference", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/recipes/", map[string]any{
			"name":  "Pancakes",
			"steps": "Mix and fry.",
			"ingredients": []map[string]any{
				{"ingredientId": 999, "amount": 200},
			},
		}, nil)
		v := violations(t, rec)
		gt.Array(t, v["ingredients[0].ingredientId"]).Equal([]string{"Ingredient does not exist."})
	})

	t.Run("rating range", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/recipes/", map[string]any{
			"name":   "Pancakes",
			"steps":  "Mix and fry.",
			"rating": 9,
		}, nil)
		v := violations(t, rec)
		gt.Array(t, v["rating"]).Equal([]string{"Not a valid rating."})
	})
}

func TestRecipeAssociations(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/ingredients/", map[string]any{"name": "Flour"}, nil)
	flour := decodeAs[model.Ingredient](t, rec)

	rec = do(t, srv, http.MethodPost, "/recipes/", map[string]any{
		"name":  "Pancakes",
		"steps": "Mix and fry.",
		"ingredients": []map[string]any{
			{"ingredientId": flour.ID, "amount": 200, "unit": "g"},
		},
	}, nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	recipe := decodeAs[model.Recipe](t, rec)

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/recipes/%d/ingredients", recipe.ID), nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	rows := decodeAs[[]model.RecipeIngredient](t, rec)
	gt.Array(t, rows).Length(1)
	gt.Value(t, rows[0]).Equal(model.RecipeIngredient{IngredientID: flour.ID, Amount: 200, Unit: "g"})

	tagsPath := fmt.Sprintf("/recipes/%d/tags", recipe.ID)

	t.Run("unknown tag is a violation", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, tagsPath, map[string]any{"tagIds": []int64{42}}, nil)
		v := violations(t, rec)
		gt.Array(t, v["tagIds"]).Equal([]string{"Tag does not exist."})
	})

	t.Run("associating known tags returns the set", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/tags/", map[string]any{"name": "breakfast"}, nil)
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
		tag := decodeAs[model.Tag](t, rec)

		rec = do(t, srv, http.MethodPost, tagsPath, map[string]any{"tagIds": []int64{tag.ID}}, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		tags := decodeAs[[]model.Tag](t, rec)
		gt.Array(t, tags).Length(1)
		gt.Value(t, tags[0].Name).Equal("breakfast")

		rec = do(t, srv, http.MethodGet, tagsPath, nil, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeAs[[]model.Tag](t, rec)).Length(1)
	})
}

func TestPathIDValidation(t *testing.T) {
	srv := newServer(t)

	for _, path := range []string{"/items/abc", "/items/0", "/items/-3", "/items/999"} {
		rec := do(t, srv, http.MethodGet, path, nil, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httpserv.New(memory.New(), httpserv.WithMetrics(httpserv.NewMetrics()))

	rec := do(t, srv, http.MethodGet, "/ingredients/", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = do(t, srv, http.MethodGet, "/metrics", nil, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("sousschef_http_requests_total")
}
