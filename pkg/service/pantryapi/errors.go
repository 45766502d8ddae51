package pantryapi

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
)

// validationBody is the backend's 422 payload:
// {"errors": {"json": {"<field>": ["<message>", ...]}}}
type validationBody struct {
	Errors struct {
		JSON types.FieldViolations `json:"json"`
	} `json:"errors"`
}

// classify maps a non-2xx response onto the failure taxonomy. A 2xx response
// yields nil.
func classify(resp *interfaces.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil

	case resp.StatusCode == http.StatusNotFound:
		return goerr.Wrap(types.ErrNotFound, "not found")

	case resp.StatusCode == http.StatusUnprocessableEntity:
		var body validationBody
		if err := json.Unmarshal(resp.Body, &body); err != nil || len(body.Errors.JSON) == 0 {
			// 422 without the structured shape is still a validation failure,
			// but there is nothing to map onto fields.
			return goerr.Wrap(types.ErrValidationFailed, "unparseable validation response")
		}
		return &types.ValidationError{Violations: body.Errors.JSON}

	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusPreconditionFailed,
		resp.StatusCode == http.StatusPreconditionRequired:
		return goerr.Wrap(types.ErrPreconditionFailed, "concurrency token mismatch",
			goerr.V("status", resp.StatusCode))

	default:
		return goerr.Wrap(types.ErrUnexpected, "unexpected response",
			goerr.V("status", resp.StatusCode))
	}
}
