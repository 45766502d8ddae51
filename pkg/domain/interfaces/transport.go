package interfaces

import (
	"context"
	"net/http"
	"net/url"
)

// Response is what a transport call yields: status, raw body, and headers.
// Pagination descriptors and concurrency tokens are read from the headers.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// ETag returns the concurrency token attached to the response, if any
func (r *Response) ETag() string {
	if r == nil {
		return ""
	}
	return r.Header.Get("ETag")
}

// Transport is the HTTP seam between the synchronization core and the
// backend. Implementations classify failures into the sentinel errors of
// pkg/domain/types; a canceled context surfaces as context.Canceled, which
// is not a failure. All calls honor ctx cancellation.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any, etag string) (*Response, error)
	Delete(ctx context.Context, path string, etag string) (*Response, error)
}
