package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// PaginationHeader is the name of the response header carrying PageInfo
const PaginationHeader = "X-Pagination"

// PageInfo is the pagination descriptor the backend attaches to every list
// response, JSON-encoded into the X-Pagination header.
type PageInfo struct {
	Page     int `json:"page"`
	LastPage int `json:"last_page"`
}

// HasPrev reports whether a previous page exists
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists
func (p PageInfo) HasNext() bool {
	return p.Page < p.LastPage
}

// Encode renders the header value
func (p PageInfo) Encode() string {
	raw, _ := json.Marshal(p)
	return string(raw)
}

// ParsePageInfo decodes the X-Pagination header value. An empty value is an
// error: pagination state is recomputed only from accepted responses, never
// guessed locally.
func ParsePageInfo(value string) (PageInfo, error) {
	if value == "" {
		return PageInfo{}, goerr.New("missing pagination header")
	}

	var info PageInfo
	if err := json.Unmarshal([]byte(value), &info); err != nil {
		return PageInfo{}, goerr.Wrap(err, "failed to parse pagination header", goerr.V("value", value))
	}
	if info.Page < 1 {
		info.Page = 1
	}
	if info.LastPage < 1 {
		info.LastPage = 1
	}
	return info, nil
}
