package preview

import (
	"maps"
	"net/url"
)

// Query parameter names.
const (
	ParamData  = "data"
	ParamToken = "h"
)

// RenderRequest is an immutable preview request.
type RenderRequest struct {
	content  string
	token    string
	hasToken bool
	options  RawOptions
}

// NewRenderRequest creates a request. An empty token means none was
// supplied. The options map is copied.
func NewRenderRequest(content, token string, options RawOptions) RenderRequest {
	return RenderRequest{
		content:  content,
		token:    token,
		hasToken: token != "",
		options:  maps.Clone(options),
	}
}

// RequestFromQuery builds a request from URL query values. The first value
// of each recognized option is used. A missing data parameter is a
// BadRequest naming it. An h parameter counts as supplied even when its
// value is empty, and is kept verbatim.
func RequestFromQuery(q url.Values) (RenderRequest, error) {
	if !q.Has(ParamData) {
		return RenderRequest{}, newError(KindBadRequest,
			"missing required parameter: "+ParamData, "", ErrMissingData)
	}

	raw := make(RawOptions, 6)
	for _, k := range []string{OptECL, OptMargin, OptWidth, OptDark, OptLight, OptFormat} {
		if q.Has(k) {
			raw[k] = q.Get(k)
		}
	}

	return RenderRequest{
		content:  q.Get(ParamData),
		token:    q.Get(ParamToken),
		hasToken: q.Has(ParamToken),
		options:  raw,
	}, nil
}

// Content returns the payload to encode.
func (r RenderRequest) Content() string { return r.content }

// Token returns the integrity token as supplied.
func (r RenderRequest) Token() string { return r.token }

// HasToken reports whether an integrity token was supplied.
func (r RenderRequest) HasToken() bool { return r.hasToken }

// Options returns a copy of the raw options.
func (r RenderRequest) Options() RawOptions { return maps.Clone(r.options) }
