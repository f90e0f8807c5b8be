package mws

import (
	"net/url"
	"strconv"
	"strings"
)

// Params is an insertion-ordered set of request parameters.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// ParamsFrom copies a plain map into a parameter set.
func ParamsFrom(values map[string]string) *Params {
	params := NewParams()
	for key, value := range values {
		params.Set(key, value)
	}

	return params
}

// Set adds or replaces a parameter.
func (p *Params) Set(key, value string) *Params {
	if p.values == nil {
		p.values = make(map[string]string)
	}

	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}

	p.values[key] = value

	return p
}

// With is the chaining form of Set.
func (p *Params) With(key, value string) *Params {
	return p.Set(key, value)
}

// WithList expands values into the numbered list convention:
// prefix.1, prefix.2, ...
func (p *Params) WithList(prefix string, values ...string) *Params {
	for i, value := range values {
		p.Set(prefix+"."+strconv.Itoa(i+1), value)
	}

	return p
}

// Get returns a parameter value.
func (p *Params) Get(key string) string {
	if p == nil {
		return ""
	}

	return p.values[key]
}

// Has reports whether the parameter is present.
func (p *Params) Has(key string) bool {
	if p == nil {
		return false
	}

	_, ok := p.values[key]

	return ok
}

// HasPrefix reports whether any parameter key starts with prefix.
func (p *Params) HasPrefix(prefix string) bool {
	if p == nil {
		return false
	}

	for _, key := range p.keys {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// Del removes a parameter.
func (p *Params) Del(key string) {
	if p == nil || !p.Has(key) {
		return
	}

	delete(p.values, key)

	for i, existing := range p.keys {
		if existing == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)

			break
		}
	}
}

// Keys returns parameter names in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}

	out := make([]string, len(p.keys))
	copy(out, p.keys)

	return out
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}

	return len(p.keys)
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	out := NewParams()
	if p == nil {
		return out
	}

	for _, key := range p.keys {
		out.Set(key, p.values[key])
	}

	return out
}

// ToValues converts the parameters to url.Values.
func (p *Params) ToValues() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	for _, key := range p.keys {
		values.Set(key, p.values[key])
	}

	return values
}

// CallOptions carries per-call behaviour. The zero value makes a plain,
// single-page, normalized call.
type CallOptions struct {
	// Body is sent as the request payload for upload operations.
	Body []byte
	// Raw returns the response body unprocessed.
	Raw bool
	// AutoPaginate follows continuation tokens and accumulates every page.
	AutoPaginate bool
}

// Result is what a call returns.
type Result struct {
	// Operation is the action of the last request issued.
	Operation string
	// Response is the normalized tree of the last page received. It is nil
	// for raw and non-XML responses.
	Response *Node
	// Items holds the collection extracted from every page fetched, in
	// server order.
	Items []*Node
	// NextToken is the continuation token of the last page, if any.
	NextToken string
	// Body is the raw payload for raw and non-XML responses.
	Body []byte
	// ContentType is the response Content-Type.
	ContentType string
	// RequestID is the service request id, when present.
	RequestID string
	// Pages is the number of pages fetched.
	Pages int
}

// Payload returns the <Action>Result element of the last page.
func (r *Result) Payload() *Node {
	if r == nil || r.Response == nil {
		return nil
	}

	return r.Response.Get(r.Operation + "Result")
}

// Text returns the raw body as a string.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}

	return string(r.Body)
}
