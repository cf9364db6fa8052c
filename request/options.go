// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/http/httpguts"
)

var template, _ = http.NewRequest("GET", "", nil)

// Raw option names recognized by Normalize. Any other key present in a
// Raw configuration at normalization time is an error, so init hooks
// are the place to translate or remove foreign keys.
const (
	OptMethod           = "method"
	OptURL              = "url"
	OptHeaders          = "headers"
	OptBody             = "body"
	OptJSON             = "json"
	OptContext          = "context"
	OptFollowRedirect   = "followRedirect"
	OptMaxRedirects     = "maxRedirects"
	OptRetry            = "retry"
	OptTimeout          = "timeout"
	OptThrowHTTPErrors  = "throwHttpErrors"
	OptRerunInitOnRetry = "rerunInitOnRetry"
	OptHost             = "host"
	OptClose            = "close"
)

// DefaultMaxRedirects bounds redirect following when the maxRedirects
// option is not set.
const DefaultMaxRedirects = 10

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Raw is an unvalidated, untyped option mapping, as supplied by the
// caller or produced by merging a caller patch over client defaults.
//
// A Raw is owned exclusively by the init hook phase: init hooks may
// add, rewrite, or delete keys freely. After the init phase the mapping
// is normalized into a typed *Options via Normalize, and all later
// phases see only the Options.
type Raw map[string]interface{}

// Clone returns a copy of the raw configuration. Nested headers and
// context mappings are copied one level deep; other values are shared.
func (r Raw) Clone() Raw {
	if r == nil {
		return nil
	}
	c := make(Raw, len(r))
	for k, v := range r {
		switch k {
		case OptHeaders:
			c[k] = cloneHeaderValue(v)
		case OptContext:
			if m, ok := v.(map[string]interface{}); ok {
				c[k] = cloneContext(m)
				continue
			}
			c[k] = v
		default:
			c[k] = v
		}
	}
	return c
}

// Merge combines a patch of raw options over a base, returning a new
// Raw. Neither input is mutated. The headers and context keys merge
// entry-wise; every other key in patch replaces the base value
// outright.
func Merge(base, patch Raw) Raw {
	merged := base.Clone()
	if merged == nil {
		merged = make(Raw, len(patch))
	}
	for k, v := range patch {
		switch k {
		case OptHeaders:
			merged[k] = mergeHeaderValues(merged[k], v)
		case OptContext:
			merged[k] = mergeContextValues(merged[k], v)
		default:
			merged[k] = v
		}
	}
	return merged
}

// Options is a normalized, validated request configuration. One
// Options instance is shared by reference across the beforeRequest,
// beforeRedirect, beforeRetry and afterResponse phases of a request,
// and hooks may mutate it in place; the mutation is visible to every
// subsequently invoked hook and to the transport call.
type Options struct {
	// Method is the HTTP method. Normalize defaults it to GET.
	Method string

	// URL is the parsed target URL. Never nil after Normalize.
	URL *urlpkg.URL

	// Header contains the request header fields to send.
	Header http.Header

	// Body is the pre-buffered request body. Empty means no body.
	Body []byte

	// Context is an arbitrary bag of caller-defined data, shared by
	// all hook phases of one request. It is never nil after Normalize.
	Context map[string]interface{}

	// FollowRedirect controls whether 3xx responses carrying a
	// Location header are followed. Normalize defaults it to true.
	FollowRedirect bool

	// MaxRedirects bounds the redirect chain when FollowRedirect is
	// set. Normalize defaults it to DefaultMaxRedirects.
	MaxRedirects int

	// RetryLimit is the maximum number of retries after the initial
	// attempt. Zero disables retrying regardless of retry policy.
	RetryLimit int

	// Timeout, when positive, overrides the client's timeout policy
	// for each attempt of this request.
	Timeout time.Duration

	// ThrowHTTPErrors treats a terminal non-2xx/3xx response as a
	// failure instead of a successful execution.
	ThrowHTTPErrors bool

	// RerunInitOnRetry controls whether stream-mode retries re-merge
	// the raw configuration and re-run init hooks before the next
	// attempt.
	RerunInitOnRetry bool

	// Host optionally overrides the Host header. If empty, URL.Host
	// is sent.
	Host string

	// Close stipulates closing the connection after each attempt.
	Close bool
}

// Normalize validates a raw configuration and produces typed Options.
//
// A key outside the recognized option names, or a value of the wrong
// type for its key, is an error. The url option is required. The json
// option encodes its value as the request body and sets the
// Content-Type header, and is mutually exclusive with body.
func Normalize(raw Raw) (*Options, error) {
	o := &Options{
		Method:         "GET",
		Header:         make(http.Header),
		Context:        make(map[string]interface{}),
		FollowRedirect: true,
		MaxRedirects:   DefaultMaxRedirects,
		RetryLimit:     DefaultRetryLimit,
	}
	var sawBody, sawJSON bool
	for k, v := range raw {
		switch k {
		case OptMethod:
			s, ok := v.(string)
			if !ok {
				return nil, typeError(k, "string", v)
			}
			if s == "" {
				s = "GET"
			}
			if !httpguts.ValidHeaderFieldName(s) {
				return nil, fmt.Errorf("snag/request: invalid method %q", s)
			}
			o.Method = s
		case OptURL:
			switch u := v.(type) {
			case string:
				parsed, err := urlpkg.Parse(u)
				if err != nil {
					return nil, err
				}
				o.URL = parsed
			case *urlpkg.URL:
				o.URL = cloneURL(u)
			default:
				return nil, typeError(k, "string or *url.URL", v)
			}
		case OptHeaders:
			h, err := headerValue(v)
			if err != nil {
				return nil, err
			}
			for name, vals := range h {
				o.Header[name] = append([]string(nil), vals...)
			}
		case OptBody:
			b, err := BodyBytes(v)
			if err != nil {
				return nil, err
			}
			o.Body = b
			sawBody = true
		case OptJSON:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			o.Body = b
			o.Header.Set("Content-Type", "application/json")
			sawJSON = true
		case OptContext:
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, typeError(k, "map[string]interface{}", v)
			}
			for name, val := range m {
				o.Context[name] = val
			}
		case OptFollowRedirect:
			if err := boolOpt(k, v, &o.FollowRedirect); err != nil {
				return nil, err
			}
		case OptMaxRedirects:
			if err := intOpt(k, v, &o.MaxRedirects); err != nil {
				return nil, err
			}
		case OptRetry:
			if err := intOpt(k, v, &o.RetryLimit); err != nil {
				return nil, err
			}
		case OptTimeout:
			d, ok := v.(time.Duration)
			if !ok {
				return nil, typeError(k, "time.Duration", v)
			}
			o.Timeout = d
		case OptThrowHTTPErrors:
			if err := boolOpt(k, v, &o.ThrowHTTPErrors); err != nil {
				return nil, err
			}
		case OptRerunInitOnRetry:
			if err := boolOpt(k, v, &o.RerunInitOnRetry); err != nil {
				return nil, err
			}
		case OptHost:
			s, ok := v.(string)
			if !ok {
				return nil, typeError(k, "string", v)
			}
			o.Host = s
		case OptClose:
			if err := boolOpt(k, v, &o.Close); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("snag/request: unknown option %q", k)
		}
	}
	if sawBody && sawJSON {
		return nil, fmt.Errorf("snag/request: body and json options are mutually exclusive")
	}
	if o.URL == nil {
		return nil, fmt.Errorf("snag/request: missing url option")
	}
	if o.Host == "" {
		o.Host = o.URL.Host
	}
	if o.RetryLimit < 0 {
		o.RetryLimit = 0
	}
	if o.MaxRedirects < 0 {
		o.MaxRedirects = 0
	}
	return o, nil
}

// DefaultRetryLimit is the retry budget applied when the retry option
// is not set.
const DefaultRetryLimit = 2

// ToRequest creates the HTTP request for one attempt against the
// current state of the options. The context of the new request is set
// to ctx, which may not be nil.
func (o *Options) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = o.Method
	r.URL = o.URL
	r.Header = o.Header
	if len(o.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(o.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(o.Body)), nil
		}
		r.ContentLength = int64(len(o.Body))
	}
	r.Close = o.Close
	r.Host = o.Host
	return r
}

func cloneURL(u *urlpkg.URL) *urlpkg.URL {
	if u == nil {
		return nil
	}
	u2 := *u
	if u.User != nil {
		user := *u.User
		u2.User = &user
	}
	return &u2
}

func typeError(key, want string, got interface{}) error {
	return fmt.Errorf("snag/request: option %q requires %s, got %T", key, want, got)
}

func boolOpt(key string, v interface{}, dst *bool) error {
	b, ok := v.(bool)
	if !ok {
		return typeError(key, "bool", v)
	}
	*dst = b
	return nil
}

func intOpt(key string, v interface{}, dst *int) error {
	n, ok := v.(int)
	if !ok {
		return typeError(key, "int", v)
	}
	*dst = n
	return nil
}

// headerValue accepts either an http.Header or a flat
// map[string]string for the headers option.
func headerValue(v interface{}) (http.Header, error) {
	switch h := v.(type) {
	case http.Header:
		return h, nil
	case map[string]string:
		out := make(http.Header, len(h))
		for name, val := range h {
			out.Set(name, val)
		}
		return out, nil
	default:
		return nil, typeError(OptHeaders, "http.Header or map[string]string", v)
	}
}

func cloneHeaderValue(v interface{}) interface{} {
	switch h := v.(type) {
	case http.Header:
		out := make(http.Header, len(h))
		for name, vals := range h {
			out[name] = append([]string(nil), vals...)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(h))
		for name, val := range h {
			out[name] = val
		}
		return out
	default:
		return v
	}
}

func cloneContext(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeHeaderValues(base, patch interface{}) interface{} {
	if base == nil {
		return cloneHeaderValue(patch)
	}
	bh, err := headerValue(base)
	if err != nil {
		return patch
	}
	ph, err := headerValue(patch)
	if err != nil {
		return patch
	}
	out := make(http.Header, len(bh)+len(ph))
	for name, vals := range bh {
		out[name] = append([]string(nil), vals...)
	}
	for name, vals := range ph {
		out[name] = append([]string(nil), vals...)
	}
	return out
}

func mergeContextValues(base, patch interface{}) interface{} {
	bm, bok := base.(map[string]interface{})
	pm, pok := patch.(map[string]interface{})
	if !bok || !pok {
		return patch
	}
	out := make(map[string]interface{}, len(bm)+len(pm))
	for k, v := range bm {
		out[k] = v
	}
	for k, v := range pm {
		out[k] = v
	}
	return out
}
