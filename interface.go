// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"
	"net/url"

	"github.com/snaghttp/snag/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a request described by a raw configuration, running the
// hook pipeline around it, and returns the final response (and error,
// if any). Client implements Doer, and any other implementation must
// behave substantially the same as Client.Do.
type Doer interface {
	Do(ctx context.Context, raw request.Raw) (*request.Response, error)
}

// Getter is the interface that wraps the basic Get method. Client
// implements Getter; any Doer can emulate one via the Get function.
type Getter interface {
	Get(ctx context.Context, url string) (*request.Response, error)
}

// Header is the interface that wraps the basic Head method. Client
// implements Header; any Doer can emulate one via the Head function.
type Header interface {
	Head(ctx context.Context, url string) (*request.Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// The body parameter may be nil for an empty body, or any of the types
// supported by request.BodyBytes: string, []byte, io.Reader, or
// io.ReadCloser.
type Poster interface {
	Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
type FormPoster interface {
	PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error)
}

// Deleter is the interface that wraps the basic Delete method. Client
// implements Deleter; any Doer can emulate one via the Delete function.
type Deleter interface {
	Delete(ctx context.Context, url string) (*request.Response, error)
}

// Executor is the interface that groups the basic Do, Get, Head, Post,
// PostForm, and Delete methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Header
	Poster
	FormPoster
	Deleter
}

// Get uses the specified Doer to issue a GET to the specified URL.
//
// To set headers or other options, build a request.Raw and use d.Do.
func Get(ctx context.Context, d Doer, url string) (*request.Response, error) {
	return d.Do(ctx, request.Raw{request.OptURL: url})
}

// Head uses the specified Doer to issue a HEAD to the specified URL.
func Head(ctx context.Context, d Doer, url string) (*request.Response, error) {
	return d.Do(ctx, request.Raw{
		request.OptMethod: "HEAD",
		request.OptURL:    url,
	})
}

// Post uses the specified Doer to issue a POST to the specified URL.
//
// The body parameter may be nil for an empty body, or any of the types
// supported by request.BodyBytes: string, []byte, io.Reader, or
// io.ReadCloser.
func Post(ctx context.Context, d Doer, url, contentType string, body interface{}) (*request.Response, error) {
	b, err := request.BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return d.Do(ctx, request.Raw{
		request.OptMethod:  "POST",
		request.OptURL:     url,
		request.OptBody:    b,
		request.OptHeaders: map[string]string{"Content-Type": contentType},
	})
}

// PostForm uses the specified Doer to issue a POST to the specified
// URL with data's keys and values URL-encoded as the request body.
func PostForm(ctx context.Context, d Doer, url string, data url.Values) (*request.Response, error) {
	return Post(ctx, d, url, "application/x-www-form-urlencoded", data.Encode())
}

// Delete uses the specified Doer to issue a DELETE to the specified
// URL.
func Delete(ctx context.Context, d Doer, url string) (*request.Response, error) {
	return d.Do(ctx, request.Raw{
		request.OptMethod: "DELETE",
		request.OptURL:    url,
	})
}

// Get issues a GET to the specified URL, using the same pipeline and
// policies as Do.
func (c *Client) Get(ctx context.Context, url string) (*request.Response, error) {
	return Get(ctx, c, url)
}

// Head issues a HEAD to the specified URL, using the same pipeline and
// policies as Do.
func (c *Client) Head(ctx context.Context, url string) (*request.Response, error) {
	return Head(ctx, c, url)
}

// Post issues a POST to the specified URL, using the same pipeline and
// policies as Do.
//
// The body parameter may be nil for an empty body, or any of the types
// supported by request.BodyBytes: string, []byte, io.Reader, or
// io.ReadCloser.
func (c *Client) Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error) {
	return Post(ctx, c, url, contentType, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body and the Content-Type header
// set to application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error) {
	return PostForm(ctx, c, url, data)
}

// Delete issues a DELETE to the specified URL, using the same pipeline
// and policies as Do.
func (c *Client) Delete(ctx context.Context, url string) (*request.Response, error) {
	return Delete(ctx, c, url)
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that
// only has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("snag: nil doer")
	}
	if e, ok := d.(Executor); ok {
		return e
	}
	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(ctx context.Context, raw request.Raw) (*request.Response, error) {
	return i.doer.Do(ctx, raw)
}

func (i inflated) Get(ctx context.Context, url string) (*request.Response, error) {
	return Get(ctx, i.doer, url)
}

func (i inflated) Head(ctx context.Context, url string) (*request.Response, error) {
	return Head(ctx, i.doer, url)
}

func (i inflated) Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error) {
	return Post(ctx, i.doer, url, contentType, body)
}

func (i inflated) PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error) {
	return PostForm(ctx, i.doer, url, data)
}

func (i inflated) Delete(ctx context.Context, url string) (*request.Response, error) {
	return Delete(ctx, i.doer, url)
}
