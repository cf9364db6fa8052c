// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package snag provides an HTTP request client built around a hook
pipeline: user-supplied callbacks that run at six named points of the
request lifecycle (init, beforeRequest, beforeRedirect, beforeRetry,
afterResponse, beforeError) and can reshape the request, the response,
and the error on their way through.

Create a Client to begin making requests.

	client := &snag.Client{}
	resp, err := client.Get(ctx, "https://www.example.com")
	...
	resp, err := client.Do(ctx, request.Raw{
		"method": "POST",
		"url":    "https://www.example.com/upload",
		"json":   payload,
	})

Hooks within a phase run sequentially, in registration order, each
observing the mutations made by all earlier hooks. Register hooks on
the client's registry:

	hooks := &snag.Hooks{}
	hooks.OnInit(func(_ context.Context, raw request.Raw) error {
		if v, ok := raw["followRedirects"]; ok {
			raw["followRedirect"] = v
			delete(raw, "followRedirects")
		}
		return nil
	})
	hooks.OnAfterResponse(func(_ context.Context, resp *request.Response,
		retry snag.RetryTrigger) (*request.Response, error) {
		if resp.StatusCode == 401 {
			return retry(request.Raw{
				"headers": map[string]string{"Authorization": freshToken()},
			}), nil
		}
		return resp, nil
	})
	client := &snag.Client{Hooks: hooks}

An afterResponse hook retries by returning the value produced by the
retry trigger; the pipeline re-merges the supplied patch, re-runs init,
and makes another attempt, running beforeRetry in between. A failed
attempt runs exactly one of beforeRetry (when a retry will follow) or
beforeError (when the failure is terminal).

For control over retry decisions and timing, build a policy from
package retry; for per-attempt timeouts, use package timeout:

	client := &snag.Client{
		RetryPolicy:   retry.NewPolicy(retry.DefaultDecider, retry.NewFixedWaiter(time.Second)),
		TimeoutPolicy: timeout.Adaptive(200*time.Millisecond, 2*time.Second),
	}

Derive specialized clients without disturbing the parent: Extend copies
the hook registry and layers defaults, so registrations on the child
never reach the parent.

	api := client.Extend(request.Raw{"url": "https://api.example.com"})

Client.Stream returns the response body live instead of buffering it.
Stream mode bypasses afterResponse and beforeRetry; retries are
announced as RetryNotice values instead.

Package snag also provides basic interfaces for each client method
(Doer, Getter, Header, Poster, FormPoster, Deleter), a combined
Executor interface, and utility functions for working with a Doer
(Inflate, Get, Head, Post, PostForm, and Delete).
*/
package snag
