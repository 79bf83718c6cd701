// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMalformedQuery is returned when the endpoint rejects a query text.
var ErrMalformedQuery = errors.New("sparql: malformed query")

// HTTPError is returned for non-2xx endpoint responses.
type HTTPError struct {
	Status     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("sparql: request failed: %d %v: %s", e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("sparql: request failed: %d %v", e.StatusCode, e.Status)
}

// Unwrap maps 400 responses to ErrMalformedQuery.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusBadRequest {
		return ErrMalformedQuery
	}
	return nil
}

// Querier sends a query text to an endpoint and decodes the results.
// A zero timeout means no limit.
type Querier interface {
	Query(ctx context.Context, text string, timeout time.Duration) (Result, error)
}

// Client talks to a SPARQL protocol endpoint over HTTP.
type Client struct {
	addr   string
	method string
	cli    *http.Client
}

var _ Querier = (*Client)(nil)

// NewClient creates a client for the endpoint at addr. Method is GET or POST;
// anything else falls back to GET.
func NewClient(addr, method string) *Client {
	method = strings.ToUpper(method)
	if method != http.MethodPost {
		method = http.MethodGet
	}
	return &Client{addr: addr, method: method, cli: http.DefaultClient}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(cli *http.Client) {
	c.cli = cli
}

// Addr returns the endpoint address.
func (c *Client) Addr() string { return c.addr }

func (c *Client) newRequest(ctx context.Context, text string) (*http.Request, error) {
	form := url.Values{"query": {text}}
	var (
		req *http.Request
		err error
	)
	if c.method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.addr, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		addr := c.addr
		if strings.Contains(addr, "?") {
			addr += "&"
		} else {
			addr += "?"
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, addr+form.Encode(), nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", ContentType)
	return req, nil
}

// Query implements Querier. The timeout is enforced by the request context,
// so a slow endpoint is cut off by the transport rather than by the caller.
func (c *Client) Query(ctx context.Context, text string, timeout time.Duration) (Result, error) {
	if timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, text)
	if err != nil {
		return Result{}, err
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, &HTTPError{
			Status:     resp.Status,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return Decode(resp.Body)
}
