// ABOUTME: Low-level HTTP access to the live platform's JSON APIs
// ABOUTME: Sends browser-like requests and parses envelopes with gjson

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// maxResponseBytes caps platform response bodies
	maxResponseBytes = 4 << 20
	platformTimeout  = 15 * time.Second
)

// PlatformError is a non-zero code in a platform response envelope
type PlatformError struct {
	Code    int64
	Message string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform error %d: %s", e.Code, e.Message)
}

// ErrInvalidPlatformResponse marks a body that is not the expected JSON
var ErrInvalidPlatformResponse = errors.New("invalid platform response")

type platformHTTP struct {
	client    *http.Client
	userAgent string
}

// getJSON fetches rawURL with optional query and cookie and returns the parsed body.
func (p *platformHTTP) getJSON(ctx context.Context, rawURL string, query url.Values, cookie string) (gjson.Result, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://live.bilibili.com/")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, fmt.Errorf("platform returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: not JSON", ErrInvalidPlatformResponse)
	}
	return gjson.ParseBytes(body), nil
}

// checkCode returns a PlatformError when the envelope code is non-zero.
func checkCode(res gjson.Result) error {
	code := res.Get("code")
	if !code.Exists() {
		return fmt.Errorf("%w: missing code", ErrInvalidPlatformResponse)
	}
	if code.Int() != 0 {
		msg := res.Get("message").String()
		if msg == "" {
			msg = res.Get("msg").String()
		}
		return &PlatformError{Code: code.Int(), Message: msg}
	}
	return nil
}
