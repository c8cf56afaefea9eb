package esclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// doJSON executes HTTP request and decodes JSON response of 2xx answers into out.
// Non-2xx answers return the status code and a *StatusError holding the body.
func doJSON(ctx context.Context, c ESClient, req *http.Request, out interface{}) (int, error) {
	res, err := c.Do(ctx, req)
	if err != nil {
		return 0, errors.Wrap(err, "http request failed")
	}
	defer res.Body.Close() //nolint:errcheck

	status := res.StatusCode

	if status < 200 || status > 299 {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return status, errors.Wrapf(err, "failed to read error body (status %d)", status)
		}
		return status, newStatusError(status, body)
	}

	if out == nil {
		return status, nil
	}

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return status, errors.Wrap(err, "failed to read response body")
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return status, errors.Wrapf(err, "failed to decode JSON response (status %d)", status)
	}

	return status, nil
}

// newURL creates absolute URL from base URL, path segments and query parameters.
// Segments are escaped individually, so ids may contain slashes.
func newURL(base *url.URL, q url.Values, segments ...string) *url.URL {
	u := *base

	var raw, decoded strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		decoded.WriteString("/" + s)
		raw.WriteString("/" + url.PathEscape(s))
	}
	u.Path = strings.TrimRight(base.Path, "/") + decoded.String()
	u.RawPath = strings.TrimRight(base.EscapedPath(), "/") + raw.String()
	if u.Path == "" {
		u.Path, u.RawPath = "/", ""
	}

	if q != nil {
		u.RawQuery = q.Encode()
	}
	return &u
}

// jsonBody marshals value to JSON and returns io.Reader.
func jsonBody(v interface{}) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JSON")
	}
	return bytes.NewReader(b), nil
}

// bodyOf returns raw when set, otherwise the JSON encoding of v. Both nil yields nil.
func bodyOf(raw io.Reader, v interface{}) (io.Reader, error) {
	if raw != nil {
		return raw, nil
	}
	if v == nil {
		return nil, nil
	}
	return jsonBody(v)
}

// contentTypeJSON sets Content-Type header to application/json.
func contentTypeJSON(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
}

// parseBaseURL parses and validates base URL.
func parseBaseURL(address string) (*url.URL, error) {
	if address == "" {
		return nil, errors.New("empty base URL")
	}

	u, err := url.Parse(address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("base URL must be absolute (include scheme and host)")
	}

	return u, nil
}

// params collects optional query parameters, skipping unset values.
type params url.Values

func (p params) str(key, v string) params {
	if v != "" {
		url.Values(p).Set(key, v)
	}
	return p
}

func (p params) strs(key string, v []string) params {
	if len(v) > 0 {
		url.Values(p).Set(key, strings.Join(v, ","))
	}
	return p
}

func (p params) num(key string, v *int64) params {
	if v != nil {
		url.Values(p).Set(key, strconv.FormatInt(*v, 10))
	}
	return p
}

func (p params) flag(key string, v *bool) params {
	if v != nil {
		url.Values(p).Set(key, strconv.FormatBool(*v))
	}
	return p
}

func (p params) duration(key string, d time.Duration) params {
	if d > 0 {
		url.Values(p).Set(key, formatTimeValue(d))
	}
	return p
}

func (p params) extra(m map[string]string) params {
	for k, v := range m {
		url.Values(p).Set(k, v)
	}
	return p
}

func (p params) values() url.Values {
	if len(p) == 0 {
		return nil
	}
	return url.Values(p)
}

// formatTimeValue renders d in the engine's time unit notation using the largest whole unit.
func formatTimeValue(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d <= 0:
		return "0ms"
	case d%day == 0:
		return fmt.Sprintf("%dd", d/day)
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", d/time.Second)
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// Int64 returns a pointer to v, for optional numeric request fields.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v, for optional boolean request fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
