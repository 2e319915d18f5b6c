package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

// maxBodySize bounds how much of an upstream response is read.
const maxBodySize = 4 << 20

// upstreamResult holds the response from a single upstream attempt.
type upstreamResult struct {
	statusCode int
	body       []byte
}

// postJSON marshals payload, posts it to endpoint and reads the response.
// Transport failures come back as KindUnavailable errors.
func postJSON(ctx context.Context, client *http.Client, name, endpoint string, headers map[string]string, payload any) (*upstreamResult, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, Unavailable(name, 0, eris.Wrap(err, "invalid backend URL"))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, Unavailable(name, 0, eris.Wrap(err, "encode request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, Unavailable(name, 0, eris.Wrap(err, "create request"))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, Unavailable(name, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, Unavailable(name, resp.StatusCode, eris.Wrap(err, "read response"))
	}

	return &upstreamResult{statusCode: resp.StatusCode, body: respBody}, nil
}

// statusError maps a non-2xx status to a tagged error. 429 and 503 are the
// overload signals of both local and hosted inference servers.
func statusError(name string, res *upstreamResult) error {
	if res.statusCode >= 200 && res.statusCode < 300 {
		return nil
	}
	msg := string(res.body)
	if len(msg) > 256 {
		msg = msg[:256]
	}
	err := eris.Errorf("upstream returned %d: %s", res.statusCode, msg)
	switch res.statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return Overloaded(name, res.statusCode, err)
	default:
		return Unavailable(name, res.statusCode, err)
	}
}
