package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client calls peer services over their /invoke endpoints. A destination
// that cannot be reached or does not answer in time resolves to a typed
// outcome, never an untyped transport error.
type Client struct {
	http   *http.Client
	sender string
}

func NewClient(sender string) *Client {
	return &Client{
		http:   &http.Client{},
		sender: sender,
	}
}

type syncResponse struct {
	Status string      `json:"status"`
	ID     string      `json:"id"`
	Result interface{} `json:"result"`
}

// CallSync posts data to the destination's synchronous endpoint and returns
// the delivered result. The timeout travels in the request body (seconds) so
// the remote wait and the local deadline agree; the local context gets a
// small grace window on top.
func (c *Client) CallSync(ctx context.Context, baseURL string, data map[string]interface{}, timeout time.Duration) (interface{}, error) {
	body := map[string]interface{}{
		"id":       uuid.NewString(),
		"sender":   c.sender,
		"metadata": data,
		"timeout":  timeout.Seconds(),
	}
	ctx, cancel := context.WithTimeout(ctx, timeout+2*time.Second)
	defer cancel()

	resp, err := c.post(ctx, baseURL+"/invoke/sync", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &CallError{Code: CodeMalformedPayload, Detail: fmt.Sprintf("bad response from %s: %v", baseURL, err)}
	}
	if decoded.Status == "timeout" || resp.StatusCode == http.StatusGatewayTimeout {
		return nil, &CallError{Code: CodeTimeout, Detail: "no response within " + timeout.String()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &CallError{Code: CodeUnreachable, Detail: fmt.Sprintf("%s returned HTTP %d", baseURL, resp.StatusCode)}
	}
	return decoded.Result, nil
}

// CallAsync posts fire-and-forget and returns the accepted envelope id.
func (c *Client) CallAsync(ctx context.Context, baseURL string, data map[string]interface{}) (string, error) {
	body := map[string]interface{}{
		"id":       uuid.NewString(),
		"sender":   c.sender,
		"metadata": data,
	}
	resp, err := c.post(ctx, baseURL+"/invoke/async", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var decoded struct {
		AcceptedID string `json:"accepted_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &CallError{Code: CodeMalformedPayload, Detail: err.Error()}
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", &CallError{Code: CodeUnreachable, Detail: fmt.Sprintf("%s returned HTTP %d", baseURL, resp.StatusCode)}
	}
	return decoded.AcceptedID, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]interface{}) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &CallError{Code: CodeMalformedPayload, Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, &CallError{Code: CodeUnreachable, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(url, err)
	}
	return resp, nil
}

func classifyTransportError(url string, err error) *CallError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &CallError{Code: CodeTimeout, Detail: url + " did not respond in time"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &CallError{Code: CodeTimeout, Detail: url + " did not respond in time"}
	}
	return &CallError{Code: CodeUnreachable, Detail: fmt.Sprintf("%s unreachable: %v", url, err)}
}
