// Package gradio is a client for Gradio apps such as Hugging Face Spaces.
package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-contrib/sse"

	"foodrec/internal/log"
	"foodrec/internal/session"
)

// RemoteError is an error event reported by the Gradio app.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote error"
	}
	return e.Message
}

// Client connects to Gradio apps.
type Client struct {
	httpClient *http.Client
	token      string
	paramOrder map[string][]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets a Hugging Face access token sent as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithParamOrder declares the positional parameter order of an endpoint,
// used when the app does not publish its API info.
func WithParamOrder(endpoint string, names []string) Option {
	return func(c *Client) { c.paramOrder[normalizeEndpoint(endpoint)] = names }
}

// NewClient creates a new Gradio client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		paramOrder: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var spaceSlug = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9][A-Za-z0-9._-]*$`)

// BaseURL resolves an endpoint, either an http(s) URL or a Space slug
// "owner/name", to the app's base URL.
func BaseURL(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return strings.TrimRight(endpoint, "/"), nil
	case spaceSlug.MatchString(endpoint):
		host := strings.NewReplacer("/", "-", ".", "-", "_", "-").Replace(strings.ToLower(endpoint))
		return "https://" + host + ".hf.space", nil
	default:
		return "", fmt.Errorf("invalid endpoint %q: want an http(s) URL or a Space id like owner/name", endpoint)
	}
}

// appConfig is the subset of GET /config the client needs.
type appConfig struct {
	Version   string `json:"version"`
	APIPrefix string `json:"api_prefix"`
}

// apiInfo is the subset of GET /info describing named endpoints.
type apiInfo struct {
	NamedEndpoints map[string]struct {
		Parameters []struct {
			ParameterName string `json:"parameter_name"`
			Label         string `json:"label"`
		} `json:"parameters"`
	} `json:"named_endpoints"`
}

// Connect checks that the app is reachable and learns its API layout.
func (c *Client) Connect(ctx context.Context, endpoint string) (session.Session, error) {
	base, err := BaseURL(endpoint)
	if err != nil {
		return nil, err
	}

	var cfg appConfig
	if err := c.getJSON(ctx, base+"/config", &cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", base, err)
	}

	s := &Session{
		client:  c,
		apiBase: base + strings.TrimRight(cfg.APIPrefix, "/"),
		learned: make(map[string][]string),
	}

	logger := log.WithContext(ctx, log.WithComponent("gradio"))
	var info apiInfo
	if err := c.getJSON(ctx, s.apiBase+"/info", &info); err != nil {
		logger.Debug().Err(err).Str("base", base).Msg("api info unavailable, using declared parameter order")
	} else {
		for name, ep := range info.NamedEndpoints {
			names := make([]string, 0, len(ep.Parameters))
			for _, p := range ep.Parameters {
				n := p.ParameterName
				if n == "" {
					n = p.Label
				}
				names = append(names, n)
			}
			s.learned[normalizeEndpoint(name)] = names
		}
	}

	logger.Debug().Str("base", base).Str("version", cfg.Version).Msg("connected")
	return s, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}
	return fmt.Errorf("received non-OK status code: %d: %s", resp.StatusCode, msg)
}

// Session is a connection to one Gradio app.
type Session struct {
	client  *Client
	apiBase string
	// learned holds parameter orders published by the app's /info.
	learned map[string][]string
}

// Predict calls a named endpoint with named arguments and waits for the
// result. The result is returned as {"data": outputs}.
func (s *Session) Predict(ctx context.Context, endpoint string, args map[string]any) (any, error) {
	endpoint = normalizeEndpoint(endpoint)
	order, err := s.argOrder(ctx, endpoint, args)
	if err != nil {
		return nil, err
	}
	data := make([]any, len(order))
	for i, name := range order {
		data[i] = args[name]
	}

	eventID, err := s.submit(ctx, endpoint, data)
	if err != nil {
		return nil, err
	}
	result, err := s.await(ctx, endpoint, eventID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"data": result}, nil
}

// argOrder picks the positional order for args. The order published by the
// app wins when it names every argument; otherwise the declared order is
// used. Published names missing from args with no declared order is an error.
func (s *Session) argOrder(ctx context.Context, endpoint string, args map[string]any) ([]string, error) {
	learned, hasLearned := s.learned[endpoint]
	var missing []string
	if hasLearned {
		missing = missingArgs(learned, args)
		if len(missing) == 0 {
			return learned, nil
		}
	}
	if declared, ok := s.client.paramOrder[endpoint]; ok {
		if hasLearned {
			logger := log.WithContext(ctx, log.WithComponent("gradio"))
			logger.Debug().Str("endpoint", endpoint).Strs("missing", missing).Msg("published parameters do not match arguments, using declared order")
		}
		return declared, nil
	}
	if hasLearned {
		return nil, fmt.Errorf("parameters %s of %s missing from arguments", strings.Join(missing, ", "), endpoint)
	}
	return nil, fmt.Errorf("unknown parameter order for %s", endpoint)
}

func missingArgs(names []string, args map[string]any) []string {
	var missing []string
	for _, n := range names {
		if _, ok := args[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func (s *Session) callURL(endpoint string) string {
	return s.apiBase + "/call" + endpoint
}

func (s *Session) submit(ctx context.Context, endpoint string, data []any) (string, error) {
	reqBytes, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := s.client.newRequest(ctx, http.MethodPost, s.callURL(endpoint), bytes.NewReader(reqBytes))
	if err != nil {
		return "", err
	}
	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var out struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if out.EventID == "" {
		return "", errors.New("no event id in response")
	}
	return out.EventID, nil
}

// await reads the event stream of a submitted call until it completes.
func (s *Session) await(ctx context.Context, endpoint, eventID string) (any, error) {
	req, err := s.client.newRequest(ctx, http.MethodGet, s.callURL(endpoint)+"/"+eventID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	// Gradio closes the stream once the call completes or fails.
	events, err := sse.Decode(io.LimitReader(resp.Body, maxStreamBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read event stream: %w", err)
	}
	for _, ev := range events {
		if result, done, err := eventResult(ev); done {
			return result, err
		}
	}
	return nil, errors.New("event stream ended before the call completed")
}

const maxStreamBytes = 16 << 20

// eventResult interprets one event. done is false for progress and
// heartbeat events.
func eventResult(ev sse.Event) (result any, done bool, err error) {
	payload, _ := ev.Data.(string)
	switch ev.Event {
	case "complete":
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, true, fmt.Errorf("failed to decode result: %w", err)
		}
		return result, true, nil
	case "error":
		return nil, true, &RemoteError{Message: errorMessage(payload)}
	default:
		return nil, false, nil
	}
}

// errorMessage extracts a message from an error event's data, which is
// null, a JSON string or free text.
func errorMessage(payload string) string {
	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return strings.TrimSpace(payload)
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if msg, ok := t["message"].(string); ok {
			return msg
		}
	}
	return strings.TrimSpace(payload)
}

func normalizeEndpoint(endpoint string) string {
	return "/" + strings.TrimPrefix(endpoint, "/")
}
