package duelinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Dueline HTTP API client.
type Client struct {
	BaseURL    string
	BasePath   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// Responsible is a responsible as attached to an instrument.
type Responsible struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	Department      string `json:"department,omitempty"`
	SignatureStatus string `json:"signature_status"`
	SignatureDate   string `json:"signature_date,omitempty"`
}

type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Instrument represents the API instrument model (partial).
type Instrument struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Entities     []Entity      `json:"entities"`
	Responsibles []Responsible `json:"responsibles"`
	Status       string        `json:"status"`
	DueDate      string        `json:"due_date"`
	Priority     string        `json:"priority"`
	TypeID       string        `json:"type_id"`
	Value        *float64      `json:"value,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Urgency      string        `json:"urgency"`
	DaysUntil    int           `json:"days_until"`
}

type Movement struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Date        string `json:"date"`
	UserName    string `json:"user_name"`
}

type Metrics struct {
	Total        int            `json:"total"`
	Signed       int            `json:"signed"`
	Pending      int            `json:"pending"`
	InProgress   int            `json:"in_progress"`
	Expired      int            `json:"expired"`
	ExpiringSoon int            `json:"expiring_soon"`
	Completion   int            `json:"completion_percent"`
	ByStatus     map[string]int `json:"by_status"`
}

type PriorityItem struct {
	Instrument Instrument `json:"instrument"`
	Reason     string     `json:"reason"`
}

type Priorities struct {
	Items    []PriorityItem `json:"items"`
	Computed bool           `json:"computed"`
}

type Dashboard struct {
	GeneratedAt string       `json:"generated_at"`
	HorizonDays int          `json:"horizon_days"`
	Instruments []Instrument `json:"instruments"`
	Metrics     Metrics      `json:"metrics"`
	Priorities  Priorities   `json:"priorities"`
}

type Notification struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Kind         string `json:"kind"`
	Date         string `json:"date"`
	Read         bool   `json:"read"`
	InstrumentID string `json:"instrument_id,omitempty"`
}

// Filter narrows list, dashboard and export calls. Zero fields are ignored.
type Filter struct {
	Status      []string
	Entity      []string
	Responsible []string
	Search      string
	DueFrom     string
	DueTo       string
}

func (f Filter) query() string {
	q := url.Values{}
	set := func(key string, values ...string) {
		if v := strings.Join(values, ","); v != "" {
			q.Set(key, v)
		}
	}
	set("status", f.Status...)
	set("entity", f.Entity...)
	set("responsible", f.Responsible...)
	set("search", f.Search)
	set("due_from", f.DueFrom)
	set("due_to", f.DueTo)
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// CreateInstrumentInput is the body of CreateInstrument. DueDate takes
// YYYY-MM-DD or RFC3339.
type CreateInstrumentInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	EntityIDs      []string `json:"entity_ids,omitempty"`
	ResponsibleIDs []string `json:"responsible_ids,omitempty"`
	DueDate        string   `json:"due_date"`
	Priority       string   `json:"priority,omitempty"`
	TypeID         string   `json:"type_id"`
	Value          *float64 `json:"value,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ListInstruments returns the instruments matching f.
func (c *Client) ListInstruments(ctx context.Context, f Filter) ([]Instrument, error) {
	var resp struct {
		Items []Instrument `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "instruments"+f.query(), nil, &resp)
	return resp.Items, err
}

func (c *Client) GetInstrument(ctx context.Context, id string) (Instrument, error) {
	var resp Instrument
	err := c.do(ctx, http.MethodGet, "instruments/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// CreateInstrument creates an instrument with pending status.
func (c *Client) CreateInstrument(ctx context.Context, in CreateInstrumentInput) (Instrument, error) {
	var resp Instrument
	err := c.do(ctx, http.MethodPost, "instruments", in, &resp)
	return resp, err
}

// SetStatus moves an instrument to status, recording note on the movement.
func (c *Client) SetStatus(ctx context.Context, id, status, note string) (Instrument, error) {
	body := map[string]any{"status": status}
	if note != "" {
		body["note"] = note
	}
	var resp Instrument
	err := c.do(ctx, http.MethodPatch, "instruments/"+url.PathEscape(id), body, &resp)
	return resp, err
}

// SetSignature sets a responsible's signature. An empty status toggles it.
func (c *Client) SetSignature(ctx context.Context, instrumentID, responsibleID, status string) (Instrument, error) {
	body := map[string]any{}
	if status != "" {
		body["status"] = status
	}
	var resp Instrument
	endpoint := fmt.Sprintf("instruments/%s/responsibles/%s/signature", url.PathEscape(instrumentID), url.PathEscape(responsibleID))
	err := c.do(ctx, http.MethodPut, endpoint, body, &resp)
	return resp, err
}

func (c *Client) DeleteInstrument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "instruments/"+url.PathEscape(id), nil, nil)
}

// History returns the movements of an instrument, oldest first.
func (c *Client) History(ctx context.Context, id string) ([]Movement, error) {
	var resp struct {
		Items []Movement `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "instruments/"+url.PathEscape(id)+"/movements", nil, &resp)
	return resp.Items, err
}

func (c *Client) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	var resp Dashboard
	err := c.do(ctx, http.MethodGet, "dashboard"+f.query(), nil, &resp)
	return resp, err
}

func (c *Client) Priorities(ctx context.Context) (Priorities, error) {
	var resp Priorities
	err := c.do(ctx, http.MethodGet, "priorities", nil, &resp)
	return resp, err
}

// Notifications lists notifications, newest first.
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	endpoint := "notifications"
	if unreadOnly {
		endpoint += "?unread=true"
	}
	var resp struct {
		Items []Notification `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

func (c *Client) MarkAllRead(ctx context.Context) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodPost, "notifications/read-all", nil, &resp)
	return resp.Count, err
}

// Export downloads the filtered list as pdf, xlsx or csv.
func (c *Client) Export(ctx context.Context, format string, f Filter) ([]byte, error) {
	var buf bytes.Buffer
	err := c.do(ctx, http.MethodGet, "exports/"+url.PathEscape(format)+f.query(), nil, &buf)
	return buf.Bytes(), err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	switch dst := out.(type) {
	case nil:
		return nil
	case io.Writer:
		_, err = io.Copy(dst, resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
