package teams

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/cmlabs-hris/teams-worktime/internal/config"
	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/metrics"
)

const maxBodyBytes = 8 << 20

// Client calls the Teams attendance detail endpoint.
type Client struct {
	httpClient *http.Client
	apiURL     string
	appKey     string
	userAgent  string
}

// NewClient creates a client from the Teams configuration
func NewClient(cfg config.TeamsConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiURL:     cfg.APIURL,
		appKey:     cfg.AppKey,
		userAgent:  cfg.UserAgent,
	}
}

type calendarResponse struct {
	Code int    `json:"code"`
	Data *struct {
		CalendarList []attendance.RawCalendarEntry `json:"calendarList"`
	} `json:"data"`
	Message string `json:"message"`
}

func (c *Client) newRequest(ctx context.Context, creds attendance.Credentials, cycle string) (*http.Request, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid teams API url: %w", err)
	}

	q := u.Query()
	q.Set("emCode", creds.EmCode)
	q.Set("attDate", "")
	q.Set("cycle", cycle)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build teams request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("AppKey", c.appKey)
	req.Header.Set("Authorization", creds.Authorization)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// Forward performs the upstream call and returns the raw status and body.
func (c *Client) Forward(ctx context.Context, creds attendance.Credentials, cycle string) (int, []byte, error) {
	req, err := c.newRequest(ctx, creds, cycle)
	if err != nil {
		return 0, nil, err
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("transport_error", started)
		return 0, nil, fmt.Errorf("teams request for cycle %s failed: %w", cycle, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ObserveUpstream("transport_error", started)
		return resp.StatusCode, nil, fmt.Errorf("failed to read teams response for cycle %s: %w", cycle, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveUpstream("http_error", started)
	} else {
		metrics.ObserveUpstream("ok", started)
	}

	return resp.StatusCode, body, nil
}

// FetchCalendar returns the calendar entries of one cycle ("YYYY-MM").
func (c *Client) FetchCalendar(ctx context.Context, creds attendance.Credentials, cycle string) ([]attendance.RawCalendarEntry, error) {
	status, body, err := c.Forward(ctx, creds, cycle)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &StatusError{StatusCode: status, Body: string(body), Cycle: cycle}
	}

	return decodeCalendar(body, cycle)
}

func decodeCalendar(body []byte, cycle string) ([]attendance.RawCalendarEntry, error) {
	var payload calendarResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.UpstreamPayloadErrors.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("failed to decode teams response for cycle %s: %w", cycle, err)
	}

	if payload.Code != 0 {
		metrics.UpstreamPayloadErrors.WithLabelValues("api_error").Inc()
		message := payload.Message
		if message == "" {
			message = defaultAPIMessage
		}
		return nil, &APIError{Code: payload.Code, Message: message, Cycle: cycle}
	}

	if payload.Data == nil || payload.Data.CalendarList == nil {
		return []attendance.RawCalendarEntry{}, nil
	}

	return payload.Data.CalendarList, nil
}

// IsUnauthorized reports whether err means the upstream refused the credentials.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Unauthorized()
}
