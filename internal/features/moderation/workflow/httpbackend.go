package workflow

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

	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/pkg/response"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
)

// HTTPBackend talks to the admin moderation API
type HTTPBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPBackend creates a client for the API at baseURL (e.g.
// http://localhost:8080/api/v1) authenticated with an admin bearer token
func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListReports fetches one page of reports
func (b *HTTPBackend) ListReports(ctx context.Context, q Query) (*moderation.ReportPage, error) {
	params := url.Values{}
	params.Set("status", string(q.Scope))
	if q.Status != "" {
		params.Set("exactStatus", string(q.Status))
	}
	if q.ContentType != "" {
		params.Set("contentType", string(q.ContentType))
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if q.Sort != "" {
		params.Set("sortBy", string(q.Sort))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var page moderation.ReportPage
	if err := b.do(ctx, http.MethodGet, "/admin/reports?"+params.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListMutedUsers fetches one page of muted users
func (b *HTTPBackend) ListMutedUsers(ctx context.Context, sort moderation.MutedSort, page, limit int) (*moderation.MutedUserPage, error) {
	params := url.Values{}
	if sort != "" {
		params.Set("sortBy", string(sort))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var out moderation.MutedUserPage
	if err := b.do(ctx, http.MethodGet, "/admin/muted-users?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply submits an action to the endpoint that implements it
func (b *HTTPBackend) Apply(ctx context.Context, a Action) (*moderation.Report, error) {
	base := "/admin/reports/" + a.ReportID.Hex()

	var (
		method = http.MethodPost
		path   string
		body   any
	)
	switch a.Type {
	case moderation.ActionDismiss:
		path = base + "/dismiss"
		body = moderation.ActionReasonRequest{AdminReason: a.Reason}
	case moderation.ActionDeleteItem:
		path = base + "/delete-item"
		body = moderation.ActionReasonRequest{AdminReason: a.Reason}
	case moderation.ActionDeleteItemMuteUser:
		path = base + "/delete-item-mute-user"
		body = moderation.MuteActionRequest{AdminReason: a.Reason, MuteDurationDays: a.MuteDurationDays}
	case moderation.ActionChangeStatus:
		method = http.MethodPatch
		path = base + "/status"
		body = moderation.UpdateStatusRequest{Status: a.TargetStatus, AdminNotes: a.Reason}
	default:
		return nil, apperrors.Validation("unknown action %q", a.Type)
	}

	var report moderation.Report
	if err := b.do(ctx, method, path, body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return apperrors.Dependency(err, "moderation API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr response.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &apperrors.Error{Kind: response.StatusKind(resp.StatusCode), Message: apiErr.Error}
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
