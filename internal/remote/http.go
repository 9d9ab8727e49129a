package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
)

// TokenSource supplies the current bearer token for outbound requests.
type TokenSource func(ctx context.Context) (string, error)

// HTTPStore talks to a REST backend exposing one resource per collection:
//
//	POST   {base}/v1/{collection}          -> {"id": "...", "updatedAt": "..."}
//	PATCH  {base}/v1/{collection}/{id}
//	DELETE {base}/v1/{collection}/{id}
//	GET    {base}/v1/{collection}?ownerId= -> [{"id": ..., "updatedAt": ..., ...fields}]
type HTTPStore struct {
	baseURL string
	token   TokenSource
	client  *http.Client
}

func NewHTTPStore(baseURL string, token TokenSource) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}
	req.Header.Set(common.AuthHeaderName, "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return nil, common.ErrConflict
	default:
		return nil, fmt.Errorf("%w: %s: %s", common.ErrRejected, resp.Status, string(data))
	}
}

type createResponse struct {
	ID string `json:"id"`
}

func (s *HTTPStore) Create(ctx context.Context, collection string, payload map[string]any, idempotencyKey string) (string, error) {
	headers := map[string]string{common.IdempotencyKeyHeaderName: idempotencyKey}
	data, err := s.do(ctx, http.MethodPost, "/v1/"+collection, payload, headers)
	if err != nil {
		return "", err
	}
	var cr createResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}
	if cr.ID == "" {
		return "", fmt.Errorf("%w: create returned no id", common.ErrRejected)
	}
	return cr.ID, nil
}

func (s *HTTPStore) Update(ctx context.Context, collection, remoteID string, payload map[string]any) error {
	_, err := s.do(ctx, http.MethodPatch, "/v1/"+collection+"/"+url.PathEscape(remoteID), payload, nil)
	return err
}

func (s *HTTPStore) Delete(ctx context.Context, collection, remoteID string) error {
	_, err := s.do(ctx, http.MethodDelete, "/v1/"+collection+"/"+url.PathEscape(remoteID), nil, nil)
	return err
}

func (s *HTTPStore) Query(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	path := "/v1/" + collection
	if filter.OwnerID != "" {
		path += "?ownerId=" + url.QueryEscape(filter.OwnerID)
	}

	data, err := s.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}

	result := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromFields(row)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

func recordFromFields(fields map[string]any) (Record, error) {
	id, _ := fields["id"].(string)
	if id == "" {
		return Record{}, fmt.Errorf("%w: query row missing id", common.ErrRejected)
	}

	var updatedAt time.Time
	if raw, ok := fields["updatedAt"].(string); ok {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Record{}, fmt.Errorf("failed to parse updatedAt: %w", err)
		}
		updatedAt = ts
	}

	delete(fields, "id")
	delete(fields, "updatedAt")
	return Record{ID: id, UpdatedAt: updatedAt, Fields: fields}, nil
}
