// Package client is a typed HTTP client for the tour API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Hotspot struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	TargetSceneID *string `json:"targetSceneId"`
	Yaw           float64 `json:"yaw"`
	Pitch         float64 `json:"pitch"`
}

type Scene struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Hotspots []Hotspot `json:"hotspots"`
	URL      string    `json:"url,omitempty"`
}

type Tour struct {
	Slug           string  `json:"slug"`
	Title          string  `json:"title"`
	InitialSceneID *string `json:"initialSceneId"`
	Scenes         []Scene `json:"scenes"`
	FolderPath     string  `json:"folderPath"`
}

type UploadResult struct {
	Scene Scene `json:"scene"`
	Tour  Tour  `json:"tour"`
}

// SaveRequest is the full editable state of a tour.
type SaveRequest struct {
	Title          string  `json:"title"`
	InitialSceneID *string `json:"initialSceneId"`
	Scenes         []Scene `json:"scenes"`
}

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tour api: status %d", e.Status)
	}
	return fmt.Sprintf("tour api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) CreateTour(ctx context.Context, name, title string) (Tour, error) {
	body, err := json.Marshal(map[string]string{"name": name, "title": title})
	if err != nil {
		return Tour{}, err
	}
	var t Tour
	err = c.do(ctx, http.MethodPost, "/api/tours", "application/json", bytes.NewReader(body), &t)
	return t, err
}

func (c *Client) GetTour(ctx context.Context, slug string) (Tour, error) {
	var t Tour
	err := c.do(ctx, http.MethodGet, "/api/tours/"+url.PathEscape(slug), "", nil, &t)
	return t, err
}

func (c *Client) SaveTour(ctx context.Context, slug string, req SaveRequest) (Tour, error) {
	if req.Scenes == nil {
		req.Scenes = []Scene{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Tour{}, err
	}
	var t Tour
	err = c.do(ctx, http.MethodPost, "/api/tours/"+url.PathEscape(slug)+"/save", "application/json", bytes.NewReader(body), &t)
	return t, err
}

// UploadScene sends r as the "scene" multipart file. sceneName may be empty.
func (c *Client) UploadScene(ctx context.Context, slug, filename string, r io.Reader, sceneName string) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("scene", filename)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return UploadResult{}, fmt.Errorf("read scene: %w", err)
	}
	if sceneName != "" {
		if err := mw.WriteField("sceneName", sceneName); err != nil {
			return UploadResult{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, err
	}

	var res UploadResult
	err = c.do(ctx, http.MethodPost, "/api/tours/"+url.PathEscape(slug)+"/upload", mw.FormDataContentType(), &buf, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		apiErr := &Error{Status: res.StatusCode}
		var payload struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.NewDecoder(res.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		}
		return apiErr
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
