// Package client submits generation requests to the exam service and
// returns the raw event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/simtai/simtai/internal/exam"
)

// DefaultBaseURL is the local generation service.
const DefaultBaseURL = "http://127.0.0.1:8000"

// StatusError is a non-2xx reply from the service.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return e.Detail
}

// Client talks to the generation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. It should not set a
// total timeout, or long generations are cut off.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a Client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURLFromEnv returns SIMTAI_API_URL, or DefaultBaseURL.
func BaseURLFromEnv() string {
	if v := os.Getenv("SIMTAI_API_URL"); v != "" {
		return v
	}
	return DefaultBaseURL
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate posts req and returns the response body, positioned at the first
// frame. The caller must close it; closing aborts the stream.
func (c *Client) Generate(ctx context.Context, req exam.GenerationRequest) (io.ReadCloser, error) {
	body, contentType, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-exam", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("contacting generation service: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

// Ping checks that the service answers on its root path.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil {
		var detail string
		if json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
			return &StatusError{Code: resp.StatusCode, Detail: detail}
		}
	}
	return &StatusError{Code: resp.StatusCode, Detail: fmt.Sprintf("Error del servidor (%d)", resp.StatusCode)}
}

// encodeRequest writes the multipart form. Optional fields are omitted when
// empty.
func encodeRequest(req exam.GenerationRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = exam.DefaultDifficulty
	}
	mode := req.Mode
	if mode == "" {
		mode = "manual"
	}
	fields := []struct{ name, value string }{
		{"num_questions", strconv.Itoa(req.NumQuestions)},
		{"difficulty", string(difficulty)},
		{"mode", mode},
		{"topic", req.Topic},
		{"directory_path", req.DirectoryPath},
		{"context", req.Context},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if req.FilePath != "" {
		if err := writeFile(mw, req.FilePath); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, path string) error {
	name := filepath.Base(path)
	if !exam.AllowedUpload(name, "") {
		return fmt.Errorf("unsupported file %q: only PDF, TXT and MD are accepted", name)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening study material: %w", err)
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentTypeFor(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func contentTypeFor(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "application/pdf"
	}
	return "text/plain"
}
