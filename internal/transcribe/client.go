package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"akara-desktop/internal/domain"
)

// Backend endpoint paths relative to the configured base URL.
const (
	PathHealth        = "/api/health"
	PathServiceHealth = "/api/transcription/health"
	PathLanguages     = "/api/transcription/languages"
	PathTranscribe    = "/api/transcription/transcribe"
	PathHistory       = "/api/transcription/history"
)

// DefaultTranscribeTimeout bounds a single upload including server processing.
const DefaultTranscribeTimeout = 120 * time.Second

// defaultRequestTimeout bounds the small metadata calls.
const defaultRequestTimeout = 15 * time.Second

// ErrMalformedResponse is returned when a 2xx body cannot be used.
var ErrMalformedResponse = errors.New("malformed response body")

// Client talks to the Akara transcription backend over HTTP.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	transcribeTimeout time.Duration
	requestTimeout    time.Duration
	open              func(name string) (io.ReadCloser, error)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTranscribeTimeout overrides the upload timeout.
func WithTranscribeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.transcribeTimeout = d
		}
	}
}

// WithOpener overrides how selected files are opened for upload.
func WithOpener(open func(name string) (io.ReadCloser, error)) Option {
	return func(c *Client) {
		if open != nil {
			c.open = open
		}
	}
}

// NewClient constructs a backend client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:           strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:        &http.Client{},
		transcribeTimeout: DefaultTranscribeTimeout,
		requestTimeout:    defaultRequestTimeout,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.getJSON(ctx, PathHealth, nil, &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

// ServiceHealth calls the transcription service health endpoint.
func (c *Client) ServiceHealth(ctx context.Context) (ServiceHealth, error) {
	var out ServiceHealth
	if err := c.getJSON(ctx, PathServiceHealth, nil, &out); err != nil {
		return ServiceHealth{}, err
	}
	return out, nil
}

// Languages fetches the supported source and target languages. Both maps
// must be present for the response to be usable.
func (c *Client) Languages(ctx context.Context) (domain.LanguageCatalog, error) {
	var out languagesResponse
	if err := c.getJSON(ctx, PathLanguages, nil, &out); err != nil {
		return domain.LanguageCatalog{}, err
	}
	if out.SourceLanguages == nil || out.TargetLanguages == nil {
		return domain.LanguageCatalog{}, fmt.Errorf("%s: %w: missing language map", PathLanguages, ErrMalformedResponse)
	}
	return domain.LanguageCatalog{
		Source: out.SourceLanguages,
		Target: out.TargetLanguages,
	}, nil
}

// History fetches one page of past transcriptions. A non-positive limit
// leaves the page size to the backend; offset is always sent, floored at 0.
func (c *Client) History(ctx context.Context, limit, offset int) (HistoryPage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	query.Set("offset", strconv.Itoa(max(offset, 0)))

	var out HistoryPage
	if err := c.getJSON(ctx, PathHistory, query, &out); err != nil {
		return HistoryPage{}, err
	}
	return out, nil
}

// Transcribe uploads the selected file with the chosen options and waits
// for the transcript, translation, and synthesized audio.
func (c *Client) Transcribe(ctx context.Context, req Request) (Result, error) {
	body, contentType, err := c.buildUpload(req)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.transcribeTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathTranscribe, body)
	if err != nil {
		return Result{}, fmt.Errorf("build transcribe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	var out Result
	if err := c.do(httpReq, PathTranscribe, &out); err != nil {
		return Result{}, err
	}
	return out, nil
}

// buildUpload encodes the four multipart fields the backend expects.
func (c *Client) buildUpload(req Request) (*bytes.Buffer, string, error) {
	if strings.TrimSpace(req.File.Path) == "" {
		return nil, "", fmt.Errorf("build upload: file path is required")
	}

	f, err := c.open(req.File.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read audio file: %w", err)
	}

	name := req.File.Name
	if name == "" {
		name = filepath.Base(req.File.Path)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	header.Set("Content-Type", AudioContentType(name, data))
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	fields := [][2]string{
		{"source_language", req.SourceLanguage},
		{"target_language", req.TargetLanguage},
		{"model_name", req.Model},
	}
	for _, field := range fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", field[0], err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// AudioContentType picks the part content type for an upload: sniffed audio
// type first, then the file extension, then a generic binary type.
func AudioContentType(name string, data []byte) string {
	if detected := mimetype.Detect(data); strings.HasPrefix(detected.String(), "audio/") {
		return detected.String()
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// getJSON performs a bounded GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	return c.do(httpReq, path, out)
}

// do sends the request, maps non-2xx statuses to *StatusError, and decodes
// successful bodies.
func (c *Client) do(httpReq *http.Request, endpoint string, out any) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", endpoint, ErrMalformedResponse, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
