package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/ports"
)

// maxBodyBytes bounds the dataset download. Larger bodies are refused rather
// than cut, since a truncated CSV still decodes.
var maxBodyBytes int64 = 256 << 20

// New picks a source for uri: http(s) URLs are downloaded, file:// URLs and
// plain paths are read from disk.
func New(uri string, timeout time.Duration) (ports.DatasetSource, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse source %q: %w", uri, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(uri, &http.Client{Timeout: timeout}), nil
	case "file":
		return NewFileSource(u.Path), nil
	case "":
		return NewFileSource(uri), nil
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

// HTTPSource downloads the dataset over HTTP(S).
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a new HTTPSource.
func NewHTTPSource(rawURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &HTTPSource{url: rawURL, client: client}
}

func (s *HTTPSource) Key() string { return s.url }

// Fetch downloads the whole body. Any failure wraps domain.ErrSourceUnavailable.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for %s", domain.ErrSourceUnavailable, resp.StatusCode, s.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrSourceUnavailable, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body of %s exceeds %d bytes", domain.ErrSourceUnavailable, s.url, maxBodyBytes)
	}
	return body, nil
}

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a new FileSource.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Key() string { return "file://" + s.path }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return data, nil
}
