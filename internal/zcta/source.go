package zcta

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mountly/coverage-backend/internal/logging"
)

// Source yields the raw bytes of the boundary FeatureCollection.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// NewSource picks an HTTP or file source based on the location string.
func NewSource(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{URL: location, Client: &http.Client{Timeout: 60 * time.Second}}
	}
	return FileSource(location)
}

// FileSource reads the dataset from disk.
type FileSource string

func (f FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	return payload, nil
}

// HTTPSource downloads the dataset, typically from a static asset host.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (h *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	logging.LogRequest("zcta", http.MethodGet, h.URL, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boundary download returned HTTP %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading boundary body: %w", err)
	}
	log.Printf("[zcta] downloaded %d bytes in %dms", len(payload), time.Since(start).Milliseconds())
	return payload, nil
}
