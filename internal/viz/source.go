// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxConfigSize caps a visualization config document.
const MaxConfigSize = 2 * 1024 * 1024

// Source yields a raw visualization config document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// ConfigURL builds the per-thread config location on the visualization
// server: {base}/tmp_file/{threadID}/{convIdx}/visualization_config.json.
func ConfigURL(baseURL, threadID, convIdx string) string {
	return strings.TrimRight(baseURL, "/") + "/tmp_file/" +
		url.PathEscape(threadID) + "/" + url.PathEscape(convIdx) +
		"/visualization_config.json"
}

// ResolveSource maps a user-supplied location to a Source. http and https
// URLs are fetched; file:// URLs and anything else are read from disk.
func ResolveSource(location string, client *http.Client) Source {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, client)
	case strings.HasPrefix(location, "file://"):
		if u, err := url.Parse(location); err == nil {
			return &FileSource{Path: filepath.FromSlash(u.Path)}
		}
		return &FileSource{Path: strings.TrimPrefix(location, "file://")}
	}
	return &FileSource{Path: location}
}

// =============================================================================
// HTTP SOURCE
// =============================================================================

// HTTPSource GETs the config. Non-2xx responses are failures.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns a source for url. A nil client gets a 10s timeout.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{URL: url, Client: client}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch visualization config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	return readLimited(resp.Body)
}

// String implements Source.
func (s *HTTPSource) String() string { return s.URL }

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads the config from disk.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open visualization config: %w", err)
	}
	defer f.Close()
	return readLimited(f)
}

// String implements Source.
func (s *FileSource) String() string { return s.Path }

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read visualization config: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("visualization config exceeds %d bytes", MaxConfigSize)
	}
	return data, nil
}
