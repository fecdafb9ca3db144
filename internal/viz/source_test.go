// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigURL(t *testing.T) {
	got := ConfigURL("http://viz.local:8103/", "thread-1", "1")
	assert.Equal(t, "http://viz.local:8103/tmp_file/thread-1/1/visualization_config.json", got)
}

func TestResolveSource(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, ResolveSource("https://example.com/c.json", nil))
	assert.IsType(t, &HTTPSource{}, ResolveSource("http://example.com/c.json", nil))

	fs, ok := ResolveSource("file:///tmp/viz.json", nil).(*FileSource)
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/tmp/viz.json"), fs.Path)

	fs, ok = ResolveSource("configs/viz.json", nil).(*FileSource)
	require.True(t, ok)
	assert.Equal(t, "configs/viz.json", fs.Path)
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/visualization_config.json"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":3,"name":"Drinks","type":"bar","data":[{"label":"Latte","value":12}]}]`))
	}))
	defer srv.Close()

	p := NewPanel(&fakeRenderer{}, nil)
	configs := p.LoadConfig(context.Background(), NewHTTPSource(ConfigURL(srv.URL, "t", "1"), srv.Client()))
	require.Len(t, configs, 1)
	assert.Equal(t, ID("3"), configs[0].ID)
}

func TestHTTPSource_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 404", err.Error())

	// The panel falls back to exactly the two samples.
	p := NewPanel(&fakeRenderer{}, nil)
	configs := p.LoadConfig(context.Background(), NewHTTPSource(srv.URL, srv.Client()))
	require.Len(t, configs, 2)
	assert.Equal(t, ID("1"), configs[0].ID)
	assert.Equal(t, ID("2"), configs[1].ID)
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewPanel(&fakeRenderer{}, nil)
	configs := p.LoadConfig(context.Background(), NewHTTPSource(url, nil))
	assert.Equal(t, SampleConfigs(), configs)
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viz.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"type":"pie","data":[]}]`), 0600))

	data, err := ResolveSource("file://"+filepath.ToSlash(path), nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pie"`)

	_, err = (&FileSource{Path: path + ".missing"}).Fetch(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&FileSource{Path: path}).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	require.NoError(t, os.WriteFile(path, make([]byte, MaxConfigSize+1), 0600))

	_, err := (&FileSource{Path: path}).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
