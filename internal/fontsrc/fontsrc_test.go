// fontsrc_test.go tests local font loading, web font detection, Google
// Fonts spec parsing, and the download-and-cache path against a local
// HTTP server.

package fontsrc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestParseGoogleFontSpec(t *testing.T) {
	tests := []struct {
		spec           string
		family, weight string
		ok             bool
	}{
		{"google:Inter:800", "Inter", "800", true},
		{"google:Space Mono:400", "Space Mono", "400", true},
		{"google:Inter", "", "", false},
		{"local:Inter:800", "", "", false},
		{"google::400", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		family, weight, ok := ParseGoogleFontSpec(tt.spec)
		if family != tt.family || weight != tt.weight || ok != tt.ok {
			t.Errorf("ParseGoogleFontSpec(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.spec, family, weight, ok, tt.family, tt.weight, tt.ok)
		}
	}
}

func TestIsWebFont(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"font.woff2", nil, true},
		{"FONT.WOFF", nil, true},
		{"font.bin", []byte("wOF2...."), true},
		{"font.bin", []byte("wOFF...."), true},
		{"font.ttf", goregular.TTF, false},
		{"x", []byte("wO"), false},
	}
	for _, tt := range tests {
		if got := IsWebFont(tt.name, tt.data); got != tt.want {
			t.Errorf("IsWebFont(%q, %q...) = %v, want %v", tt.name, head(tt.data), got, tt.want)
		}
	}
}

func head(b []byte) []byte {
	if len(b) > 4 {
		return b[:4]
	}
	return b
}

func TestLoad_PassesThroughSFNT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(data, goregular.TTF) {
		t.Error("SFNT data was modified")
	}
}

func TestResolve_Local(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "fonts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "fonts", "go.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	data, origin, err := NewFetcher("http://127.0.0.1:0").Resolve(context.Background(), Spec{Path: "fonts/go.ttf"}, root, t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if origin != OriginLocal {
		t.Errorf("origin = %q, want %q", origin, OriginLocal)
	}
	if len(data) != len(goregular.TTF) {
		t.Errorf("len = %d, want %d", len(data), len(goregular.TTF))
	}
}

func TestResolve_MissingWithoutFallback(t *testing.T) {
	_, _, err := NewFetcher("http://127.0.0.1:0").Resolve(context.Background(), Spec{Path: "fonts/none.ttf"}, t.TempDir(), t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	_, _, err = NewFetcher("http://127.0.0.1:0").Resolve(context.Background(), Spec{}, t.TempDir(), t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("empty spec err = %v, want ErrNotFound", err)
	}
}

func TestResolve_BadFallbackSpec(t *testing.T) {
	_, _, err := NewFetcher("http://127.0.0.1:0").Resolve(context.Background(), Spec{Fallback: "inter"}, t.TempDir(), t.TempDir())
	if err == nil {
		t.Error("expected error for malformed fallback spec")
	}
}

// fontServer serves a CSS document pointing at /f/font.ttf and counts hits.
func fontServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/css2", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("family") != "Go Regular:wght@400" {
			http.Error(w, "unexpected family "+r.URL.Query().Get("family"), http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, "@font-face { src: url(%s/f/font.ttf) format('truetype'); }\n", srv.URL)
	})
	mux.HandleFunc("/f/font.ttf", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(goregular.TTF)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetch_DownloadsAndCaches(t *testing.T) {
	srv, hits := fontServer(t)
	cacheDir := filepath.Join(t.TempDir(), ".cache")
	f := NewFetcher(srv.URL + "/css2")

	data, err := f.Fetch(context.Background(), "google:Go Regular:400", cacheDir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, goregular.TTF) {
		t.Error("downloaded font differs from served font")
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 (css + font)", hits.Load())
	}

	cached, err := os.ReadFile(CacheFile(cacheDir, "Go Regular", "400"))
	if err != nil {
		t.Fatalf("cache file: %v", err)
	}
	if !bytes.Equal(cached, goregular.TTF) {
		t.Error("cache content differs")
	}

	if _, err := f.Fetch(context.Background(), "google:Go Regular:400", cacheDir); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits after cached fetch = %d, want 2", hits.Load())
	}
}

func TestFetch_CacheWrittenAtomically(t *testing.T) {
	srv, _ := fontServer(t)
	cacheDir := filepath.Join(t.TempDir(), "nested", ".cache")

	if _, err := NewFetcher(srv.URL+"/css2").Fetch(context.Background(), "google:Go Regular:400", cacheDir); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(CacheFile(cacheDir, "Go Regular", "400")) {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("cache dir holds %v, want only the font", names)
	}
}

func TestFetch_TruncatedCacheRefetched(t *testing.T) {
	srv, hits := fontServer(t)
	cacheDir := t.TempDir()
	cacheFile := CacheFile(cacheDir, "Go Regular", "400")
	if err := os.MkdirAll(filepath.Dir(cacheFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cacheFile, goregular.TTF[:1000], 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := NewFetcher(srv.URL+"/css2").Fetch(context.Background(), "google:Go Regular:400", cacheDir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, goregular.TTF) {
		t.Error("truncated cache was served")
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 (refetch)", hits.Load())
	}
	cached, err := os.ReadFile(cacheFile)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(cached, goregular.TTF) {
		t.Error("cache not repaired")
	}
}

func TestResolve_FallsBackToGoogle(t *testing.T) {
	srv, _ := fontServer(t)
	f := NewFetcher(srv.URL + "/css2")

	_, origin, err := f.Resolve(context.Background(),
		Spec{Path: "fonts/missing.ttf", Fallback: "google:Go Regular:400"},
		t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if origin != OriginGoogle {
		t.Errorf("origin = %q, want %q", origin, OriginGoogle)
	}
}

func TestFetch_NoURLInCSS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("/* nothing here */"))
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL).Fetch(context.Background(), "google:Inter:800", t.TempDir())
	if err == nil {
		t.Error("expected error when CSS has no font URL")
	}
}

func TestFetch_NotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(srv.URL).Fetch(context.Background(), "google:Inter:800", t.TempDir())
	if err == nil {
		t.Error("expected error for 404")
	}
}
