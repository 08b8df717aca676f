package replay

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/intrinio/go-realtime-client/internal/httpclient"
)

func TestDownloader_DownloadsAndCaches(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{1, 2, 3, 4})
	}))
	defer fileSrv.Close()

	listingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("subsource") != "iex" {
			t.Errorf("subsource = %q, want iex", r.URL.Query().Get("subsource"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"iex-2026-01-01.bin","url":"` + fileSrv.URL + `"}`))
	}))
	defer listingSrv.Close()

	httpClient, err := httpclient.NewInstrumentedClient()
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	cacheDir := t.TempDir()
	d := NewDownloader(DownloaderConfig{BaseURL: listingSrv.URL, CacheDir: cacheDir, APIKey: "key"}, httpClient, nil, nil)

	path, err := d.Download(t.Context(), "iex", "2026-01-01")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	want := filepath.Join(cacheDir, "iex-2026-01-01.bin")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 4 {
		t.Errorf("downloaded file len = %d, want 4", len(data))
	}

	// second call should hit the cache, not re-download
	path2, err := d.Download(t.Context(), "iex", "2026-01-01")
	if err != nil {
		t.Fatalf("Download (cached): %v", err)
	}
	if path2 != path {
		t.Errorf("cached path = %q, want %q", path2, path)
	}
}

func TestDownloader_DeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "gone.bin")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	d := NewDownloader(DownloaderConfig{CacheDir: dir}, nil, nil, nil)
	if err := d.Delete(f); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(f); !os.IsNotExist(err) {
		t.Error("file still exists after Delete")
	}
}
