package replay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/intrinio/go-realtime-client/internal/apperror"
	"github.com/intrinio/go-realtime-client/internal/httpclient"
	"github.com/intrinio/go-realtime-client/internal/logger"
	"github.com/intrinio/go-realtime-client/internal/ratelimit"
)

// DownloaderConfig configures the replay file downloader.
type DownloaderConfig struct {
	BaseURL  string // e.g. https://api-v2.intrinio.com
	CacheDir string
	APIKey   string
}

// replayFileResponse is the JSON body returned by the replay listing
// endpoint.
type replayFileResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Downloader fetches a subsource's binary tick file for a given date
// and caches it on disk, gated by a shared rate limiter so replay
// downloads do not compete unbounded with live auth traffic.
type Downloader struct {
	cfg     DownloaderConfig
	http    httpclient.Client
	limiter *ratelimit.Limiter
	log     logger.LoggerInterface
}

// NewDownloader builds a Downloader. limiter may be shared with the
// auth client.
func NewDownloader(cfg DownloaderConfig, httpClient httpclient.Client, limiter *ratelimit.Limiter, log logger.LoggerInterface) *Downloader {
	return &Downloader{cfg: cfg, http: httpClient, limiter: limiter, log: log}
}

// Download resolves subsource+date to a download URL via the replay
// listing endpoint, then fetches the binary tick file into CacheDir,
// returning its local path. If the file is already cached it is
// returned without a network round-trip.
func (d *Downloader) Download(ctx context.Context, subsource, date string) (string, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var listing replayFileResponse
	resp, err := d.http.NewRequest().
		SetQueryParam("subsource", subsource).
		SetQueryParam("date", date).
		SetQueryParam("api_key", d.cfg.APIKey).
		SetResult(&listing).
		Get(ctx, d.cfg.BaseURL+"/securities/replay")
	if err != nil {
		return "", apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("replay listing request failed"), apperror.WithCause(err))
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithContext(fmt.Sprintf("replay listing returned HTTP %d", resp.StatusCode)))
	}
	if listing.Name == "" || listing.URL == "" {
		return "", apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("replay listing response missing name/url"))
	}

	if err := os.MkdirAll(d.cfg.CacheDir, 0o755); err != nil {
		return "", apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("failed to create cache dir"), apperror.WithCause(err))
	}
	localPath := filepath.Join(d.cfg.CacheDir, listing.Name)

	if _, err := os.Stat(localPath); err == nil {
		if d.log != nil {
			d.log.Debug(ctx, "replay file already cached", "path", localPath)
		}
		return localPath, nil
	}

	if err := d.fetchToFile(ctx, listing.URL, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func (d *Downloader) fetchToFile(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperror.New(apperror.CodeReplayDownloadError, apperror.WithCause(err))
	}

	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		return apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("tick file download failed"), apperror.WithCause(err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithContext(fmt.Sprintf("tick file download returned HTTP %d", httpResp.StatusCode)))
	}

	f, err := os.Create(localPath)
	if err != nil {
		return apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("failed to create local tick file"), apperror.WithCause(err))
	}
	defer f.Close()

	if _, err := io.Copy(f, httpResp.Body); err != nil {
		return apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("failed writing tick file to disk"), apperror.WithCause(err))
	}
	return nil
}

// Delete removes a previously downloaded tick file, used when
// replayDeleteFileWhenDone is set.
func (d *Downloader) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperror.New(apperror.CodeReplayDownloadError,
			apperror.WithMessage("failed to delete tick file"), apperror.WithCause(err))
	}
	return nil
}
