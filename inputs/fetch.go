package inputs

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	"github.com/schollz/progressbar/v3"
)

const userAgent = "imdrip (https://github.com/richinsley/imdrip)"

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// Fetcher downloads images over HTTP, optionally keeping a copy on disk.
type Fetcher struct {
	Client *http.Client
	// CacheDir holds downloaded bodies keyed by URL. Empty disables caching.
	CacheDir string
	// Progress receives a progress bar while a body downloads. Nil disables it.
	Progress io.Writer
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration
}

// NewFetcher returns a fetcher that reports progress on stderr. With
// useCache set, downloads are kept under the user cache directory.
func NewFetcher(useCache bool, timeout time.Duration) (*Fetcher, error) {
	f := &Fetcher{
		Client: &http.Client{
			Transport: &headerTransport{Transport: http.DefaultTransport},
		},
		Progress: os.Stderr,
		Timeout:  timeout,
	}
	if useCache {
		dir, err := CacheDir("downloads")
		if err != nil {
			return nil, fmt.Errorf("could not get cache directory: %w", err)
		}
		f.CacheDir = dir
	}
	return f, nil
}

// Fetch returns the body of url. Anything but 200 OK is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	cachePath := f.cachePath(url)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil && filetype.IsImage(data) {
			log.Printf("Using cached copy of %s", url)
			return data, nil
		}
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", url, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s, status code: %d", url, resp.StatusCode)
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if f.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(f.Progress),
			progressbar.OptionSetDescription("download "+url),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		w = io.MultiWriter(&buf, bar)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	data := buf.Bytes()
	log.Printf("Received %d bytes from %s", len(data), url)

	// Error pages served with 200 OK are not cached.
	if cachePath != "" && filetype.IsImage(data) {
		if err := writeCacheFile(cachePath, data); err != nil {
			log.Printf("Warning: failed to cache %s: %v", url, err)
		}
	}
	return data, nil
}

func (f *Fetcher) cachePath(url string) string {
	if f.CacheDir == "" {
		return ""
	}
	sum := sha1.Sum([]byte(url))
	return filepath.Join(f.CacheDir, hex.EncodeToString(sum[:]))
}

// writeCacheFile writes through a temporary file so a partial download is
// never visible under path.
func writeCacheFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "fetch_*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// CacheDir returns, creating it if needed, an OS specific cache directory
// for imdrip.
func CacheDir(subdir string) (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", fmt.Errorf("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, "Library", "Caches")
	default:
		base = os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := homedir.Dir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".cache")
		}
	}

	dir := filepath.Join(base, "imdrip", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", dir, err)
	}
	return dir, nil
}
