package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// Loader resolves a locator into a playable Sound. http(s) locators are
// downloaded into CacheDir; anything else is treated as a local file path.
type Loader struct {
	Backend  Backend
	Client   *http.Client
	CacheDir string
	Log      zerolog.Logger
}

func (l *Loader) Load(ctx context.Context, locator string) (*Sound, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, errors.New("empty sound locator")
	}
	backend := l.Backend
	if backend == nil {
		backend = Bell{}
	}
	if ignoresFile(backend) {
		l.Log.Debug().Str("locator", locator).Msg("bell backend, skipping sound fetch")
		return newSound(locator, false, backend, l.Log), nil
	}

	u, err := url.Parse(locator)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		p, err := l.download(ctx, u)
		if err != nil {
			return nil, err
		}
		return newSound(p, true, backend, l.Log), nil
	}

	fi, err := os.Stat(locator)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("open sound: %s is not a regular file", locator)
	}
	return newSound(locator, false, backend, l.Log), nil
}

func (l *Loader) download(ctx context.Context, u *url.URL) (string, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sound: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch sound: unexpected status %s", resp.Status)
	}

	f, err := os.CreateTemp(l.CacheDir, "remindme-alarm-*"+path.Ext(u.Path))
	if err != nil {
		return "", fmt.Errorf("create sound file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write sound file: %w", err)
	}
	l.Log.Debug().Str("url", u.String()).Str("path", f.Name()).Int64("bytes", n).Msg("sound downloaded")
	return f.Name(), nil
}

// ignoresFile reports whether backend plays without reading the sound file.
func ignoresFile(b Backend) bool {
	switch b.(type) {
	case Bell, *Bell:
		return true
	}
	return false
}
