package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "smarttime/internal/log"
)

const (
	defaultCacheDir    = "./var/ics-cache"
	defaultConcurrency = 4
	maxFeedBytes       = 8 << 20
)

// ErrNoCache means the server answered 304 for a feed we hold no copy of.
var ErrNoCache = errors.New("ics: not modified but nothing cached")

// StatusError is a non-2xx feed response with no cached copy to fall back on.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return "ics: feed returned " + e.Status }

// Source is one subscribed holiday calendar.
type Source struct {
	// ID identifies the feed in logs and on imported holidays.
	ID  string `yaml:"id" json:"id" toml:"id" validate:"required"`
	URL string `yaml:"url" json:"url" toml:"url" validate:"required,url"`
	// Type is applied to holidays whose events carry no usable CATEGORIES.
	Type string `yaml:"type,omitempty" json:"type,omitempty" toml:"type" validate:"omitempty,oneof=national regional local"`
}

type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

// snapshot is the on-disk copy of a feed: its validators and last good body.
type snapshot struct {
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	Body         []byte    `json:"body"`
}

func (s snapshot) usable() bool { return len(s.Body) > 0 }

// Fetcher downloads ICS feeds with conditional requests and keeps the last
// good body of each on disk, so a feed outage leaves the holidays in place.
type Fetcher struct {
	client      *http.Client
	cacheDir    string
	concurrency int
}

func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}
	return &Fetcher{
		client:      &http.Client{Timeout: 15 * time.Second},
		cacheDir:    cacheDir,
		concurrency: defaultConcurrency,
	}
}

// WithClient swaps the HTTP client.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// FetchAll fetches sources with bounded concurrency. Results keep source
// order; a failing feed is reported in errs and never stops the others.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) (results []FetchResult, errs []error) {
	type outcome struct {
		res FetchResult
		err error
	}
	outcomes := make([]outcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			res, err := f.FetchOne(gctx, src)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if o.err != nil {
			appLog.Error("holiday feed unavailable", o.err, "feed", sources[i].ID, "url", redactURL(sources[i].URL))
			errs = append(errs, fmt.Errorf("%s: %w", sources[i].ID, o.err))
			continue
		}
		results = append(results, o.res)
	}
	return results, errs
}

// FetchOne downloads a single feed. A 304 or a failed download is served
// from the snapshot when one exists.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, fmt.Errorf("ics: feed %q has no url", src.ID)
	}
	path := f.snapshotPath(src.URL)
	prev := readSnapshot(path)

	stale := func(cause error) (FetchResult, error) {
		if !prev.usable() {
			return FetchResult{}, cause
		}
		appLog.Warn("serving cached holiday feed", "feed", src.ID, "cause", cause.Error(), "fetched_at", prev.FetchedAt)
		return FetchResult{Source: src, Body: prev.Body, FromCache: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if prev.usable() {
		if prev.ETag != "" {
			req.Header.Set("If-None-Match", prev.ETag)
		}
		if prev.LastModified != "" {
			req.Header.Set("If-Modified-Since", prev.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return stale(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		if !prev.usable() {
			return FetchResult{}, ErrNoCache
		}
		appLog.Debug("holiday feed unchanged", "feed", src.ID)
		return FetchResult{Source: src, Body: prev.Body, FromCache: true}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return stale(&StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return stale(err)
	}
	next := snapshot{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now().UTC(),
		Body:         body,
	}
	if err := writeSnapshot(path, next); err != nil {
		appLog.Error("holiday feed cache not written", err, "feed", src.ID)
	}
	appLog.Info("holiday feed downloaded", "feed", src.ID, "url", redactURL(src.URL), "bytes", len(body))
	return FetchResult{Source: src, Body: body}, nil
}

func (f *Fetcher) snapshotPath(feedURL string) string {
	sum := sha256.Sum256([]byte(feedURL))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8])+".json")
}

// readSnapshot returns the zero snapshot when nothing usable is on disk.
func readSnapshot(path string) snapshot {
	var s snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot{}
	}
	if err := json.Unmarshal(data, &s); err != nil {
		appLog.Warn("ignoring unreadable feed cache", "path", path, "err", err.Error())
		return snapshot{}
	}
	return s
}

func writeSnapshot(path string, s snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// redactURL keeps scheme and host only; feed URLs often embed tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
