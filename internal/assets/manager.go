package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	"github.com/angelmondragon/gaspos-terminal/pkg/enums"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

const (
	// MsgLoginOffline is returned when an auth page is requested without a network.
	MsgLoginOffline = "You are offline. Login requires an internet connection."
	// MsgNotCached is returned when neither the network nor the cache can answer.
	MsgNotCached = "resource not available offline"

	maxAssetBytes = 32 << 20
)

// hop-by-hop headers are not forwarded or cached.
var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

// Response is what the shell handler writes back.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	FromCache bool
}

type Params struct {
	Origin       string
	CacheName    string
	CacheVersion string
	AuthPaths    []string
	Manifest     *Manifest
	Repository   Repository
	HTTPClient   *http.Client
	Logger       *logger.Logger
	Now          func() time.Time
}

// Manager precaches the POS shell and answers shell requests network-first with
// a cache fallback.
type Manager struct {
	origin    *url.URL
	cacheName string
	authPaths []string
	manifest  *Manifest
	repo      Repository
	client    *http.Client
	logg      *logger.Logger
	now       func() time.Time
	state     lifecycle
}

func NewManager(params Params) (*Manager, error) {
	origin, err := url.Parse(strings.TrimSpace(params.Origin))
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("asset origin %q must be an absolute url", params.Origin))
	}
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "asset repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	manifest := params.Manifest
	if manifest == nil {
		if manifest, err = LoadManifest(""); err != nil {
			return nil, err
		}
	}
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	name := params.CacheName
	if params.CacheVersion != "" {
		name = name + "-" + params.CacheVersion
	}
	return &Manager{
		origin:    origin,
		cacheName: name,
		authPaths: params.AuthPaths,
		manifest:  manifest,
		repo:      params.Repository,
		client:    client,
		logg:      params.Logger,
		now:       now,
		state:     lifecycle{state: enums.AssetStateIdle},
	}, nil
}

// CacheName is the versioned cache this manager owns.
func (m *Manager) CacheName() string { return m.cacheName }

func (m *Manager) State() enums.AssetCacheState { return m.state.current() }

// Install fetches every manifest entry and swaps them into the versioned cache
// in one write. A failed fetch leaves whatever that cache held before untouched
// and marks the manager redundant.
func (m *Manager) Install(ctx context.Context) error {
	if err := m.state.move(enums.AssetStateInstalling); err != nil {
		return err
	}
	ctx = m.logg.WithField(ctx, "cache_name", m.cacheName)

	entries := make([]models.AssetCacheEntry, 0, len(m.manifest.Precache))
	for _, raw := range m.manifest.Precache {
		target, err := m.resolve(raw)
		if err != nil {
			return m.failInstall(ctx, err)
		}
		entry, err := m.fetchEntry(ctx, target)
		if err != nil {
			return m.failInstall(ctx, err)
		}
		entries = append(entries, *entry)
	}

	if err := m.repo.ReplaceCache(ctx, m.cacheName, entries); err != nil {
		return m.failInstall(ctx, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store precache"))
	}
	if err := m.state.move(enums.AssetStateInstalled); err != nil {
		return err
	}
	m.logg.Info(m.logg.WithField(ctx, "entries", len(entries)), "shell precache installed")
	return nil
}

func (m *Manager) failInstall(ctx context.Context, cause error) error {
	_ = m.state.move(enums.AssetStateRedundant)
	m.logg.Error(ctx, "shell precache install failed", cause)
	return cause
}

// Activate drops every cache except the current version.
func (m *Manager) Activate(ctx context.Context) error {
	if err := m.state.move(enums.AssetStateActivating); err != nil {
		return err
	}
	removed, err := m.repo.DeleteOtherCaches(ctx, m.cacheName)
	if err != nil {
		_ = m.state.move(enums.AssetStateRedundant)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete old caches")
	}
	if err := m.state.move(enums.AssetStateActive); err != nil {
		return err
	}
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{"cache_name": m.cacheName, "removed": removed}), "shell cache activated")
	return nil
}

func (m *Manager) resolve(raw string) (*url.URL, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid asset %q", raw))
	}
	if ref.IsAbs() {
		return ref, nil
	}
	return m.origin.ResolveReference(ref), nil
}

func (m *Manager) fetchEntry(ctx context.Context, target *url.URL) (*models.AssetCacheEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build precache request")
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("precache %s", target))
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("precache %s: status %d", target, resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s", target))
	}
	return m.newEntry(target.String(), resp, body), nil
}

func (m *Manager) newEntry(key string, resp *http.Response, body []byte) *models.AssetCacheEntry {
	header := resp.Header.Clone()
	stripHop(header)
	return &models.AssetCacheEntry{
		CacheName:   m.cacheName,
		URL:         key,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     header,
		Body:        body,
		StoredAt:    m.now().UTC(),
	}
}

func (m *Manager) isAuthPath(path string) bool {
	for _, prefix := range m.authPaths {
		if prefix != "" && (path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")) {
			return true
		}
	}
	return false
}

// Serve answers one shell request. Auth paths never touch the cache. Everything
// else goes to the network first and falls back to the cache for GET when the
// network is unreachable.
func (m *Manager) Serve(ctx context.Context, r *http.Request) (*Response, error) {
	target := m.origin.ResolveReference(&url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery})
	key := target.String()

	resp, body, netErr := m.forward(ctx, r, target)
	if netErr == nil {
		if r.Method == http.MethodGet && resp.StatusCode == http.StatusOK && !m.isAuthPath(r.URL.Path) {
			m.refresh(ctx, key, resp, body)
		}
		header := resp.Header.Clone()
		stripHop(header)
		return &Response{Status: resp.StatusCode, Header: header, Body: body}, nil
	}

	if m.isAuthPath(r.URL.Path) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOffline, netErr, MsgLoginOffline)
	}
	if r.Method != http.MethodGet {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOffline, netErr, MsgNotCached)
	}

	entry, err := m.repo.Find(ctx, m.cacheName, key)
	if err == nil && entry == nil {
		// a version that never finished installing falls back to the cache
		// the till last activated
		entry, err = m.repo.FindLatest(ctx, key)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read asset cache")
	}
	if entry == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOffline, netErr, MsgNotCached)
	}
	header := entry.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	if entry.ContentType != "" {
		header.Set("Content-Type", entry.ContentType)
	}
	return &Response{Status: entry.Status, Header: header, Body: entry.Body, FromCache: true}, nil
}

func (m *Manager) forward(ctx context.Context, r *http.Request, target *url.URL) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxAssetBytes))
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), reqBody)
	if err != nil {
		return nil, nil, err
	}
	req.Header = r.Header.Clone()
	stripHop(req.Header)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

// refresh only updates urls that were precached; arbitrary pages are not stored.
func (m *Manager) refresh(ctx context.Context, key string, resp *http.Response, body []byte) {
	exists, err := m.repo.Exists(ctx, m.cacheName, key)
	if err != nil || !exists {
		return
	}
	if err := m.repo.Put(ctx, m.newEntry(key, resp, body)); err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "url", key), "failed to refresh cached asset")
	}
}

func stripHop(h http.Header) {
	for _, name := range hopHeaders {
		h.Del(name)
	}
}
