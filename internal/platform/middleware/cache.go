package middleware

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// CacheStore interface
// ---------------------------------------------------------------------------

// CacheStore is the backend for rendered page views. Implementations must be
// safe for concurrent use.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key that starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// InMemoryCacheStore
// ---------------------------------------------------------------------------

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCacheStore is a process-local CacheStore with lazy expiration. It
// is the default when no REDIS_URL is configured.
type InMemoryCacheStore struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

func NewInMemoryCacheStore() *InMemoryCacheStore {
	return &InMemoryCacheStore{
		entries: make(map[string]*cacheEntry),
	}
}

func (s *InMemoryCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (s *InMemoryCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &cacheEntry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *InMemoryCacheStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	return nil
}

func (s *InMemoryCacheStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*cacheEntry)
	return nil
}

// StartCleanup periodically removes expired entries until ctx is cancelled.
func (s *InMemoryCacheStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				now := time.Now()
				for k, v := range s.entries {
					if now.After(v.expiresAt) {
						delete(s.entries, k)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}

// ---------------------------------------------------------------------------
// Buffered response writer
// ---------------------------------------------------------------------------

// bufferedResponseWriter holds the handler's output so it can be stored
// before being sent.
type bufferedResponseWriter struct {
	writer     http.ResponseWriter
	buf        *bytes.Buffer
	statusCode int
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		writer:     w,
		buf:        &bytes.Buffer{},
		statusCode: http.StatusOK,
	}
}

func (w *bufferedResponseWriter) Header() http.Header {
	return w.writer.Header()
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	w.statusCode = code
}

func (w *bufferedResponseWriter) Flush() {}

func (w *bufferedResponseWriter) flushTo() error {
	w.writer.WriteHeader(w.statusCode)
	if w.buf.Len() > 0 {
		_, err := w.writer.Write(w.buf.Bytes())
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// ViewCache
// ---------------------------------------------------------------------------

// ViewCacheConfig configures the rendered-view cache.
type ViewCacheConfig struct {
	Store  CacheStore
	TTL    time.Duration
	Logger zerolog.Logger
	// Vary returns the part of the key that depends on the caller, usually
	// the session role. Views rendered for different roles never share an
	// entry.
	Vary func(c echo.Context) string
}

type cachedView struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag"`
	Body        []byte `json:"body"`
}

const viewKeyPrefix = "view:"

// viewKey builds "view:<path>|<vary>|<query>". Everything cached for a path
// shares the "view:<path>|" prefix, which is what Revalidate deletes.
func viewKey(path, vary, rawQuery string) string {
	return pathPrefix(path) + vary + "|" + rawQuery
}

func pathPrefix(path string) string {
	return viewKeyPrefix + path + "|"
}

// subtreeSuffix matches action.SubtreeSuffix.
const subtreeSuffix = "/*"

// revalidationPrefix maps "/a/b" to the keys of that exact path and "/a/b/*"
// to the keys of every path under "/a/b/".
func revalidationPrefix(path string) string {
	if strings.HasSuffix(path, subtreeSuffix) {
		return viewKeyPrefix + strings.TrimSuffix(path, "*")
	}
	return pathPrefix(path)
}

// ViewCache serves successful GET responses from the store until the TTL
// expires or a write revalidates the path. A failing store degrades to an
// uncached request.
func ViewCache(cfg ViewCacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if cfg.Store == nil || cfg.TTL <= 0 {
			return next
		}
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			vary := ""
			if cfg.Vary != nil {
				vary = cfg.Vary(c)
			}
			key := viewKey(req.URL.Path, vary, req.URL.RawQuery)
			ctx := req.Context()
			res := c.Response()

			if data, ok, err := cfg.Store.Get(ctx, key); err != nil {
				cfg.Logger.Warn().Err(err).Str("key", key).Msg("view cache read failed")
			} else if ok {
				var view cachedView
				if err := json.Unmarshal(data, &view); err == nil {
					res.Header().Set("X-Cache", "HIT")
					res.Header().Set("ETag", view.ETag)
					if etagMatch(req.Header.Get("If-None-Match"), view.ETag) {
						return c.NoContent(http.StatusNotModified)
					}
					return c.Blob(view.Status, view.ContentType, view.Body)
				}
			}

			origWriter := res.Writer
			buf := newBufferedResponseWriter(origWriter)
			res.Writer = buf

			if err := next(c); err != nil {
				res.Writer = origWriter
				return err
			}
			res.Writer = origWriter

			res.Header().Set("X-Cache", "MISS")
			if buf.statusCode != http.StatusOK {
				return buf.flushTo()
			}

			body := buf.buf.Bytes()
			view := cachedView{
				Status:      buf.statusCode,
				ContentType: res.Header().Get(echo.HeaderContentType),
				ETag:        computeETag(body),
				Body:        body,
			}
			res.Header().Set("ETag", view.ETag)
			if data, err := json.Marshal(view); err == nil {
				if err := cfg.Store.Set(ctx, key, data, cfg.TTL); err != nil {
					cfg.Logger.Warn().Err(err).Str("key", key).Msg("view cache write failed")
				}
			}
			return buf.flushTo()
		}
	}
}

// ---------------------------------------------------------------------------
// Revalidator
// ---------------------------------------------------------------------------

// Revalidator marks cached views stale after a successful write.
type Revalidator struct {
	store  CacheStore
	logger zerolog.Logger
}

func NewRevalidator(store CacheStore, logger zerolog.Logger) *Revalidator {
	return &Revalidator{store: store, logger: logger}
}

// Revalidate drops every cached view of each path, for all roles and query
// strings. A path ending in "/*" drops every view below it. The write that
// triggered it has already committed, so a store failure is logged and the
// entry ages out through its TTL.
func (r *Revalidator) Revalidate(ctx context.Context, paths ...string) {
	if r == nil || r.store == nil {
		return
	}
	for _, p := range paths {
		if err := r.store.DeletePrefix(ctx, revalidationPrefix(p)); err != nil {
			r.logger.Warn().Err(err).Str("path", p).Msg("view cache revalidation failed")
		}
	}
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// computeETag returns a weak ETag based on the MD5 hash of the body.
func computeETag(body []byte) string {
	hash := md5.Sum(body)
	return fmt.Sprintf(`W/"%x"`, hash)
}

// etagMatch reports whether an If-None-Match value matches etag. Supports
// comma-separated lists and "*".
func etagMatch(headerVal, etag string) bool {
	headerVal = strings.TrimSpace(headerVal)
	if headerVal == "" || etag == "" {
		return false
	}
	if headerVal == "*" {
		return true
	}
	for _, candidate := range strings.Split(headerVal, ",") {
		if stripWeakPrefix(strings.TrimSpace(candidate)) == stripWeakPrefix(etag) {
			return true
		}
	}
	return false
}

func stripWeakPrefix(etag string) string {
	return strings.TrimPrefix(etag, "W/")
}
