package cache

import (
	"bytes"
	"context"
	"crypto/sha1" // #nosec G505 -- key derivation only
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	cacheHeader = "X-Cache"
	maxBodySize = 1 << 20
	// relativeWindowTTL caps entries whose occupancy window starts at request
	// time. Pending holds lapse without a write, so nothing invalidates them.
	relativeWindowTTL = 15 * time.Second
)

// Scope decides which generation counter a cached route depends on.
type Scope int

const (
	// ScopeSearch covers list and search responses.
	ScopeSearch Scope = iota
	// ScopeLocation covers a single location read by its :id param.
	ScopeLocation
)

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.buf.Len()+len(b) <= maxBodySize {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Middleware serves 200 JSON responses of GET routes from redis.
func (s *Store) Middleware(scope Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.enabled() || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := s.responseKey(ctx, c, scope)

		if body, ok := s.get(ctx, key); ok {
			c.Header(cacheHeader, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header(cacheHeader, "MISS")
		c.Next()

		if cw.Status() == http.StatusOK && cw.buf.Len() > 0 && cw.buf.Len() <= maxBodySize {
			s.set(context.WithoutCancel(ctx), key, cw.buf.Bytes(), s.entryTTL(c.Request.URL.Query()))
		}
	}
}

// entryTTL shortens the lifetime of responses computed for the default
// now-relative window, i.e. requests without from and to.
func (s *Store) entryTTL(query url.Values) time.Duration {
	if query.Get("from") != "" && query.Get("to") != "" {
		return s.ttl
	}
	return min(s.ttl, relativeWindowTTL)
}

func (s *Store) responseKey(ctx context.Context, c *gin.Context, scope Scope) string {
	gen := "search:" + s.generation(ctx, searchGenerationKey)
	if scope == ScopeLocation {
		gen = "loc:" + s.generation(ctx, locationGenPrefix+c.Param("id"))
	}
	sum := sha1.Sum([]byte(c.FullPath() + "?" + c.Request.URL.RawQuery + "#" + gen)) // #nosec G401
	return fmt.Sprintf("%s%x", responsePrefix, sum[:])
}
