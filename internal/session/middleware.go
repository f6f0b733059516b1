package session

import (
	"bufio"
	"net"
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
)

const contextKey = "wanderlust.session"

// Middleware resolves the request's session and persists it right before the
// response headers go out, or after the handler chain if nothing was written.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Cookie(m.CookieName())

		sess, err := m.Load(c.Request.Context(), value)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(contextKey, sess)

		w := &committingWriter{ResponseWriter: c.Writer}
		w.commit = func() {
			ctx := c.Request.Context()
			saved, err := m.Save(ctx, sess)
			if err != nil {
				logger := pkgzerolog.FromContext(ctx)
				logger.Error().Err(err).Msg("Session save failed")
				return
			}
			if !saved {
				return
			}
			cookie, err := m.Cookie(sess)
			if err != nil {
				logger := pkgzerolog.FromContext(ctx)
				logger.Error().Err(err).Msg("Session cookie encoding failed")
				return
			}
			http.SetCookie(w.ResponseWriter, cookie)
		}
		c.Writer = w

		c.Next()

		w.flush()
	}
}

// Current returns the session attached by Middleware, or nil outside it.
func Current(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// committingWriter runs commit once, before the status line is written.
type committingWriter struct {
	gin.ResponseWriter
	commit func()
	done   bool
}

func (w *committingWriter) flush() {
	if w.done {
		return
	}
	w.done = true
	w.commit()
}

func (w *committingWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *committingWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *committingWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

func (w *committingWriter) Flush() {
	w.flush()
	w.ResponseWriter.Flush()
}

func (w *committingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.flush()
	return w.ResponseWriter.Hijack()
}
