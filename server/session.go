package server

import (
	"context"
	"sync"

	"github.com/testn/mongogo/conn"
)

type sessionCtxKey struct{}

// ContextWithSession returns a context carrying sess. Operations using
// the returned context are pinned to the session's reserved connection.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// SessionFromContext gets the session carried by ctx, or nil.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return sess
}

// Session reserves one connection for the duration of a request scope.
// Every acquisition through a context carrying the session returns the
// reserved connection, so a sequence of operations observes a single
// consistent connection. Sessions nest: each BeginSession on an already
// pinned context increments a counter that the matching EndSession
// decrements, and the connection is released only at zero.
type Session struct {
	server  *Server
	conn    conn.Connection
	nesting int
	ended   bool
}

// sessionTracker records the active sessions. Its mutex is distinct
// from the lifecycle mutex and is never held across connection
// acquisition or release.
type sessionTracker struct {
	mu     sync.Mutex
	active map[*Session]struct{}
}

func (t *sessionTracker) add(sess *Session) {
	t.mu.Lock()
	t.active[sess] = struct{}{}
	t.mu.Unlock()
}

func (t *sessionTracker) alive(sess *Session) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[sess]
	return ok
}

// BeginSession starts a request scope pinned to a single connection and
// returns a context carrying it. The connection is acquired against db
// before the session is registered, so no session lock is held during
// the acquisition. Sessions pin to a primary-class connection
// regardless of the target's secondary-read setting. If ctx already
// carries an active session of this server, its nesting level is
// incremented instead.
func (s *Server) BeginSession(ctx context.Context, db *Database) (context.Context, error) {
	if sess := SessionFromContext(ctx); sess != nil && sess.server == s {
		s.sessions.mu.Lock()
		if !sess.ended {
			sess.nesting++
			s.sessions.mu.Unlock()
			return ctx, nil
		}
		s.sessions.mu.Unlock()
	}

	c, err := s.AcquireConnection(ctx, db, false)
	if err != nil {
		return nil, err
	}

	sess := &Session{server: s, conn: c, nesting: 1}
	s.sessions.add(sess)
	return ContextWithSession(ctx, sess), nil
}

// EndSession ends the innermost BeginSession on ctx. When the nesting
// level reaches zero the session is removed and its reserved connection
// returns to its origin pool; the release happens outside the session
// mutex. Ending a session that is not active is a usage error.
func (s *Server) EndSession(ctx context.Context) error {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.server != s {
		return ErrNoSession
	}

	s.sessions.mu.Lock()
	if sess.ended {
		s.sessions.mu.Unlock()
		return ErrNoSession
	}
	sess.nesting--
	done := sess.nesting == 0
	if done {
		sess.ended = true
		delete(s.sessions.active, sess)
	}
	s.sessions.mu.Unlock()

	if done {
		return sess.conn.Close()
	}
	return nil
}

// WithSession runs fn inside a request session pinned against db. The
// session is ended on every exit path, including a panic in fn; the
// end-of-session error is reported only when fn itself succeeded.
func (s *Server) WithSession(ctx context.Context, db *Database, fn func(ctx context.Context) error) (err error) {
	sctx, err := s.BeginSession(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		endErr := s.EndSession(sctx)
		if err == nil {
			err = endErr
		}
	}()

	return fn(sctx)
}

// NestingLevel gets the nesting level of the session carried by ctx, or
// 0 when none is active.
func (s *Server) NestingLevel(ctx context.Context) int {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.server != s {
		return 0
	}

	s.sessions.mu.Lock()
	defer s.sessions.mu.Unlock()
	if sess.ended {
		return 0
	}
	return sess.nesting
}
