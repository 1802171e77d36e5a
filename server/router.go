package server

import (
	"context"

	"github.com/testn/mongogo/conn"
)

// selectPool picks the pool an operation should draw from, connecting
// first if the server is not connected. Holding the lifecycle mutex
// across the lazy connect is intentional: concurrent callers block on
// the one connect attempt instead of racing their own.
func (s *Server) selectPool(ctx context.Context, secondaryOK bool) (*conn.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primary == nil {
		if err := s.connectLocked(ctx); err != nil {
			return nil, err
		}
	}

	if secondaryOK && len(s.secondaries) > 0 {
		idx := s.next % len(s.secondaries)
		s.next++
		return s.secondaries[idx], nil
	}

	return s.primary, nil
}

// AcquireConnection returns a connection authenticated for db. If ctx
// carries an active request session, the session's reserved connection
// is returned regardless of secondaryOK; otherwise a connection is
// drawn from the pool selectPool picks. The caller releases it through
// ReleaseConnection.
func (s *Server) AcquireConnection(ctx context.Context, db *Database, secondaryOK bool) (conn.Connection, error) {
	if sess := SessionFromContext(ctx); sess != nil && sess.server == s && s.sessions.alive(sess) {
		if err := sess.conn.CheckAuthentication(db.Credential()); err != nil {
			return nil, err
		}
		return sess.conn, nil
	}

	pool, err := s.selectPool(ctx, secondaryOK)
	if err != nil {
		return nil, err
	}

	c, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.CheckAuthentication(db.Credential()); err != nil {
		// The connection goes back to its pool before the failure
		// propagates; an auth failure never costs the pool a slot.
		c.Close()
		return nil, err
	}

	return c, nil
}

// ReleaseConnection returns c to the pool that created it. While a
// request session is active on ctx, the session's reserved connection
// stays checked out until the session ends; releasing any other
// connection in that scope is a usage error.
func (s *Server) ReleaseConnection(ctx context.Context, c conn.Connection) error {
	if sess := SessionFromContext(ctx); sess != nil && sess.server == s && s.sessions.alive(sess) {
		if sess.conn == c {
			return nil
		}
		return newUsageError("connection released inside a request session it does not belong to")
	}

	return c.Close()
}
