// Package server implements the connection-management core of the
// driver: the server lifecycle, topology-aware routing of operations to
// connection pools, request sessions pinning a caller to one
// connection, and the registry deduplicating servers by target.
package server

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/testn/mongogo/cluster"
	"github.com/testn/mongogo/conn"
	"github.com/testn/mongogo/model"
)

// New creates a server for the given target. Servers obtained through a
// Registry are shared; New itself always creates a fresh one.
func New(target *Target, opts ...Option) *Server {
	cfg := newConfig(target, opts...)

	return &Server{
		target:    target,
		dialer:    cfg.dialer,
		connector: cfg.connector,
		logger:    cfg.logger,
		dbs:       make(map[dbKey]*Database),
		sessions:  sessionTracker{active: make(map[*Session]struct{})},
	}
}

// Server owns the connections to one logical server: a primary pool
// and, for a replica set allowing secondary reads, one pool per
// secondary. All state transitions happen under the lifecycle mutex;
// the session tracker carries its own lock so that no blocking
// connection work ever happens under both.
type Server struct {
	target    *Target
	dialer    conn.Dialer
	connector cluster.Connector
	logger    logrus.FieldLogger

	// mu is the lifecycle mutex: it guards the state, the pools, the
	// topology view and the database handle cache.
	mu          sync.Mutex
	state       model.ServerState
	primary     *conn.Pool
	secondaries []*conn.Pool
	view        model.TopologyView
	next        int
	dbs         map[dbKey]*Database

	sessions sessionTracker
}

// Target gets the target the server was created for.
func (s *Server) Target() *Target {
	return s.target
}

// State gets the current lifecycle state.
func (s *Server) State() model.ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Primary gets the address of the current primary, or "" when
// disconnected.
func (s *Server) Primary() model.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Primary
}

// SecondaryAddrs gets the secondary addresses observed at connect time.
func (s *Server) SecondaryAddrs() []model.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Addr(nil), s.view.Secondaries...)
}

// Connect establishes the connection pools according to the target's
// topology mode. It is idempotent while connected. The target's connect
// timeout applies unless ctx already carries a deadline.
func (s *Server) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(ctx)
}

// Disconnect closes every pool and moves the server to Disconnected. It
// is a no-op unless connected. Connections checked out by callers or
// pinned by sessions are closed as they come back.
func (s *Server) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked()
}

// Reconnect tears the pools down and connects again as one critical
// section: no other caller observes the intermediate disconnected
// state.
func (s *Server) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked()
	return s.connectLocked(ctx)
}

func (s *Server) connectLocked(ctx context.Context) error {
	if s.state == model.Connected {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && s.target.ConnectTimeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.target.ConnectTimeout())
		defer cancel()
	}

	s.state = model.Connecting
	s.logger.WithFields(logrus.Fields{
		"seeds": s.target.Seeds(),
		"mode":  s.target.Mode().String(),
	}).Info("connecting")

	result, err := s.connector.Connect(ctx)
	if err != nil {
		s.state = model.Disconnected
		s.logger.WithError(err).Warn("connect failed")
		return errors.Wrap(err, "connect failed")
	}

	maxSize := s.target.MaxPoolSize()
	s.primary = conn.NewPool(result.View.Primary, maxSize, s.dialer, result.Primary)
	s.secondaries = nil
	for _, c := range result.Secondaries {
		s.secondaries = append(s.secondaries, conn.NewPool(c.Addr(), maxSize, s.dialer, c))
	}
	s.view = result.View
	s.state = model.Connected

	s.logger.WithFields(logrus.Fields{
		"primary":     s.view.Primary,
		"secondaries": len(s.secondaries),
	}).Info("connected")
	return nil
}

func (s *Server) disconnectLocked() {
	if s.state != model.Connected {
		return
	}

	if s.primary != nil {
		s.primary.Close()
	}
	for _, p := range s.secondaries {
		p.Close()
	}

	s.primary = nil
	s.secondaries = nil
	s.view = model.TopologyView{}
	s.next = 0
	s.state = model.Disconnected

	s.logger.Info("disconnected")
}
