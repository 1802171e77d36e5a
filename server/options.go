package server

import (
	"io/ioutil"

	"github.com/sirupsen/logrus"

	"github.com/testn/mongogo/cluster"
	"github.com/testn/mongogo/conn"
	"github.com/testn/mongogo/model"
)

func newConfig(target *Target, opts ...Option) *config {
	cfg := &config{}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		silent := logrus.New()
		silent.Out = ioutil.Discard
		cfg.logger = silent
	}

	if cfg.connector == nil {
		cfg.connector = defaultConnector(target, cfg.dialer)
	}

	return cfg
}

func defaultConnector(target *Target, dialer conn.Dialer) cluster.Connector {
	if target.Mode() == model.Single {
		seeds := target.Seeds()
		var addr model.Addr
		if len(seeds) > 0 {
			addr = seeds[0]
		}
		return cluster.Direct(addr, dialer)
	}
	return cluster.ReplicaSet(target.Seeds(), dialer, target.SecondaryReadsAllowed())
}

// Option configures a server.
type Option func(*config)

type config struct {
	dialer    conn.Dialer
	connector cluster.Connector
	logger    logrus.FieldLogger
}

// WithDialer configures the transport used to open connections. The
// dialer backs both the connect strategy and pool growth.
func WithDialer(dialer conn.Dialer) Option {
	return func(c *config) { c.dialer = dialer }
}

// WithConnector overrides the connect strategy derived from the
// target's topology mode.
func WithConnector(connector cluster.Connector) Option {
	return func(c *config) { c.connector = connector }
}

// WithLogger configures the logger used for lifecycle events. The
// default discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) { c.logger = logger }
}
