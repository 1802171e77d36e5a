// Package cluster implements the connect strategies a server chooses
// between based on its topology mode: a direct connection to one node,
// or replica-set resolution of a primary and its secondaries.
package cluster

import (
	"context"

	"github.com/testn/mongogo/conn"
	"github.com/testn/mongogo/model"
)

// Result is the outcome of a successful connect attempt. Every
// connection it carries is open and unpooled; the caller takes
// ownership.
type Result struct {
	Primary     conn.Connection
	Secondaries []conn.Connection
	View        model.TopologyView
}

// Close closes every connection in the result.
func (r *Result) Close() {
	if r.Primary != nil {
		r.Primary.Close()
	}
	for _, c := range r.Secondaries {
		c.Close()
	}
}

// Connector establishes the initial connections for a topology.
type Connector interface {
	// Connect resolves the topology and opens a connection to the
	// primary and, depending on the strategy, to each secondary. Either
	// every connection in the result is usable or an error is returned
	// and nothing stays open.
	Connect(ctx context.Context) (*Result, error)
}
