package conn

import (
	"context"

	"github.com/testn/mongogo/auth"
	"github.com/testn/mongogo/model"
)

// Dialer opens a connection to a server node. Implementations own the
// transport and the wire codec; this package only routes and pools the
// connections they produce.
type Dialer func(ctx context.Context, addr model.Addr) (Connection, error)

// Connection is a single logical connection to one server node.
type Connection interface {
	// Addr gets the address of the node the connection is bound to.
	Addr() model.Addr
	// Alive indicates whether the connection is still usable.
	Alive() bool
	// CheckAuthentication authenticates the connection for cred if it
	// has not been already. A nil cred is a no-op.
	CheckAuthentication(cred *auth.Credential) error
	// Run executes a command against the named database and decodes the
	// reply into result.
	Run(ctx context.Context, db string, cmd interface{}, result interface{}) error
	// Close closes the connection. For a connection drawn from a Pool,
	// Close returns it to that pool instead.
	Close() error
}
