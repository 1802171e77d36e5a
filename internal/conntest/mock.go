package conntest

import (
	"context"
	"sync"

	"gopkg.in/mgo.v2/bson"

	"github.com/testn/mongogo/auth"
	"github.com/testn/mongogo/conn"
	"github.com/testn/mongogo/model"
)

// RunCall records one command executed through a MockConnection.
type RunCall struct {
	DB  string
	Cmd interface{}
}

// MockConnection is a scriptable conn.Connection for tests. Replies are
// consumed in order; once exhausted, Run answers {"ok": 1}.
type MockConnection struct {
	Address model.Addr
	AuthErr error
	RunErr  error
	Replies []bson.M

	mu         sync.Mutex
	dead       bool
	authChecks []string
	ran        []RunCall
}

func (c *MockConnection) Addr() model.Addr {
	if c.Address == "" {
		return model.Addr("localhost:27017")
	}
	return c.Address
}

func (c *MockConnection) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.dead
}

func (c *MockConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead = true
	return nil
}

func (c *MockConnection) CheckAuthentication(cred *auth.Credential) error {
	c.mu.Lock()
	c.authChecks = append(c.authChecks, cred.Key())
	err := c.AuthErr
	c.mu.Unlock()

	if err != nil {
		return auth.NewError(err, cred)
	}
	return nil
}

func (c *MockConnection) Run(ctx context.Context, db string, cmd interface{}, result interface{}) error {
	c.mu.Lock()
	c.ran = append(c.ran, RunCall{DB: db, Cmd: cmd})
	err := c.RunErr
	reply := bson.M{"ok": 1}
	if len(c.Replies) > 0 {
		reply = c.Replies[0]
		c.Replies = c.Replies[1:]
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}

	raw, err := bson.Marshal(reply)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, result)
}

// AuthChecks gets the credential keys authenticated so far.
func (c *MockConnection) AuthChecks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.authChecks...)
}

// Ran gets the commands executed so far.
func (c *MockConnection) Ran() []RunCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]RunCall(nil), c.ran...)
}

// MockDialer produces MockConnections, optionally scripted per address.
type MockDialer struct {
	// Err fails every dial when set.
	Err error
	// ErrFor fails dials to specific addresses.
	ErrFor map[model.Addr]error
	// Script customizes the connection dialed for an address.
	Script map[model.Addr]func() *MockConnection

	mu     sync.Mutex
	dialed []*MockConnection
}

// Dial is a conn.Dialer.
func (d *MockDialer) Dial(ctx context.Context, addr model.Addr) (conn.Connection, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	if err, ok := d.ErrFor[addr]; ok {
		return nil, err
	}

	var c *MockConnection
	if factory, ok := d.Script[addr]; ok {
		c = factory()
	} else {
		c = &MockConnection{Address: addr}
	}

	d.mu.Lock()
	d.dialed = append(d.dialed, c)
	d.mu.Unlock()
	return c, nil
}

// Dialed gets every connection handed out so far.
func (d *MockDialer) Dialed() []*MockConnection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockConnection(nil), d.dialed...)
}
