package server

import (
	"context"

	"gopkg.in/mgo.v2/bson"

	"github.com/testn/mongogo/auth"
	"github.com/testn/mongogo/conn"
)

type dbKey struct {
	name string
	cred string
	wc   string
}

// DatabaseOption configures a database handle lookup.
type DatabaseOption func(*dbConfig)

type dbConfig struct {
	cred    *auth.Credential
	credSet bool
	wc      WriteConcern
	wcSet   bool
}

// WithDatabaseCredential overrides the credential resolved from the
// target's scope.
func WithDatabaseCredential(cred auth.Credential) DatabaseOption {
	return func(c *dbConfig) {
		c.cred = &cred
		c.credSet = true
	}
}

// WithDatabaseWriteConcern overrides the target's default write
// concern.
func WithDatabaseWriteConcern(wc WriteConcern) DatabaseOption {
	return func(c *dbConfig) {
		c.wc = wc
		c.wcSet = true
	}
}

// Database gets the handle for the named database. Handles are memoized
// by (name, credential identity, write concern): repeated lookups with
// the same resolved key return the same instance, and higher layers may
// rely on that identity.
func (s *Server) Database(name string, opts ...DatabaseOption) *Database {
	var cfg dbConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	cred := cfg.cred
	if !cfg.credSet {
		cred = s.target.Scope().Lookup(name)
	}
	wc := cfg.wc
	if !cfg.wcSet {
		wc = s.target.WriteConcern()
	}

	key := dbKey{name: name, cred: cred.Key(), wc: wc.Key()}

	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.dbs[key]; ok {
		return db
	}

	db := &Database{server: s, name: name, cred: cred, wc: wc}
	s.dbs[key] = db
	return db
}

// AdminDatabase gets the handle for the admin database, authenticated
// with the scope's administrative credential when one is configured.
func (s *Server) AdminDatabase() *Database {
	return s.Database("admin")
}

// Database is a handle to one named database on a server.
type Database struct {
	server *Server
	name   string
	cred   *auth.Credential
	wc     WriteConcern
}

// Name gets the database name.
func (db *Database) Name() string {
	return db.name
}

// Credential gets the credential the handle authenticates with, or nil.
func (db *Database) Credential() *auth.Credential {
	return db.cred
}

// WriteConcern gets the handle's write concern.
func (db *Database) WriteConcern() WriteConcern {
	return db.wc
}

// Server gets the server the handle belongs to.
func (db *Database) Server() *Server {
	return db.server
}

// RunCommand executes cmd against the database on a connection obtained
// through the router, honoring any request session carried by ctx. A
// reply whose ok field is not 1 is reported as a command failure.
func (db *Database) RunCommand(ctx context.Context, cmd interface{}) (bson.M, error) {
	c, err := db.server.AcquireConnection(ctx, db, false)
	if err != nil {
		return nil, err
	}

	var reply bson.M
	runErr := c.Run(ctx, db.name, cmd, &reply)
	relErr := db.server.ReleaseConnection(ctx, c)
	if runErr != nil {
		return nil, runErr
	}
	if relErr != nil {
		return nil, relErr
	}

	if !commandOK(reply) {
		return nil, &conn.CommandFailureError{Msg: "command failed", Response: reply}
	}
	return reply, nil
}

func commandOK(reply bson.M) bool {
	switch ok := reply["ok"].(type) {
	case int:
		return ok == 1
	case int64:
		return ok == 1
	case float64:
		return ok == 1
	case bool:
		return ok
	default:
		return false
	}
}
