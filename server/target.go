package server

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/testn/mongogo/auth"
	"github.com/testn/mongogo/model"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultMaxPoolSize    = 100
)

// NewTarget creates a server target from a seed list. A target is
// immutable once constructed; its normalized Key is what registry
// equality is based on.
func NewTarget(seeds []model.Addr, opts ...TargetOption) *Target {
	t := &Target{
		connectTimeout: defaultConnectTimeout,
		maxPoolSize:    defaultMaxPoolSize,
		writeConcern:   Acknowledged(),
	}

	for _, s := range seeds {
		t.seeds = append(t.seeds, s.Canonicalize())
	}

	if len(t.seeds) > 1 {
		t.mode = model.ReplicaSet
	} else {
		t.mode = model.Single
	}

	for _, opt := range opts {
		opt(t)
	}

	t.scope = auth.NewScope(t.creds...)
	return t
}

// Target identifies a logical server: the seed list, the topology mode,
// the credentials and the behavioral options. Two targets with equal
// keys refer to the same server.
type Target struct {
	seeds          []model.Addr
	mode           model.TopologyKind
	creds          []auth.Credential
	scope          *auth.Scope
	connectTimeout time.Duration
	maxPoolSize    uint64
	secondaryReads bool
	writeConcern   WriteConcern
}

// TargetOption configures a target.
type TargetOption func(*Target)

// WithMode sets the topology mode, overriding the seed-count default.
func WithMode(mode model.TopologyKind) TargetOption {
	return func(t *Target) { t.mode = mode }
}

// WithCredentials sets the credentials the target's scope is built from.
func WithCredentials(creds ...auth.Credential) TargetOption {
	return func(t *Target) { t.creds = creds }
}

// WithConnectTimeout sets the timeout applied to a whole connect
// attempt, topology resolution included.
func WithConnectTimeout(timeout time.Duration) TargetOption {
	return func(t *Target) { t.connectTimeout = timeout }
}

// WithMaxPoolSize caps the number of connections per pool.
func WithMaxPoolSize(size uint64) TargetOption {
	return func(t *Target) { t.maxPoolSize = size }
}

// WithSecondaryReads permits routing secondary-acceptable reads to
// secondary nodes.
func WithSecondaryReads(allowed bool) TargetOption {
	return func(t *Target) { t.secondaryReads = allowed }
}

// WithWriteConcern sets the default write concern for database handles.
func WithWriteConcern(wc WriteConcern) TargetOption {
	return func(t *Target) { t.writeConcern = wc }
}

// Seeds gets the canonicalized seed list.
func (t *Target) Seeds() []model.Addr {
	return append([]model.Addr(nil), t.seeds...)
}

// Mode gets the topology mode.
func (t *Target) Mode() model.TopologyKind {
	return t.mode
}

// Scope gets the credential scope built from the target's credentials.
func (t *Target) Scope() *auth.Scope {
	return t.scope
}

// ConnectTimeout gets the default connect timeout.
func (t *Target) ConnectTimeout() time.Duration {
	return t.connectTimeout
}

// MaxPoolSize gets the per-pool connection cap.
func (t *Target) MaxPoolSize() uint64 {
	return t.maxPoolSize
}

// SecondaryReadsAllowed indicates whether secondary-acceptable reads may
// be served by secondaries.
func (t *Target) SecondaryReadsAllowed() bool {
	return t.secondaryReads
}

// WriteConcern gets the default write concern.
func (t *Target) WriteConcern() WriteConcern {
	return t.writeConcern
}

// Key gets the normalized representation of the target. Two targets are
// equal iff their keys are equal.
func (t *Target) Key() string {
	seeds := make([]string, 0, len(t.seeds))
	for _, s := range t.seeds {
		seeds = append(seeds, s.String())
	}
	sort.Strings(seeds)

	creds := make([]string, 0, len(t.creds))
	for i := range t.creds {
		creds = append(creds, t.creds[i].Key())
	}
	sort.Strings(creds)

	return fmt.Sprintf("%s|%s|%s|%s|secondaryReads=%t|connectTimeout=%s|maxPoolSize=%d",
		strings.Join(seeds, ","),
		t.mode,
		strings.Join(creds, ","),
		t.writeConcern.Key(),
		t.secondaryReads,
		t.connectTimeout,
		t.maxPoolSize,
	)
}
