package conn

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/testn/mongogo/model"
)

// NewPool creates a new connection pool for addr. At most maxSize
// connections exist at once, pooled or checked out. Seed connections are
// adopted into the pool; seeds beyond maxSize are closed.
func NewPool(addr model.Addr, maxSize uint64, dialer Dialer, seeds ...Connection) *Pool {
	p := &Pool{
		addr:   addr.Canonicalize(),
		dialer: dialer,
		conns:  make(chan *pooledConn, maxSize),
		sem:    semaphore.NewWeighted(int64(maxSize)),
	}

	for _, s := range seeds {
		select {
		case p.conns <- &pooledConn{Connection: s, p: p}:
		default:
			s.Close()
		}
	}

	return p
}

// Pool holds connections to one node such that they can be checked out
// and reused.
type Pool struct {
	addr   model.Addr
	dialer Dialer
	sem    *semaphore.Weighted

	connsLock sync.Mutex
	conns     chan *pooledConn
	gen       uint32
}

// Addr gets the address the pool dials.
func (p *Pool) Addr() model.Addr {
	return p.addr
}

// Clear marks every connection created so far as expired. Expired
// connections are not returned to the pool; they are closed for real as
// they are checked in or checked out.
func (p *Pool) Clear() {
	atomic.AddUint32(&p.gen, 1)
}

// Close closes the pool, making it unusable. It closes all pooled
// connections; checked-out connections are closed as they come back.
func (p *Pool) Close() {
	p.connsLock.Lock()
	conns := p.conns
	p.conns = nil
	p.connsLock.Unlock()

	if conns == nil {
		return
	}

	close(conns)
	for c := range conns {
		c.Connection.Close()
	}
}

// Acquire checks a connection out of the pool, dialing a new one if none
// is idle. To return the connection to the pool, close it.
func (p *Pool) Acquire(ctx context.Context) (Connection, error) {
	p.connsLock.Lock()
	conns := p.conns
	p.connsLock.Unlock()

	if conns == nil {
		return nil, ErrPoolClosed
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	c, err := p.get(ctx, conns)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}

	return c, nil
}

func (p *Pool) get(ctx context.Context, conns chan *pooledConn) (Connection, error) {
	gen := atomic.LoadUint32(&p.gen)
	select {
	case c := <-conns:
		if c == nil {
			return nil, ErrPoolClosed
		}

		if c.expired() {
			c.Connection.Close()
			return p.get(ctx, conns)
		}

		return c, nil
	default:
		c, err := p.dial(ctx)
		if err != nil {
			return nil, err
		}

		return &pooledConn{Connection: c, p: p, gen: gen}, nil
	}
}

func (p *Pool) dial(ctx context.Context) (Connection, error) {
	if p.dialer == nil {
		return nil, NewConnectionError(p.addr, nil, "no dialer configured")
	}

	c, err := p.dialer(ctx, p.addr)
	if err != nil {
		return nil, NewConnectionError(p.addr, err, "failed dialing")
	}

	return c, nil
}

func (p *Pool) put(c *pooledConn) error {
	defer p.sem.Release(1)

	if c.expired() {
		return c.Connection.Close()
	}

	p.connsLock.Lock()
	defer p.connsLock.Unlock()

	if p.conns == nil {
		return c.Connection.Close()
	}

	select {
	case p.conns <- c:
		return nil
	default:
		// pool is full
		return c.Connection.Close()
	}
}

type pooledConn struct {
	Connection
	p   *Pool
	gen uint32
}

func (c *pooledConn) Close() error {
	return c.p.put(c)
}

func (c *pooledConn) expired() bool {
	return !c.Connection.Alive() || atomic.LoadUint32(&c.p.gen) > c.gen
}
