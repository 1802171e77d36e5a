package cluster

import (
	"context"

	"github.com/testn/mongogo/conn"
	"github.com/testn/mongogo/model"
)

// Direct returns a Connector that connects to a single server and
// treats it as the primary, regardless of its role in any replica set.
func Direct(addr model.Addr, dialer conn.Dialer) Connector {
	return &directConnector{addr: addr.Canonicalize(), dialer: dialer}
}

type directConnector struct {
	addr   model.Addr
	dialer conn.Dialer
}

func (d *directConnector) Connect(ctx context.Context) (*Result, error) {
	if d.dialer == nil {
		return nil, conn.NewConnectionError(d.addr, nil, "no dialer configured")
	}

	c, err := d.dialer(ctx, d.addr)
	if err != nil {
		return nil, conn.NewConnectionError(d.addr, err, "failed connecting")
	}

	return &Result{
		Primary: c,
		View:    model.TopologyView{Primary: d.addr},
	}, nil
}
