package cluster

import (
	"context"

	"gopkg.in/mgo.v2/bson"

	"github.com/testn/mongogo/conn"
	"github.com/testn/mongogo/model"
)

// ReplicaSet returns a Connector that resolves the primary of a replica
// set starting from the seed list. When secondaryReads is true it also
// opens one connection to each secondary the primary reports; those
// connections back the secondary pools used for read distribution.
func ReplicaSet(seeds []model.Addr, dialer conn.Dialer, secondaryReads bool) Connector {
	canonical := make([]model.Addr, 0, len(seeds))
	for _, s := range seeds {
		canonical = append(canonical, s.Canonicalize())
	}

	return &replSetConnector{
		seeds:          canonical,
		dialer:         dialer,
		secondaryReads: secondaryReads,
	}
}

type replSetConnector struct {
	seeds          []model.Addr
	dialer         conn.Dialer
	secondaryReads bool
}

// isMasterResult is the subset of the isMaster reply the connector
// needs to resolve the topology.
type isMasterResult struct {
	IsMaster  bool     `bson:"ismaster"`
	Secondary bool     `bson:"secondary"`
	Primary   string   `bson:"primary"`
	Hosts     []string `bson:"hosts"`
}

func (r *replSetConnector) Connect(ctx context.Context) (*Result, error) {
	if r.dialer == nil {
		return nil, conn.NewConnectionError("", nil, "no dialer configured")
	}

	primary, primaryAddr, hosts, err := r.findPrimary(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Primary: primary,
		View:    model.TopologyView{Primary: primaryAddr},
	}

	for _, h := range hosts {
		if h == primaryAddr {
			continue
		}
		result.View.Secondaries = append(result.View.Secondaries, h)
	}

	if !r.secondaryReads {
		return result, nil
	}

	for _, h := range result.View.Secondaries {
		c, err := r.dialer(ctx, h)
		if err != nil {
			result.Close()
			return nil, conn.NewConnectionError(h, err, "failed connecting to secondary")
		}
		result.Secondaries = append(result.Secondaries, c)
	}

	return result, nil
}

// findPrimary walks the seed list, following any primary or host hints
// in isMaster replies, until a node reports itself primary.
func (r *replSetConnector) findPrimary(ctx context.Context) (conn.Connection, model.Addr, []model.Addr, error) {
	var lastErr error
	tried := make(map[model.Addr]bool)
	queue := append([]model.Addr(nil), r.seeds...)

	for i := 0; i < len(queue); i++ {
		addr := queue[i]
		if tried[addr] {
			continue
		}
		tried[addr] = true

		c, err := r.dialer(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}

		var res isMasterResult
		if err := c.Run(ctx, "admin", bson.D{{Name: "ismaster", Value: 1}}, &res); err != nil {
			c.Close()
			lastErr = err
			continue
		}

		if res.IsMaster {
			hosts := make([]model.Addr, 0, len(res.Hosts))
			for _, h := range res.Hosts {
				hosts = append(hosts, model.Addr(h).Canonicalize())
			}
			return c, addr, hosts, nil
		}

		c.Close()

		if res.Primary != "" {
			queue = append(queue, model.Addr(res.Primary).Canonicalize())
		}
		for _, h := range res.Hosts {
			queue = append(queue, model.Addr(h).Canonicalize())
		}
	}

	return nil, "", nil, conn.NewConnectionError("", lastErr, "unable to determine the primary of the replica set")
}
