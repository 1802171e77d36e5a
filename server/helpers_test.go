package server_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/testn/mongogo/cluster"
	"github.com/testn/mongogo/internal/conntest"
	"github.com/testn/mongogo/model"
	. "github.com/testn/mongogo/server"
)

// fakeConnector hands out fresh mock connections on every call so that
// reconnects can be observed.
type fakeConnector struct {
	secondaries int

	mu      sync.Mutex
	err     error
	calls   int
	results []*cluster.Result
}

func (f *fakeConnector) Connect(ctx context.Context) (*cluster.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	res := &cluster.Result{
		Primary: &conntest.MockConnection{Address: model.Addr("primary:27017")},
		View:    model.TopologyView{Primary: model.Addr("primary:27017")},
	}
	for i := 0; i < f.secondaries; i++ {
		addr := model.Addr(fmt.Sprintf("secondary-%d:27017", i))
		res.Secondaries = append(res.Secondaries, &conntest.MockConnection{Address: addr})
		res.View.Secondaries = append(res.View.Secondaries, addr)
	}

	f.results = append(f.results, res)
	return res, nil
}

func (f *fakeConnector) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeConnector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeConnector) result(i int) *cluster.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[i]
}

func (f *fakeConnector) lastResult() *cluster.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[len(f.results)-1]
}

func primaryMock(f *fakeConnector) *conntest.MockConnection {
	return f.lastResult().Primary.(*conntest.MockConnection)
}

func newTestServer(secondaries int, targetOpts []TargetOption, opts ...Option) (*Server, *fakeConnector, *conntest.MockDialer) {
	dialer := &conntest.MockDialer{}
	connector := &fakeConnector{secondaries: secondaries}

	targetOpts = append([]TargetOption{WithSecondaryReads(true)}, targetOpts...)
	target := NewTarget([]model.Addr{"node-a", "node-b", "node-c"}, targetOpts...)

	opts = append([]Option{WithDialer(dialer.Dial), WithConnector(connector)}, opts...)
	return New(target, opts...), connector, dialer
}
