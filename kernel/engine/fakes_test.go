package engine

import (
	"context"
	"sync"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/store"
)

type sendCall struct {
	action model.ActionID
	params model.Params
}

type fakeClient struct {
	rocket       model.RocketState
	rocketErr    error
	launchpad    model.LaunchpadState
	launchpadErr error
	pressure     float64
	pressureErr  error
	water        float64
	waterErr     error

	sendErr   error
	sendGate  chan struct{} // when set, Send blocks until closed
	sendEnter chan struct{}

	mu    sync.Mutex
	sends []sendCall
}

func (c *fakeClient) RocketState(context.Context) (model.RocketState, error) {
	return c.rocket, c.rocketErr
}

func (c *fakeClient) LaunchpadState(context.Context) (model.LaunchpadState, error) {
	return c.launchpad, c.launchpadErr
}

func (c *fakeClient) Pressure(context.Context) (float64, error) {
	return c.pressure, c.pressureErr
}

func (c *fakeClient) WaterVolume(context.Context) (float64, error) {
	return c.water, c.waterErr
}

func (c *fakeClient) Send(_ context.Context, action model.ActionID, params model.Params) error {
	c.mu.Lock()
	c.sends = append(c.sends, sendCall{action: action, params: params})
	c.mu.Unlock()
	if c.sendEnter != nil {
		c.sendEnter <- struct{}{}
	}
	if c.sendGate != nil {
		<-c.sendGate
	}
	return c.sendErr
}

func (c *fakeClient) sent() []sendCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sendCall(nil), c.sends...)
}

type fakePush struct {
	events chan model.Envelope
	err    error
}

func (p *fakePush) Subscribe(context.Context) (<-chan model.Envelope, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.events, nil
}

type recordingListener struct {
	mu        sync.Mutex
	snapshots []model.Snapshot
}

func (l *recordingListener) Refresh(s model.Snapshot, _ Decisions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, s)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.snapshots)
}

func snapshotWith(rs model.RocketState, ls model.LaunchpadState) model.Snapshot {
	s := model.NewSnapshot()
	s.RocketState = rs
	s.LaunchpadState = ls
	return s
}

// newTestReconciler returns a reconciler whose store already holds rs/ls.
func newTestReconciler(rs model.RocketState, ls model.LaunchpadState) *Reconciler {
	r := NewReconciler(store.NewMemoryStore(), NewGate(nil))
	r.Store.ApplyPull(model.PullResult{RocketState: &rs, LaunchpadState: &ls})
	return r
}

func ptr[T any](v T) *T { return &v }
