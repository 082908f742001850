package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartPullsAndFollowsPush(t *testing.T) {
	push := &fakePush{events: make(chan model.Envelope)}
	client := &fakeClient{rocket: model.RocketIdlingClosed, launchpad: model.LaunchpadIdling, water: 0.2, pressure: 1}

	s, err := NewSession(nil, client, push, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snap, err := s.Start(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Pulled)
	assert.Equal(t, model.LaunchpadIdling, snap.LaunchpadState)
	assert.True(t, s.Form.Editable())

	push.events <- model.Envelope{Seq: 1, Event: &model.LaunchpadStateChanged{State: model.LaunchpadWaterFilling}}
	push.events <- model.Envelope{Seq: 2, Event: &model.Filling{WaterVolume: ptr(0.6)}}
	close(push.events)
	require.NoError(t, s.Wait())

	cur, d := s.Snapshot()
	assert.Equal(t, model.LaunchpadWaterFilling, cur.LaunchpadState)
	assert.Equal(t, 0.6, cur.FillTelemetry.WaterVolume)
	assert.Equal(t, 1.0, cur.FillTelemetry.Pressure)
	assert.True(t, d.Permitted(model.ActionSkipWaterFilling))
	assert.False(t, s.Form.Editable())
}

func TestSession_PushBeforePullWins(t *testing.T) {
	push := &fakePush{events: make(chan model.Envelope, 1)}
	push.events <- model.Envelope{Seq: 1, Event: &model.RocketStateChanged{State: model.RocketIdlingOpen}}

	s, err := NewSession(nil, &fakeClient{rocket: model.RocketIdlingClosed, launchpad: model.LaunchpadIdling}, push, nil, nil)
	require.NoError(t, err)

	// apply the buffered push first, as if it raced ahead of the pull responses
	s.Reconciler.Apply(<-push.events)
	snap := s.Reconciler.Pull(context.Background(), s.client)

	assert.Equal(t, model.RocketIdlingOpen, snap.RocketState)
	assert.Equal(t, model.LaunchpadIdling, snap.LaunchpadState)
}

func TestSession_PushUnavailable(t *testing.T) {
	s, err := NewSession(nil, &fakeClient{launchpad: model.LaunchpadIdling}, &fakePush{err: errors.New("refused")}, nil, nil)
	require.NoError(t, err)

	snap, err := s.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.LaunchpadIdling, snap.LaunchpadState)

	done := make(chan error, 1)
	go func() { done <- s.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait blocked without a push stream")
	}
}

func TestSession_InvalidPolicy(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Policy.SafeRocketStates = map[string][]string{"launch": {"FLYING"}}

	_, err := NewSession(cfg, &fakeClient{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestSession_Dispatch(t *testing.T) {
	client := &fakeClient{rocket: model.RocketIdlingClosed, launchpad: model.LaunchpadIdling}
	var got []Outcome
	s, err := NewSession(nil, client, nil, nil, NotifierFunc(func(o Outcome) { got = append(got, o) }))
	require.NoError(t, err)
	_, err = s.Start(context.Background())
	require.NoError(t, err)

	_, err = s.Form.Edit(0.5, 4)
	require.NoError(t, err)
	v := s.Form.Values()
	o, err := s.Dispatch(context.Background(), model.ActionStartFilling, model.Params{WaterVolume: v.WaterVolume, Pressure: v.Pressure})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, o.Status)
	assert.Equal(t, []Outcome{o}, got)
	assert.Equal(t, []sendCall{{action: model.ActionStartFilling, params: model.Params{WaterVolume: 0.5, Pressure: 4}}}, client.sent())
}
