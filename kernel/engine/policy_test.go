package engine

import (
	"testing"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_DefaultTable(t *testing.T) {
	p := DefaultPolicy()

	for _, a := range []model.ActionID{model.ActionStartFilling, model.ActionLaunch} {
		ok, _ := p.Evaluate(snapshotWith(model.RocketIdlingClosed, model.LaunchpadIdling), a, model.Params{})
		assert.False(t, ok, a)
		ok, _ = p.Evaluate(snapshotWith(model.RocketIdlingOpen, model.LaunchpadIdling), a, model.Params{})
		assert.True(t, ok, a)
	}
	ok, _ := p.Evaluate(snapshotWith(model.RocketDisconnected, model.LaunchpadWaterFilling), model.ActionAbort, model.Params{})
	assert.False(t, ok)
}

func TestPolicy_WarningTexts(t *testing.T) {
	p := DefaultPolicy()

	ok, text := p.Evaluate(snapshotWith(model.RocketIdlingOpen, model.LaunchpadReadyForLaunch), model.ActionLaunch, model.Params{})
	assert.True(t, ok)
	assert.Equal(t, fairingOpenWarning, text)

	for _, rs := range []model.RocketState{model.RocketDisconnected, model.RocketUnknown, model.RocketError, model.RocketWaitingForLaunch} {
		ok, text = p.Evaluate(snapshotWith(rs, model.LaunchpadReadyForLaunch), model.ActionLaunch, model.Params{})
		assert.True(t, ok, rs)
		assert.Contains(t, text, rs.DisplayName())
		assert.Contains(t, text, "parachute")
	}

	ok, text = p.Evaluate(snapshotWith(model.RocketDisconnected, model.LaunchpadWaterFilling), model.ActionAbort, model.Params{})
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestPolicy_Configurable(t *testing.T) {
	p, err := NewPolicy(model.PolicyConfig{
		SafeRocketStates: map[string][]string{
			"launch": {"idling_closed", "WAITING_FOR_LAUNCH"},
		},
	})
	require.NoError(t, err)

	ok, _ := p.Evaluate(snapshotWith(model.RocketWaitingForLaunch, model.LaunchpadReadyForLaunch), model.ActionLaunch, model.Params{})
	assert.False(t, ok)

	// start-filling not listed: the default table still applies
	ok, text := p.Evaluate(snapshotWith(model.RocketIdlingOpen, model.LaunchpadIdling), model.ActionStartFilling, model.Params{})
	assert.True(t, ok)
	assert.Equal(t, fairingOpenWarning, text)
}

func TestPolicy_EmptyStatesAlwaysConfirm(t *testing.T) {
	p, err := NewPolicy(model.PolicyConfig{
		SafeRocketStates: map[string][]string{"open-fairing": {}},
	})
	require.NoError(t, err)

	ok, _ := p.Evaluate(snapshotWith(model.RocketIdlingClosed, model.LaunchpadIdling), model.ActionOpenFairing, model.Params{})
	assert.True(t, ok)
}

func TestPolicy_InvalidTable(t *testing.T) {
	_, err := NewPolicy(model.PolicyConfig{SafeRocketStates: map[string][]string{"explode": {"IDLING_CLOSED"}}})
	assert.Error(t, err)

	_, err = NewPolicy(model.PolicyConfig{SafeRocketStates: map[string][]string{"launch": {"FLYING"}}})
	assert.Error(t, err)
}

func TestPolicy_RotateThreshold(t *testing.T) {
	p := DefaultPolicy()
	s := snapshotWith(model.RocketIdlingClosed, model.LaunchpadIdling)

	ok, _ := p.Evaluate(s, model.ActionRotateServo, model.Params{Degrees: 2})
	assert.False(t, ok)
	ok, _ = p.Evaluate(s, model.ActionRotateServo, model.Params{Degrees: -2})
	assert.False(t, ok)

	ok, text := p.Evaluate(s, model.ActionRotateServo, model.Params{Degrees: -120})
	assert.True(t, ok)
	assert.Contains(t, text, "-120")

	ok, _ = p.Evaluate(s, model.ActionRotateServo, model.Params{Degrees: 90})
	assert.True(t, ok)
}
