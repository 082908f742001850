package engine

import (
	"testing"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshForm(f *FillForm, s model.Snapshot) {
	f.Refresh(s, NewGate(nil).Decide(s))
}

func TestFillForm_ReadOnlyBeforeFirstRefresh(t *testing.T) {
	f := NewFillForm(model.DefaultConfig().Limits)
	_, err := f.Edit(0.5, 5)
	assert.ErrorIs(t, err, ErrActionBlocked)
	assert.False(t, f.HasDraft())
}

func TestFillForm_EditClamps(t *testing.T) {
	f := NewFillForm(model.DefaultConfig().Limits)
	refreshForm(f, snapshotWith(model.RocketIdlingClosed, model.LaunchpadIdling))

	v, err := f.Edit(3, 12)
	require.NoError(t, err)
	assert.Equal(t, model.FillTelemetry{WaterVolume: 1.5, Pressure: 10}, v)
	assert.Equal(t, v, f.Values())
}

func TestFillForm_PushDiscardsDraft(t *testing.T) {
	f := NewFillForm(model.DefaultConfig().Limits)
	refreshForm(f, snapshotWith(model.RocketIdlingClosed, model.LaunchpadIdling))
	_, err := f.Edit(0.8, 6)
	require.NoError(t, err)

	s := snapshotWith(model.RocketIdlingClosed, model.LaunchpadWaterFilling)
	s.FillTelemetry = model.FillTelemetry{WaterVolume: 0.1, Pressure: 1}
	refreshForm(f, s)

	assert.False(t, f.HasDraft())
	assert.False(t, f.Editable())
	assert.Equal(t, s.FillTelemetry, f.Values())

	_, err = f.Edit(0.9, 7)
	assert.ErrorIs(t, err, ErrActionBlocked)
	assert.Equal(t, s.FillTelemetry, f.Values())
}

func TestFillForm_DraftSurvivesIdlingRefresh(t *testing.T) {
	f := NewFillForm(model.DefaultConfig().Limits)
	refreshForm(f, snapshotWith(model.RocketIdlingClosed, model.LaunchpadIdling))
	_, err := f.Edit(0.8, 6)
	require.NoError(t, err)

	refreshForm(f, snapshotWith(model.RocketIdlingOpen, model.LaunchpadIdling))
	assert.True(t, f.HasDraft())
	assert.Equal(t, model.FillTelemetry{WaterVolume: 0.8, Pressure: 6}, f.Values())
}
