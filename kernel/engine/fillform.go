package engine

import (
	"sync"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/pkg/errors"
)

// FillForm models the water volume and pressure controls. While the launchpad is IDLING the
// operator may hold a draft; in any other state the controls mirror live telemetry and a pending
// draft is dropped, never merged.
type FillForm struct {
	limits model.LimitsConfig

	mu        sync.Mutex
	snapshot  model.Snapshot
	decisions Decisions
	draft     *model.FillTelemetry
}

func NewFillForm(limits model.LimitsConfig) *FillForm {
	return &FillForm{limits: limits, snapshot: model.NewSnapshot()}
}

// Refresh implements Listener.
func (f *FillForm) Refresh(s model.Snapshot, d Decisions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = s
	f.decisions = d
	if s.LaunchpadState != model.LaunchpadIdling {
		f.draft = nil
	}
}

// Edit records operator targets, clamped to the configured limits.
func (f *FillForm) Edit(waterVolume, pressure float64) (model.FillTelemetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.decisions.Permitted(model.ActionEditFillTargets) {
		return f.values(), errors.Wrapf(ErrActionBlocked, "fill targets are read-only while the launchpad is %s", f.snapshot.LaunchpadState.DisplayName())
	}
	f.draft = &model.FillTelemetry{
		WaterVolume: clamp(waterVolume, 0, f.limits.MaxWaterVolume),
		Pressure:    clamp(pressure, f.limits.MinPressure, f.limits.MaxPressure),
	}
	return *f.draft, nil
}

func (f *FillForm) Editable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decisions.Permitted(model.ActionEditFillTargets)
}

func (f *FillForm) HasDraft() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft != nil
}

// Values is what the controls show: the draft if one exists, else the live telemetry.
func (f *FillForm) Values() model.FillTelemetry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values()
}

func (f *FillForm) values() model.FillTelemetry {
	if f.draft != nil {
		return *f.draft
	}
	return f.snapshot.FillTelemetry
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
