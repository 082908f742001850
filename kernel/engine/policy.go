package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
)

const (
	fairingOpenWarning  = "WARNING: the rocket fairing is not closed. If launched, the rocket will not be able to deploy its parachute. Continue anyway?"
	rocketAbsentWarning = "WARNING: the rocket appears disconnected (state: %s). If launched, it will not be able to deploy its parachute. Continue anyway?"
	rotateWarning       = "WARNING: rotate the servo by %g°? If the rocket is pressurized, it will lift off."
)

// Policy decides which actions need a human confirmation. The safe-state table is configurable
// because firmware revisions disagree on which rocket states are safe.
type Policy struct {
	safe                 map[model.ActionID]map[model.RocketState]bool
	rotateConfirmDegrees float64
}

func NewPolicy(cfg model.PolicyConfig) (*Policy, error) {
	p := &Policy{
		safe:                 make(map[model.ActionID]map[model.RocketState]bool),
		rotateConfirmDegrees: cfg.RotateConfirmDegrees,
	}
	if p.rotateConfirmDegrees <= 0 {
		p.rotateConfirmDegrees = model.DefaultRotateConfirmDegrees
	}

	for name, states := range model.MergeSafeRocketStates(cfg.SafeRocketStates) {
		action, err := model.ParseActionID(name)
		if err != nil {
			return nil, err
		}
		set := make(map[model.RocketState]bool, len(states))
		for _, s := range states {
			rs, ok := knownRocketState(s)
			if !ok {
				return nil, fmt.Errorf("policy for '%s': unknown rocket state '%s'", action, s)
			}
			set[rs] = true
		}
		p.safe[action] = set
	}
	return p, nil
}

// DefaultPolicy requires IDLING_CLOSED for both start-filling and launch.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(model.DefaultConfig().Policy)
	if err != nil {
		panic(err)
	}
	return p
}

// Evaluate computes the confirmation requirement from the snapshot as it is now. Results must
// not be cached across snapshots.
func (p *Policy) Evaluate(s model.Snapshot, action model.ActionID, params model.Params) (bool, string) {
	if action == model.ActionRotateServo {
		if math.Abs(params.Degrees) >= p.rotateConfirmDegrees {
			return true, fmt.Sprintf(rotateWarning, params.Degrees)
		}
		return false, ""
	}

	safe, gated := p.safe[action]
	if !gated || safe[s.RocketState] {
		return false, ""
	}
	if s.RocketState == model.RocketIdlingOpen {
		return true, fairingOpenWarning
	}
	return true, fmt.Sprintf(rocketAbsentWarning, s.RocketState.DisplayName())
}

func knownRocketState(v string) (model.RocketState, bool) {
	for _, rs := range model.RocketStates {
		if strings.EqualFold(string(rs), strings.TrimSpace(v)) {
			return rs, true
		}
	}
	return "", false
}
