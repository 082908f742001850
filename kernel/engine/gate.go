package engine

import (
	"fmt"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
)

// Decisions holds one ActionDecision per gated action.
type Decisions map[model.ActionID]model.ActionDecision

func (d Decisions) Permitted(action model.ActionID) bool {
	return d[action].Permitted
}

// Gate derives permissions from a snapshot. It has no state of its own beyond the policy and is
// safe to call from anywhere.
type Gate struct {
	Policy *Policy
}

func NewGate(p *Policy) *Gate {
	if p == nil {
		p = DefaultPolicy()
	}
	return &Gate{Policy: p}
}

// Decide evaluates every action against the snapshot. Confirmation for rotate-servo depends on
// the requested angle and is only known at dispatch time (see DecideAction).
func (g *Gate) Decide(s model.Snapshot) Decisions {
	out := make(Decisions, len(model.Actions))
	for _, a := range model.Actions {
		out[a] = g.DecideAction(s, a, model.Params{})
	}
	return out
}

func (g *Gate) DecideAction(s model.Snapshot, action model.ActionID, params model.Params) model.ActionDecision {
	d := model.ActionDecision{Action: action}
	d.Permitted, d.ReasonIfBlocked = permitted(s, action)
	d.RequiresConfirmation, d.ConfirmationText = g.Policy.Evaluate(s, action, params)
	return d
}

func permitted(s model.Snapshot, action model.ActionID) (bool, string) {
	lp, rs := s.LaunchpadState, s.RocketState

	switch action {
	case model.ActionStartFilling, model.ActionEditFillTargets:
		return requireLaunchpad(lp, model.LaunchpadIdling)
	case model.ActionLaunch:
		return requireLaunchpad(lp, model.LaunchpadReadyForLaunch)
	case model.ActionSkipWaterFilling:
		return requireLaunchpad(lp, model.LaunchpadWaterFilling)
	case model.ActionSkipPressurizing:
		return requireLaunchpad(lp, model.LaunchpadPressurizing)
	case model.ActionAbort:
		if lp == model.LaunchpadIdling {
			return false, "no launch sequence step is active"
		}
		return true, ""
	case model.ActionOpenFairing:
		if rs != model.RocketIdlingClosed {
			return false, fmt.Sprintf("rocket is %s, fairing must be closed", rs.DisplayName())
		}
		return requireLaunchpad(lp, model.LaunchpadIdling)
	case model.ActionCloseFairing:
		if rs != model.RocketIdlingOpen {
			return false, fmt.Sprintf("rocket is %s, fairing must be open", rs.DisplayName())
		}
		return true, ""
	case model.ActionRotateServo:
		return true, ""
	}
	return false, fmt.Sprintf("unknown action '%s'", action)
}

func requireLaunchpad(actual, want model.LaunchpadState) (bool, string) {
	if actual == want {
		return true, ""
	}
	return false, fmt.Sprintf("launchpad is %s, must be %s", actual.DisplayName(), want.DisplayName())
}
