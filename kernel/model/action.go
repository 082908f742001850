package model

import "fmt"

// ActionID names an operator action.
type ActionID string

const (
	ActionStartFilling     ActionID = "start-filling"
	ActionLaunch           ActionID = "launch"
	ActionAbort            ActionID = "abort"
	ActionOpenFairing      ActionID = "open-fairing"
	ActionCloseFairing     ActionID = "close-fairing"
	ActionSkipWaterFilling ActionID = "skip-water-filling"
	ActionSkipPressurizing ActionID = "skip-pressurizing"
	ActionRotateServo      ActionID = "rotate-servo"

	// ActionEditFillTargets covers the water volume and pressure sliders. It is gated like an
	// action but never dispatched.
	ActionEditFillTargets ActionID = "edit-fill-targets"
)

// Actions lists every gated action in display order.
var Actions = []ActionID{
	ActionStartFilling,
	ActionLaunch,
	ActionAbort,
	ActionOpenFairing,
	ActionCloseFairing,
	ActionSkipWaterFilling,
	ActionSkipPressurizing,
	ActionRotateServo,
	ActionEditFillTargets,
}

func ParseActionID(v string) (ActionID, error) {
	for _, a := range Actions {
		if string(a) == v {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action '%s'", v)
}

// Dispatchable is false for gate-only entries such as the fill-target controls.
func (a ActionID) Dispatchable() bool {
	return a != ActionEditFillTargets
}

// Params carries the arguments for actions that take any.
type Params struct {
	WaterVolume float64 // start-filling, liters
	Pressure    float64 // start-filling, bars
	Degrees     float64 // rotate-servo
}

// ActionDecision is derived from one snapshot and never stored.
type ActionDecision struct {
	Action               ActionID `json:"action"`
	Permitted            bool     `json:"permitted"`
	ReasonIfBlocked      string   `json:"reason_if_blocked,omitempty"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	ConfirmationText     string   `json:"confirmation_text,omitempty"`
}
