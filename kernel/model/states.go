package model

import "strings"

// RocketState is the rocket's connectivity and fairing posture as reported by the launchpad.
type RocketState string

const (
	RocketDisconnected     RocketState = "DISCONNECTED"
	RocketUnknown          RocketState = "UNKNOWN"
	RocketError            RocketState = "ERROR"
	RocketIdlingOpen       RocketState = "IDLING_OPEN"
	RocketIdlingClosed     RocketState = "IDLING_CLOSED"
	RocketWaitingForLaunch RocketState = "WAITING_FOR_LAUNCH"
)

var RocketStates = []RocketState{
	RocketDisconnected,
	RocketUnknown,
	RocketError,
	RocketIdlingOpen,
	RocketIdlingClosed,
	RocketWaitingForLaunch,
}

// ParseRocketState maps a wire value to a RocketState. Anything unrecognised is UNKNOWN.
func ParseRocketState(v string) RocketState {
	s := RocketState(strings.ToUpper(strings.TrimSpace(v)))
	switch s {
	case RocketDisconnected, RocketUnknown, RocketError, RocketIdlingOpen, RocketIdlingClosed, RocketWaitingForLaunch:
		return s
	}
	return RocketUnknown
}

func (s RocketState) Severity() Severity {
	switch s {
	case RocketDisconnected, RocketUnknown, RocketError:
		return SeverityAlert
	case RocketIdlingClosed:
		return SeverityOK
	case RocketIdlingOpen:
		return SeverityWarn
	case RocketWaitingForLaunch:
		return SeverityNeutral
	}
	return SeverityNeutral
}

func (s RocketState) DisplayName() string {
	if s == RocketWaitingForLaunch {
		return "Waiting for launch (disconnected)"
	}
	return humanize(string(s))
}

// LaunchpadState is the launchpad's position in the fill/launch sequence.
type LaunchpadState string

const (
	LaunchpadUnknown        LaunchpadState = "UNKNOWN"
	LaunchpadIdling         LaunchpadState = "IDLING"
	LaunchpadWaterFilling   LaunchpadState = "WATER_FILLING"
	LaunchpadPressurizing   LaunchpadState = "PRESSURIZING"
	LaunchpadReadyForLaunch LaunchpadState = "READY_FOR_LAUNCH"

	// post-launch states reported by the firmware
	LaunchpadLaunching        LaunchpadState = "LAUNCHING"
	LaunchpadWaitingForRocket LaunchpadState = "WAITING_FOR_ROCKET"
	LaunchpadReceivingData    LaunchpadState = "RECEIVING_DATA"
	LaunchpadReceivedData     LaunchpadState = "RECEIVED_DATA"
)

var LaunchpadStates = []LaunchpadState{
	LaunchpadUnknown,
	LaunchpadIdling,
	LaunchpadWaterFilling,
	LaunchpadPressurizing,
	LaunchpadReadyForLaunch,
	LaunchpadLaunching,
	LaunchpadWaitingForRocket,
	LaunchpadReceivingData,
	LaunchpadReceivedData,
}

// ParseLaunchpadState maps a wire value to a LaunchpadState. The firmware's IDLE is IDLING;
// anything unrecognised, including UNINITIALIZED, is UNKNOWN.
func ParseLaunchpadState(v string) LaunchpadState {
	s := LaunchpadState(strings.ToUpper(strings.TrimSpace(v)))
	switch s {
	case "IDLE":
		return LaunchpadIdling
	case LaunchpadUnknown, LaunchpadIdling, LaunchpadWaterFilling, LaunchpadPressurizing, LaunchpadReadyForLaunch,
		LaunchpadLaunching, LaunchpadWaitingForRocket, LaunchpadReceivingData, LaunchpadReceivedData:
		return s
	}
	return LaunchpadUnknown
}

// Filling is true while telemetry is live.
func (s LaunchpadState) Filling() bool {
	return s == LaunchpadWaterFilling || s == LaunchpadPressurizing
}

func (s LaunchpadState) Severity() Severity {
	switch s {
	case LaunchpadUnknown:
		return SeverityAlert
	case LaunchpadIdling, LaunchpadReceivedData:
		return SeverityOK
	case LaunchpadWaterFilling, LaunchpadPressurizing, LaunchpadReadyForLaunch, LaunchpadLaunching:
		return SeverityWarn
	case LaunchpadWaitingForRocket, LaunchpadReceivingData:
		return SeverityNeutral
	}
	return SeverityNeutral
}

func (s LaunchpadState) DisplayName() string {
	return humanize(string(s))
}

// Severity classifies a state for rendering.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityOK
	SeverityWarn
	SeverityAlert
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarn:
		return "warn"
	case SeverityAlert:
		return "alert"
	case SeverityNeutral:
		return "neutral"
	}
	return "neutral"
}

func humanize(v string) string {
	if v == "" {
		return ""
	}
	lower := strings.ToLower(strings.ReplaceAll(v, "_", " "))
	return strings.ToUpper(lower[:1]) + lower[1:]
}
