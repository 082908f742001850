package model

import "encoding/json"

// Event is a typed push message from the launchpad.
type Event interface {
	EventType() string
}

// Envelope is an event together with its position in the push stream. Seq starts at 1;
// zero is reserved for locally originated (optimistic) updates.
type Envelope struct {
	Seq   uint64
	Event Event
}

const (
	EventNewRocketState    = "new-rocket-state"
	EventNewLaunchpadState = "new-launchpad-state"
	EventNewState          = "new-state"
	EventFilling           = "filling"
	EventNewDataAvailable  = "new-data-available"
	EventReceivingData     = "receiving-data"
)

type RocketStateChanged struct {
	State RocketState
}

func (e *RocketStateChanged) EventType() string { return EventNewRocketState }

func (e *RocketStateChanged) UnmarshalJSON(data []byte) error {
	var aux struct {
		State string `json:"rocket-state"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.State = ParseRocketState(aux.State)
	return nil
}

// LaunchpadStateChanged is sent as new-launchpad-state{launchpad-state} by current firmware and as
// new-state{state} by older builds.
type LaunchpadStateChanged struct {
	State LaunchpadState
}

func (e *LaunchpadStateChanged) EventType() string { return EventNewLaunchpadState }

func (e *LaunchpadStateChanged) UnmarshalJSON(data []byte) error {
	var aux struct {
		LaunchpadState *string `json:"launchpad-state"`
		State          *string `json:"state"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.LaunchpadState != nil:
		e.State = ParseLaunchpadState(*aux.LaunchpadState)
	case aux.State != nil:
		e.State = ParseLaunchpadState(*aux.State)
	default:
		e.State = LaunchpadUnknown
	}
	return nil
}

// Filling is a partial telemetry update; absent fields must not be touched.
type Filling struct {
	Pressure    *float64 `json:"pressure,omitempty"`
	WaterVolume *float64 `json:"water-volume,omitempty"`
}

func (e *Filling) EventType() string { return EventFilling }

// DataAvailable announces a completed flight recording. Informational only.
type DataAvailable struct {
	LaunchTime          int64   `json:"launchtime"`
	MaxRelativeAltitude float64 `json:"maxRelativeAltitude"`
}

func (e *DataAvailable) EventType() string { return EventNewDataAvailable }

// ReceivingData reports flight-data transfer progress in [0,1]. Informational only.
type ReceivingData struct {
	Percentage float64 `json:"percentage"`
}

func (e *ReceivingData) EventType() string { return EventReceivingData }

func init() {
	RegisterEventType(EventNewRocketState, func() Event { return &RocketStateChanged{} })
	RegisterEventType(EventNewLaunchpadState, func() Event { return &LaunchpadStateChanged{} })
	RegisterEventType(EventNewState, func() Event { return &LaunchpadStateChanged{} })
	RegisterEventType(EventFilling, func() Event { return &Filling{} })
	RegisterEventType(EventNewDataAvailable, func() Event { return &DataAvailable{} })
	RegisterEventType(EventReceivingData, func() Event { return &ReceivingData{} })
}
