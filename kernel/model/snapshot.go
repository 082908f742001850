package model

// FillTelemetry holds the live-measured quantities during WATER_FILLING/PRESSURIZING.
type FillTelemetry struct {
	WaterVolume float64 `json:"water-volume"` // liters
	Pressure    float64 `json:"pressure"`     // bars
}

// Snapshot is the merged view of remote state. Values are copies; mutating one never
// touches the store it came from.
type Snapshot struct {
	RocketState    RocketState    `json:"rocket-state"`
	LaunchpadState LaunchpadState `json:"launchpad-state"`
	FillTelemetry  FillTelemetry  `json:"fill-telemetry"`
	LastAppliedSeq uint64         `json:"last-applied-seq"`
	Pulled         bool           `json:"pulled"`
	LastData       *DataAvailable `json:"last-data,omitempty"`
}

// NewSnapshot returns the page-load snapshot: every state UNKNOWN, telemetry zero.
func NewSnapshot() Snapshot {
	return Snapshot{
		RocketState:    RocketUnknown,
		LaunchpadState: LaunchpadUnknown,
	}
}

func (s Snapshot) Clone() Snapshot {
	out := s
	if s.LastData != nil {
		d := *s.LastData
		out.LastData = &d
	}
	return out
}

// PullResult is the outcome of the initial pull. Nil fields were not fetched and are left alone.
type PullResult struct {
	RocketState    *RocketState
	LaunchpadState *LaunchpadState
	Pressure       *float64
	WaterVolume    *float64
}
