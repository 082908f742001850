package store

import "github.com/gabinollier/water-rocket-and-launchpad/kernel/model"

// StateStore holds the last-known remote state. ApplyPull and ApplyPushEvent are the only
// ways to change it; Get never exposes internal storage.
type StateStore interface {
	Get() model.Snapshot
	ApplyPull(pull model.PullResult) (model.Snapshot, bool)
	ApplyPushEvent(m Mutation) (model.Snapshot, ApplyResult)
}

// Mutation is one reconciled change. Seq is the push stream position, or zero for a local
// optimistic update that carries no stream position.
type Mutation struct {
	Seq    uint64
	Fields Field
	Apply  func(s *model.Snapshot) bool // reports whether anything changed
}

// Field marks which snapshot fields a mutation writes, so a late pull cannot overwrite them.
type Field uint8

const (
	FieldRocketState Field = 1 << iota
	FieldLaunchpadState
	FieldPressure
	FieldWaterVolume
)

type ApplyResult int

const (
	Applied ApplyResult = iota
	Unchanged
	Stale
)

func (r ApplyResult) String() string {
	switch r {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case Stale:
		return "stale"
	}
	return "unknown"
}
