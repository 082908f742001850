package store

import (
	"sync"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
)

// MemoryStore is the in-memory StateStore owned by one session.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot model.Snapshot
	pushed   Field // fields written since startup; a late pull leaves them alone
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshot: model.NewSnapshot()}
}

func (s *MemoryStore) Get() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// ApplyPull applies the initial pull once. Fields already written by a push event are newer
// than anything the pull fetched and are kept.
func (s *MemoryStore) ApplyPull(pull model.PullResult) (model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Pulled {
		return s.snapshot.Clone(), false
	}

	if pull.RocketState != nil && s.pushed&FieldRocketState == 0 {
		s.snapshot.RocketState = *pull.RocketState
	}
	if pull.LaunchpadState != nil && s.pushed&FieldLaunchpadState == 0 {
		s.snapshot.LaunchpadState = *pull.LaunchpadState
	}
	if pull.Pressure != nil && s.pushed&FieldPressure == 0 {
		s.snapshot.FillTelemetry.Pressure = *pull.Pressure
	}
	if pull.WaterVolume != nil && s.pushed&FieldWaterVolume == 0 {
		s.snapshot.FillTelemetry.WaterVolume = *pull.WaterVolume
	}
	s.snapshot.Pulled = true

	return s.snapshot.Clone(), true
}

// ApplyPushEvent applies a mutation atomically. A push mutation at or behind the last applied
// position is stale and changes nothing.
func (s *MemoryStore) ApplyPushEvent(m Mutation) (model.Snapshot, ApplyResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Seq != 0 {
		if m.Seq <= s.snapshot.LastAppliedSeq {
			return s.snapshot.Clone(), Stale
		}
		s.snapshot.LastAppliedSeq = m.Seq
	}
	s.pushed |= m.Fields

	next := s.snapshot.Clone()
	if m.Apply == nil || !m.Apply(&next) {
		return s.snapshot.Clone(), Unchanged
	}
	next.LastAppliedSeq = s.snapshot.LastAppliedSeq
	next.Pulled = s.snapshot.Pulled
	s.snapshot = next

	return s.snapshot.Clone(), Applied
}
