package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/engine"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/michaelquigley/pfxlog"
)

const (
	measurementFilling = "filling"
	measurementState   = "state"

	defaultBacklog = 256
)

// PointWriter is the subset of the influx blocking write API the recorder uses.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxRecorder is a listener that records fill telemetry while the launchpad is filling, and
// every rocket/launchpad state transition. It only reads snapshots. Points are written from a
// background goroutine so a slow database never holds up the reconciler; when the backlog is
// full new points are dropped.
type InfluxRecorder struct {
	writer  PointWriter
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	last    *model.Snapshot
	backlog chan []*write.Point
	closed  bool
	wg      sync.WaitGroup
}

func NewInfluxRecorder(w PointWriter) *InfluxRecorder {
	return newInfluxRecorder(w, defaultBacklog)
}

func newInfluxRecorder(w PointWriter, backlog int) *InfluxRecorder {
	r := &InfluxRecorder{
		writer:  w,
		timeout: 5 * time.Second,
		now:     time.Now,
		backlog: make(chan []*write.Point, backlog),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Dial opens an influx client for the configured bucket. Close the recorder before the client.
func Dial(cfg model.InfluxConfig) (*InfluxRecorder, influxdb2.Client) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return NewInfluxRecorder(client.WriteAPIBlocking(cfg.Org, cfg.Bucket)), client
}

// Refresh implements engine.Listener. It never blocks on the database.
func (r *InfluxRecorder) Refresh(s model.Snapshot, _ engine.Decisions) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	points := r.points(s)
	last := s.Clone()
	r.last = &last

	if len(points) == 0 {
		return
	}
	select {
	case r.backlog <- points:
	default:
		pfxlog.Logger().WithField("points", len(points)).Warn("telemetry backlog full, dropping points")
	}
}

// Close flushes the backlog and stops the writer goroutine. Refreshes after Close are ignored.
func (r *InfluxRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.backlog)
	r.mu.Unlock()

	r.wg.Wait()
}

// run writes queued points in order. Write failures are logged and dropped.
func (r *InfluxRecorder) run() {
	defer r.wg.Done()
	for points := range r.backlog {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.writer.WritePoint(ctx, points...); err != nil {
			pfxlog.Logger().WithError(err).Warn("unable to record telemetry")
		}
		cancel()
	}
}

func (r *InfluxRecorder) points(s model.Snapshot) []*write.Point {
	now := r.now()
	var out []*write.Point

	if r.last == nil || r.last.RocketState != s.RocketState || r.last.LaunchpadState != s.LaunchpadState {
		out = append(out, influxdb2.NewPoint(measurementState,
			map[string]string{"launchpad": string(s.LaunchpadState)},
			map[string]interface{}{
				"rocket_state":    string(s.RocketState),
				"launchpad_state": string(s.LaunchpadState),
			},
			now))
	}

	if s.LaunchpadState.Filling() && (r.last == nil || r.last.FillTelemetry != s.FillTelemetry) {
		out = append(out, influxdb2.NewPoint(measurementFilling,
			map[string]string{"launchpad": string(s.LaunchpadState)},
			map[string]interface{}{
				"water_volume": s.FillTelemetry.WaterVolume,
				"pressure":     s.FillTelemetry.Pressure,
			},
			now))
	}
	return out
}
