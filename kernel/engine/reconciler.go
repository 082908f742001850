package engine

import (
	"context"
	"sync"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/metrics"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/store"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/transport"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Listener is notified once per snapshot change, with the decisions derived from it.
type Listener interface {
	Refresh(s model.Snapshot, d Decisions)
}

type ListenerFunc func(s model.Snapshot, d Decisions)

func (f ListenerFunc) Refresh(s model.Snapshot, d Decisions) { f(s, d) }

// Reconciler merges the initial pull and the push stream into the store and fans each change
// out to listeners. Work is serialized: an event enqueued from inside a listener is handled after
// the current refresh completes, never interleaved with it.
type Reconciler struct {
	Store store.StateStore
	Gate  *Gate

	mu        sync.Mutex
	listeners []Listener
	queue     []func()
	draining  bool
}

func NewReconciler(s store.StateStore, g *Gate) *Reconciler {
	if g == nil {
		g = NewGate(nil)
	}
	return &Reconciler{Store: s, Gate: g}
}

func (r *Reconciler) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Snapshot returns the current snapshot and its decisions.
func (r *Reconciler) Snapshot() (model.Snapshot, Decisions) {
	s := r.Store.Get()
	return s, r.Gate.Decide(s)
}

// Pull fetches all four quantities concurrently and applies them as one pull. Individual
// failures fall back rather than failing the pull: a rocket-state HTTP error means the rocket is
// DISCONNECTED, any other rocket or launchpad failure is UNKNOWN, and telemetry failures leave
// the field untouched. Pull blocks until applied, so it must not be called from a Listener.
func (r *Reconciler) Pull(ctx context.Context, c transport.Client) model.Snapshot {
	log := pfxlog.Logger()
	var pull model.PullResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := c.RocketState(gctx)
		if err != nil {
			var se *transport.StatusError
			if errors.As(err, &se) {
				rs = model.RocketDisconnected
			} else {
				rs = model.RocketUnknown
			}
			log.WithError(err).Warnf("rocket state unavailable, assuming %s", rs)
		}
		pull.RocketState = &rs
		return nil
	})
	g.Go(func() error {
		ls, err := c.LaunchpadState(gctx)
		if err != nil {
			ls = model.LaunchpadUnknown
			log.WithError(err).Warn("launchpad state unavailable")
		}
		pull.LaunchpadState = &ls
		return nil
	})
	g.Go(func() error {
		p, err := c.Pressure(gctx)
		if err != nil {
			log.WithError(err).Warn("pressure unavailable")
			return nil
		}
		pull.Pressure = &p
		return nil
	})
	g.Go(func() error {
		v, err := c.WaterVolume(gctx)
		if err != nil {
			log.WithError(err).Warn("water volume unavailable")
			return nil
		}
		pull.WaterVolume = &v
		return nil
	})
	_ = g.Wait()

	done := make(chan model.Snapshot, 1)
	_ = r.submit(func() {
		s, applied := r.Store.ApplyPull(pull)
		if applied {
			log.Infof("pulled state: rocket=%s launchpad=%s", s.RocketState, s.LaunchpadState)
			r.refresh(s)
		}
		done <- s
	})
	return <-done
}

// Apply reconciles one push envelope and returns once it, and anything queued before it, has been
// handled. Listeners must use Enqueue instead; Apply from a listener never returns.
func (r *Reconciler) Apply(env model.Envelope) {
	<-r.submit(func() { r.apply(env) })
}

// Enqueue queues env behind the work in progress and returns without waiting.
func (r *Reconciler) Enqueue(env model.Envelope) {
	r.submit(func() { r.apply(env) })
}

// ApplyLocal applies an optimistic update that has no stream position. Like Apply, it returns
// only once the store and every listener have seen it.
func (r *Reconciler) ApplyLocal(ev model.Event) {
	r.Apply(model.Envelope{Event: ev})
}

// Run applies envelopes until the channel closes or ctx is done.
func (r *Reconciler) Run(ctx context.Context, events <-chan model.Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-events:
			if !ok {
				pfxlog.Logger().Info("push stream closed")
				return nil
			}
			r.Apply(env)
		}
	}
}

func (r *Reconciler) apply(env model.Envelope) {
	log := pfxlog.Logger()

	m, ok := mutationFor(env)
	if !ok {
		log.Debugf("ignoring push event '%s'", eventType(env.Event))
		return
	}
	s, result := r.Store.ApplyPushEvent(m)
	if env.Seq != 0 {
		metrics.PushEvents.WithLabelValues(env.Event.EventType(), result.String()).Inc()
	}
	log.WithField("type", env.Event.EventType()).WithField("seq", env.Seq).Debugf("push event %s", result)
	if result == store.Applied {
		r.refresh(s)
	}
}

func (r *Reconciler) refresh(s model.Snapshot) {
	metrics.ObserveSnapshot(s)

	r.mu.Lock()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	d := r.Gate.Decide(s)
	for _, l := range listeners {
		l.Refresh(s, d)
	}
}

// submit runs job on the calling goroutine unless another goroutine (or an enclosing listener)
// is already draining, in which case the job is queued for that drainer. The returned channel is
// closed once job has run.
func (r *Reconciler) submit(job func()) <-chan struct{} {
	done := make(chan struct{})
	r.mu.Lock()
	r.queue = append(r.queue, func() {
		defer close(done)
		job()
	})
	if r.draining {
		r.mu.Unlock()
		return done
	}
	r.draining = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.draining = false
			r.mu.Unlock()
			return done
		}
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		next()
	}
}

func mutationFor(env model.Envelope) (store.Mutation, bool) {
	m := store.Mutation{Seq: env.Seq}

	switch ev := env.Event.(type) {
	case *model.RocketStateChanged:
		m.Fields = store.FieldRocketState
		m.Apply = func(s *model.Snapshot) bool {
			if s.RocketState == ev.State {
				return false
			}
			s.RocketState = ev.State
			return true
		}
	case *model.LaunchpadStateChanged:
		m.Fields = store.FieldLaunchpadState
		m.Apply = func(s *model.Snapshot) bool {
			if s.LaunchpadState == ev.State {
				return false
			}
			s.LaunchpadState = ev.State
			return true
		}
	case *model.Filling:
		if ev.Pressure != nil {
			m.Fields |= store.FieldPressure
		}
		if ev.WaterVolume != nil {
			m.Fields |= store.FieldWaterVolume
		}
		m.Apply = func(s *model.Snapshot) bool {
			changed := false
			if ev.Pressure != nil && s.FillTelemetry.Pressure != *ev.Pressure {
				s.FillTelemetry.Pressure = *ev.Pressure
				changed = true
			}
			if ev.WaterVolume != nil && s.FillTelemetry.WaterVolume != *ev.WaterVolume {
				s.FillTelemetry.WaterVolume = *ev.WaterVolume
				changed = true
			}
			return changed
		}
	case *model.DataAvailable:
		m.Apply = func(s *model.Snapshot) bool {
			if s.LastData != nil && *s.LastData == *ev {
				return false
			}
			d := *ev
			s.LastData = &d
			return true
		}
	case *model.ReceivingData:
		// progress only; still consumes its stream position
		m.Apply = func(*model.Snapshot) bool { return false }
	default:
		return m, false
	}
	return m, true
}

func eventType(ev model.Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.EventType()
}
