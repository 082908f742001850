package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/metrics"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/transport"
	"github.com/michaelquigley/pfxlog"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"
)

// Confirmer asks the operator to accept a hazardous action. Returning false (or an error)
// cancels the dispatch.
type Confirmer interface {
	Confirm(ctx context.Context, action model.ActionID, text string) (bool, error)
}

type ConfirmerFunc func(ctx context.Context, action model.ActionID, text string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, action model.ActionID, text string) (bool, error) {
	return f(ctx, action, text)
}

// Notifier receives every dispatch outcome so no attempt goes unreported.
type Notifier interface {
	Notify(o Outcome)
}

type NotifierFunc func(o Outcome)

func (f NotifierFunc) Notify(o Outcome) { f(o) }

type OutcomeStatus string

const (
	OutcomeSucceeded  OutcomeStatus = "succeeded"
	OutcomeBlocked    OutcomeStatus = "blocked"
	OutcomeCancelled  OutcomeStatus = "cancelled"
	OutcomeInProgress OutcomeStatus = "in-progress"
	OutcomeFailed     OutcomeStatus = "failed"
	OutcomeInvalid    OutcomeStatus = "invalid"
)

type Outcome struct {
	Action  model.ActionID `json:"action"`
	Status  OutcomeStatus  `json:"status"`
	Message string         `json:"message,omitempty"`
}

// Pending is an action whose transport call has not returned.
type Pending struct {
	Action model.ActionID `json:"action"`
	Since  time.Time      `json:"since"`
}

// Dispatcher turns operator intent into at most one transport call per request.
type Dispatcher struct {
	Reconciler *Reconciler
	Client     transport.Client
	Confirmer  Confirmer
	Notifier   Notifier
	Limits     model.LimitsConfig

	inflight cmap.ConcurrentMap[string, time.Time]
}

func NewDispatcher(r *Reconciler, c transport.Client, confirmer Confirmer, notifier Notifier, limits model.LimitsConfig) *Dispatcher {
	return &Dispatcher{
		Reconciler: r,
		Client:     c,
		Confirmer:  confirmer,
		Notifier:   notifier,
		Limits:     limits,
		inflight:   cmap.New[time.Time](),
	}
}

// Dispatch gates, confirms and sends one action. The returned error wraps one of the engine
// sentinels; the Outcome is always populated and has already been passed to the Notifier. Any
// optimistic state change is visible in the store by the time Dispatch returns, so Dispatch must
// not be called from a Listener.
func (d *Dispatcher) Dispatch(ctx context.Context, action model.ActionID, params model.Params) (Outcome, error) {
	o, err := d.dispatch(ctx, action, params)
	metrics.Dispatches.WithLabelValues(string(action), string(o.Status)).Inc()
	if d.Notifier != nil {
		d.Notifier.Notify(o)
	}
	return o, err
}

func (d *Dispatcher) dispatch(ctx context.Context, action model.ActionID, params model.Params) (Outcome, error) {
	log := pfxlog.Logger().WithField("action", action)

	if !action.Dispatchable() {
		return d.outcome(action, OutcomeInvalid, errors.Wrapf(ErrInvalidParams, "'%s' is not a dispatchable action", action))
	}
	if action == model.ActionStartFilling {
		if err := d.validateTargets(params); err != nil {
			return d.outcome(action, OutcomeInvalid, err)
		}
	}

	s := d.Reconciler.Store.Get()
	decision := d.Reconciler.Gate.DecideAction(s, action, params)
	if !decision.Permitted {
		return d.outcome(action, OutcomeBlocked, errors.Wrap(ErrActionBlocked, decision.ReasonIfBlocked))
	}

	if !d.inflight.SetIfAbsent(string(action), time.Now()) {
		return d.outcome(action, OutcomeInProgress, errors.Wrapf(ErrActionInProgress, "'%s' is already being dispatched", action))
	}
	metrics.InFlight.Inc()
	defer func() {
		d.inflight.Remove(string(action))
		metrics.InFlight.Dec()
	}()

	if decision.RequiresConfirmation {
		if !d.confirm(ctx, action, decision.ConfirmationText) {
			log.Info("declined by operator")
			return d.outcome(action, OutcomeCancelled, errors.Wrap(ErrActionCancelled, "declined by operator"))
		}
		// the state may have moved while the prompt was open
		fresh := d.Reconciler.Gate.DecideAction(d.Reconciler.Store.Get(), action, params)
		if !fresh.Permitted {
			return d.outcome(action, OutcomeBlocked, errors.Wrap(ErrActionBlocked, fresh.ReasonIfBlocked))
		}
		if fresh.ConfirmationText != decision.ConfirmationText {
			return d.outcome(action, OutcomeCancelled, errors.Wrap(ErrActionCancelled, "state changed while awaiting confirmation"))
		}
	}

	log.Infof("sending (water=%g pressure=%g degrees=%g)", params.WaterVolume, params.Pressure, params.Degrees)
	if err := d.Client.Send(ctx, action, params); err != nil {
		log.WithError(err).Error("launchpad rejected command")
		return d.outcome(action, OutcomeFailed, errors.Wrap(ErrActionFailed, err.Error()))
	}

	if ev := optimisticUpdate(action); ev != nil {
		d.Reconciler.ApplyLocal(ev)
	}
	return d.outcome(action, OutcomeSucceeded, nil)
}

func (d *Dispatcher) confirm(ctx context.Context, action model.ActionID, text string) bool {
	if d.Confirmer == nil {
		return false
	}
	ok, err := d.Confirmer.Confirm(ctx, action, text)
	if err != nil {
		pfxlog.Logger().WithField("action", action).WithError(err).Warn("confirmation failed")
		return false
	}
	return ok
}

func (d *Dispatcher) validateTargets(p model.Params) error {
	if p.WaterVolume <= 0 || p.WaterVolume > d.Limits.MaxWaterVolume {
		return errors.Wrapf(ErrInvalidParams, "water volume %gL must be in (0, %g]", p.WaterVolume, d.Limits.MaxWaterVolume)
	}
	if p.Pressure <= d.Limits.MinPressure || p.Pressure > d.Limits.MaxPressure {
		return errors.Wrapf(ErrInvalidParams, "pressure %g bar must be in (%g, %g]", p.Pressure, d.Limits.MinPressure, d.Limits.MaxPressure)
	}
	return nil
}

func (d *Dispatcher) outcome(action model.ActionID, status OutcomeStatus, err error) (Outcome, error) {
	o := Outcome{Action: action, Status: status}
	if err != nil {
		o.Message = err.Error()
	} else {
		o.Message = fmt.Sprintf("%s sent", action)
	}
	return o, err
}

// InFlight lists actions whose transport call has not returned, oldest first. A call that never
// returns stays listed.
func (d *Dispatcher) InFlight() []Pending {
	var out []Pending
	for item := range d.inflight.IterBuffered() {
		out = append(out, Pending{Action: model.ActionID(item.Key), Since: item.Val})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Since.Before(out[j].Since) })
	return out
}

func optimisticUpdate(action model.ActionID) model.Event {
	switch action {
	case model.ActionLaunch:
		return &model.RocketStateChanged{State: model.RocketDisconnected}
	case model.ActionOpenFairing:
		return &model.RocketStateChanged{State: model.RocketIdlingOpen}
	case model.ActionCloseFairing:
		return &model.RocketStateChanged{State: model.RocketIdlingClosed}
	}
	return nil
}
