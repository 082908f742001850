package engine

import (
	"context"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/store"
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/transport"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
)

// Session owns one store and everything that reads or writes it. Nothing here is global; two
// sessions never share state.
type Session struct {
	Config     *model.PadConfig
	Store      *store.MemoryStore
	Reconciler *Reconciler
	Gate       *Gate
	Dispatcher *Dispatcher
	Form       *FillForm

	client transport.Client
	push   transport.PushSource
	done   chan error
}

func NewSession(cfg *model.PadConfig, client transport.Client, push transport.PushSource, confirmer Confirmer, notifier Notifier) (*Session, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	policy, err := NewPolicy(cfg.Policy)
	if err != nil {
		return nil, errors.Wrap(err, "invalid confirmation policy")
	}

	s := &Session{
		Config: cfg,
		Store:  store.NewMemoryStore(),
		Gate:   NewGate(policy),
		Form:   NewFillForm(cfg.Limits),
		client: client,
		push:   push,
	}
	s.Reconciler = NewReconciler(s.Store, s.Gate)
	s.Reconciler.Subscribe(s.Form)
	s.Dispatcher = NewDispatcher(s.Reconciler, client, confirmer, notifier, cfg.Limits)
	return s, nil
}

// Start subscribes to the push stream before pulling, so no event emitted during the pull is
// lost; the store keeps pushed fields over late pull results. It returns once the pull has been
// applied. The reconciler keeps running until ctx ends or the stream closes (see Wait).
func (s *Session) Start(ctx context.Context) (model.Snapshot, error) {
	log := pfxlog.Logger()
	s.done = make(chan error, 1)

	if s.push != nil {
		events, err := s.push.Subscribe(ctx)
		if err != nil {
			log.WithError(err).Warn("push stream unavailable, state will not update live")
			close(s.done)
		} else {
			go func() {
				s.done <- s.Reconciler.Run(ctx, events)
				close(s.done)
			}()
		}
	} else {
		close(s.done)
	}

	return s.Reconciler.Pull(ctx, s.client), nil
}

// Wait blocks until the push stream ends.
func (s *Session) Wait() error {
	if s.done == nil {
		return errors.New("session not started")
	}
	return <-s.done
}

func (s *Session) Snapshot() (model.Snapshot, Decisions) {
	return s.Reconciler.Snapshot()
}

func (s *Session) Dispatch(ctx context.Context, action model.ActionID, params model.Params) (Outcome, error) {
	return s.Dispatcher.Dispatch(ctx, action, params)
}
