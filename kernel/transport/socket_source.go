package transport

import (
	"context"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"
)

// SocketSource subscribes to the launchpad's push socket. Messages arrive in transmission order
// on one connection; each delivered event gets the next sequence number, starting at 1.
type SocketSource struct {
	URL    string
	Origin string
}

func NewSocketSource(pushURL, origin string) *SocketSource {
	return &SocketSource{URL: pushURL, Origin: origin}
}

func (s *SocketSource) Subscribe(ctx context.Context) (<-chan model.Envelope, error) {
	cfg, err := websocket.NewConfig(s.URL, s.origin())
	if err != nil {
		return nil, errors.Wrapf(err, "push socket %s", s.URL)
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "dial push socket %s", s.URL)
	}

	out := make(chan model.Envelope)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()
	go s.readLoop(ctx, conn, out, done)

	return out, nil
}

func (s *SocketSource) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- model.Envelope, done chan<- struct{}) {
	log := pfxlog.ContextLogger(s.URL)
	defer close(done)
	defer close(out)

	var seq uint64
	for {
		var msg []byte
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			if ctx.Err() == nil {
				log.WithError(err).Warn("push socket closed")
			}
			return
		}

		ev, typ, err := model.DecodeEvent(msg)
		if err != nil {
			log.WithError(err).Warn("dropping malformed push message")
			continue
		}
		if ev == nil {
			log.WithField("type", typ).Debug("ignoring unknown push message type")
			continue
		}

		seq++
		select {
		case out <- model.Envelope{Seq: seq, Event: ev}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *SocketSource) origin() string {
	if s.Origin != "" {
		return s.Origin
	}
	return "http://localhost/"
}
