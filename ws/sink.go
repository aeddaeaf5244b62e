package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"huddle/domain/event"
	"huddle/errors"
)

const (
	// frameBuffer absorbs fanout bursts; a full buffer drops the event
	// rather than blocking the hub.
	frameBuffer = 64

	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Sink is the transport handle of one connection. All frames, pushes and
// replies alike, flow through a single writer goroutine; gorilla allows
// only one concurrent writer per connection.
type Sink struct {
	log       *slog.Logger
	conn      *websocket.Conn
	frames    chan any
	done      chan struct{}
	closeOnce sync.Once
}

func NewSink(log *slog.Logger, conn *websocket.Conn) *Sink {
	s := &Sink{
		log:    log,
		conn:   conn,
		frames: make(chan any, frameBuffer),
		done:   make(chan struct{}),
	}
	go s.writePump()
	return s
}

// Consume enqueues one event for delivery. Never blocks: a closed sink or
// a full buffer reports a sink error and the event is gone.
func (s *Sink) Consume(_ context.Context, e event.Event) error {
	return s.send(Push{Target: e.Target(), Payload: e.Payload()})
}

// Reply enqueues a reply frame for an identified request.
func (s *Sink) Reply(reply Reply) error {
	return s.send(reply)
}

func (s *Sink) send(frame any) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.frames <- frame:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

func (s *Sink) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer func() { _ = s.conn.Close() }()

	for {
		select {
		case <-s.done:
			// Flush frames enqueued before Close so a final onError
			// still reaches the client.
			for {
				select {
				case frame := <-s.frames:
					_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := s.conn.WriteJSON(frame); err != nil {
						return
					}
				default:
					return
				}
			}
		case frame := <-s.frames:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(frame); err != nil {
				s.log.Debug("Write failed, closing sink", "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		}
	}
}

// Close stops accepting frames and hands teardown to the writer, which
// flushes what is already queued and then closes the connection. Safe to
// call from any goroutine, any number of times.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
