// Package listener bridges RakNet events to per-peer sessions, owns the
// session table keyed by peer address, and drives the periodic flush
// that empties each session's outbound queue.
package listener

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bedrock-login-server/internal/session"
)

// TickInterval is the nominal RakNet poll period the listener drives its
// flush loop on.
const TickInterval = 10 * time.Millisecond

// RakNet is the downward collaborator interface the core consumes: a
// pollable event source plus the primitives needed to answer it. The
// core never constructs a RakNet implementation itself — a real
// deployment supplies one backed by an actual reliability layer.
type RakNet interface {
	// Poll drains whatever events have arrived since the last call and
	// returns them. Implementations must not block past a short, bounded
	// wait — the listener calls this once per tick.
	Poll() []Event
	// SendTo transmits data to addr. May be called concurrently for
	// different addresses; must itself serialize access to any shared
	// socket handle.
	SendTo(addr string, data []byte) error
	// SetMOTD installs the string returned for unconnected pings.
	SetMOTD(motd string)
	// GUID is this server's RakNet GUID, advertised in the MOTD.
	GUID() uint64
}

// EventKind discriminates the four event shapes RakNet may deliver.
type EventKind int

const (
	EventPacket EventKind = iota
	EventConnected
	EventDisconnected
	EventError
)

// Event is one item drained from RakNet.Poll.
type Event struct {
	Kind EventKind
	Addr string
	Data []byte // valid for EventPacket
	GUID uint64 // valid for EventConnected
	Err  error  // valid for EventError
}

// Listener owns the session table and the tick loop. It holds no
// reference cycles back into Session beyond the SendFunc closure handed
// to each session at construction.
type Listener struct {
	rak RakNet
	log zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// New constructs a Listener bound to rak, logging through log.
func New(rak RakNet, log zerolog.Logger) *Listener {
	return &Listener{
		rak:      rak,
		log:      log,
		sessions: make(map[string]*session.Session),
	}
}

// Run drives the tick loop until ctx is canceled: each tick, drain
// RakNet's event queue, dispatch it, then flush every session
// concurrently via an errgroup so one session's slow send cannot
// backpressure the others. Run blocks until ctx is done and all
// in-flight flushes complete.
func (l *Listener) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Listener) tick(ctx context.Context) {
	for _, ev := range l.rak.Poll() {
		l.handleEvent(ev)
	}
	if err := l.flushAll(ctx); err != nil {
		l.log.Warn().Err(err).Msg("flush round encountered errors")
	}
}

func (l *Listener) handleEvent(ev Event) {
	switch ev.Kind {
	case EventPacket:
		l.mu.Lock()
		s, ok := l.sessions[ev.Addr]
		l.mu.Unlock()
		if !ok {
			l.log.Debug().Str("peer", ev.Addr).Msg("packet for unknown session, dropping")
			return
		}
		s.HandleDatagram(ev.Data)

	case EventConnected:
		addr := ev.Addr
		s := session.New(addr, func(data []byte) error {
			return l.rak.SendTo(addr, data)
		}, l.log)
		l.mu.Lock()
		l.sessions[addr] = s
		l.mu.Unlock()
		l.log.Info().Str("peer", addr).Uint64("guid", ev.GUID).Msg("session opened")

	case EventDisconnected:
		l.mu.Lock()
		s, ok := l.sessions[ev.Addr]
		delete(l.sessions, ev.Addr)
		l.mu.Unlock()
		if ok {
			s.Disconnect("Disconnected")
		}
		l.log.Info().Str("peer", ev.Addr).Msg("session closed")

	case EventError:
		l.mu.Lock()
		s, ok := l.sessions[ev.Addr]
		delete(l.sessions, ev.Addr)
		l.mu.Unlock()
		if ok {
			s.Disconnect("Connection error")
		}
		l.log.Warn().Str("peer", ev.Addr).Err(ev.Err).Msg("session error, removed")
	}
}

// flushAll runs Flush on every current session concurrently. A flush is
// a bounded, best-effort operation per the design's queue-clears-
// regardless rule, so no explicit semaphore is needed beyond the
// errgroup's own goroutine-per-task fan-out.
func (l *Listener) flushAll(ctx context.Context) error {
	l.mu.Lock()
	sessions := make([]*session.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			return s.Flush()
		})
	}
	return g.Wait()
}

// SessionCount reports the number of currently tracked sessions, for
// diagnostics and tests.
func (l *Listener) SessionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}
