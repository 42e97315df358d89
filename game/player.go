package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const pingInterval = 30 * time.Second

// session is one live connection: its identifier, its socket, and the
// rooms it has joined. The read pump is the only goroutine decoding
// inbound traffic for it; room actors send outbound traffic through
// the buffered out channel drained by the write pump.
type session struct {
	id      string
	sock    NetworkSession
	out     chan []byte
	limiter *rate.Limiter
	gw      *Gateway
	log     zerolog.Logger

	mu    sync.Mutex
	rooms map[string]*Room

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id string, sock NetworkSession, gw *Gateway, log zerolog.Logger) *session {
	return &session{
		id:      id,
		sock:    sock,
		out:     make(chan []byte, 256),
		limiter: rate.NewLimiter(20, 40),
		gw:      gw,
		log:     log.With().Str("conn", id).Logger(),
		rooms:   make(map[string]*Room),
		done:    make(chan struct{}),
	}
}

// Send implements Sink. It never blocks a room actor: if the client
// cannot keep up, messages are dropped.
func (s *session) Send(ev Outbound) {
	data, err := ev.Encode()
	if err != nil {
		s.log.Error().Err(err).Str("event", ev.Event).Msg("failed to encode outbound event")
		return
	}
	select {
	case s.out <- data:
	default:
		s.log.Warn().Str("event", ev.Event).Msg("outbound buffer full, dropping")
	}
}

func (s *session) attach(room *Room) {
	s.mu.Lock()
	s.rooms[room.Code()] = room
	s.mu.Unlock()
}

func (s *session) detach(code string) {
	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()
}

func (s *session) joinedRooms() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// ReadPump decodes inbound envelopes and hands them to the gateway.
// It exits on the first read error, which triggers the disconnect path.
func (s *session) ReadPump() {
	defer s.gw.disconnect(s)

	for {
		data, err := s.sock.Read()
		if err != nil {
			return
		}
		if !s.limiter.Allow() {
			s.log.Warn().Msg("rate limit exceeded, dropping event")
			continue
		}

		ev, err := DecodeInbound(data)
		if err != nil {
			s.log.Debug().Err(err).Msg("rejected inbound event")
			s.Send(gameError(err.Error()))
			continue
		}
		s.gw.dispatch(s, ev)
	}
}

func (s *session) WritePump() {
	pings := time.NewTicker(pingInterval)
	defer pings.Stop()

	for {
		select {
		case data := <-s.out:
			if err := s.sock.Write(data); err != nil {
				return
			}
		case <-pings.C:
			if err := s.sock.Ping(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
