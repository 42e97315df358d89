package game

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Gateway is the connection-facing boundary: it turns inbound session
// events into registry and room calls, and routes each connection's
// lifetime (upgrade, pumps, disconnect sweep).
type Gateway struct {
	registry *Registry
	log      zerolog.Logger
}

func NewGateway(registry *Registry, log zerolog.Logger) *Gateway {
	return &Gateway{registry: registry, log: log}
}

// HandleConn adopts a freshly upgraded socket: assigns it a connection
// id and starts its pumps. Blocks until the connection dies.
func (g *Gateway) HandleConn(sock NetworkSession) {
	s := newSession(uuid.NewString(), sock, g, g.log)
	g.log.Info().Str("conn", s.id).Msg("connection opened")
	go s.WritePump()
	s.ReadPump()
}

func (g *Gateway) dispatch(s *session, ev Inbound) {
	switch e := ev.(type) {
	case HostGame:
		code, room := g.registry.CreateRoom(s.id, s)
		s.attach(room)
		s.Send(hostGameResult(code))

	case JoinGame:
		room, err := g.registry.GetRoom(e.GameCode)
		if err != nil {
			s.Send(joinGameResult(false, "Game code not found"))
			return
		}
		s.attach(room)
		if err := room.Deliver(envelope{ev: e, from: s.id, sink: s}); err != nil {
			s.detach(e.GameCode)
			s.Send(joinGameResult(false, "Game code not found"))
		}

	case LeaveGame:
		if room, err := g.registry.GetRoom(e.GameCode); err == nil {
			room.Deliver(envelope{ev: e, from: s.id, sink: s})
		}
		s.detach(e.GameCode)

	default:
		rs, ok := ev.(roomScoped)
		if !ok {
			s.log.Warn().Msgf("unroutable event %T", ev)
			return
		}
		room, err := g.registry.GetRoom(rs.code())
		if err != nil {
			return
		}
		room.Deliver(envelope{ev: ev, from: s.id, sink: s})
	}
}

// disconnect removes the session's player from every room it joined
// and tears the connection down.
func (g *Gateway) disconnect(s *session) {
	g.log.Info().Str("conn", s.id).Msg("connection closed")
	for _, room := range s.joinedRooms() {
		room.Deliver(envelope{ev: LeaveGame{GameCode: room.Code()}, from: s.id, sink: s})
		s.detach(room.Code())
	}
	s.close()
	s.sock.Close("")
}
