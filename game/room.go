package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink is the outbound half of one connection. Send must not block
// the caller; slow consumers get messages dropped, not the room stalled.
type Sink interface {
	Send(ev Outbound)
}

// envelope is one decoded inbound event routed to a room's actor,
// together with the connection it came from.
type envelope struct {
	ev   Inbound
	from string
	sink Sink
}

type roomDeps struct {
	settings  Settings
	pace      time.Duration
	lifecycle roomLifecycle
	log       zerolog.Logger
	rng       *rand.Rand
}

// Room is one game session. All fields are owned by the room's actor
// goroutine; nothing outside it may touch them. Other goroutines talk
// to a room only through Deliver.
type Room struct {
	code           string
	phase          Phase
	settings       Settings
	players        []*Player
	conns          map[string]Sink
	originalHostID string

	currentRound       int
	currentPrompt      string
	subs               *submissionTracker
	ratings            *ratingAggregator
	currentRatingIndex int
	roundResults       *RoundResult
	history            []RoundResult

	pace      time.Duration
	lifecycle roomLifecycle
	log       zerolog.Logger
	rng       *rand.Rand

	inbox     chan envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewRoom creates a room in the lobby phase with the hosting
// connection as its sole player.
func NewRoom(code, hostID string, sink Sink, deps roomDeps) *Room {
	r := &Room{
		code:           code,
		phase:          PhaseLobby,
		settings:       deps.settings,
		conns:          map[string]Sink{hostID: sink},
		originalHostID: hostID,
		currentRound:   1,
		subs:           newSubmissionTracker(),
		ratings:        newRatingAggregator(),
		pace:           deps.pace,
		lifecycle:      deps.lifecycle,
		log:            deps.log.With().Str("room", code).Logger(),
		rng:            deps.rng,
		inbox:          make(chan envelope, 256),
		done:           make(chan struct{}),
	}
	r.players = append(r.players, &Player{ID: hostID, IsHost: true})
	return r
}

func (r *Room) Code() string { return r.code }

// Deliver hands an event to the room's actor. It fails once the room
// has been closed, so a join racing a reap cannot land in a dead room.
// The done channel is checked first: a select with a buffered inbox
// would otherwise pick the send at random and swallow the event.
func (r *Room) Deliver(env envelope) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	default:
	}
	select {
	case r.inbox <- env:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

// Run is the room's actor loop. One goroutine per room; every mutation
// of room state happens here.
func (r *Room) Run() {
	r.log.Info().Msg("room started")
	for {
		select {
		case env := <-r.inbox:
			r.dispatch(env)
		case <-r.done:
			r.log.Info().Msg("room stopped")
			return
		}
	}
}

// Close stops the actor. Idempotent.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Room) dispatch(env envelope) {
	switch ev := env.ev.(type) {
	case JoinGame:
		r.handleJoin(ev, env.from, env.sink)
	case LeaveGame:
		r.handleLeave(env.from)
	case UpdatePlayerName:
		r.handleUpdatePlayerName(ev, env.from)
	case UpdateGameSettings:
		r.handleUpdateSettings(ev, env.from)
	case StartGame:
		r.handleStartGame(env.from)
	case SongSelected:
		r.handleSongSelected(ev, env.from)
	case GetSubmissionStatus:
		r.handleGetSubmissionStatus(env.from, env.sink)
	case SubmitRating:
		r.handleSubmitRating(ev, env.from)
	case NextRound:
		r.handleNextRound(env.from)
	case ReturnToLobby:
		r.handleReturnToLobby(env.from)
	case RequestRoundResults:
		r.handleRequestRoundResults(env.from, env.sink)
	case RequestPrompt:
		r.handleRequestPrompt(env.sink)
	case UpdatePrompt:
		r.handleUpdatePrompt(ev, env.from)
	case RequestCurrentState:
		r.handleRequestCurrentState(env.sink)
	default:
		r.log.Warn().Str("conn", env.from).Msgf("unhandled event %T", env.ev)
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playersSnapshot() []Player {
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}

func (r *Room) broadcast(ev Outbound) {
	for _, p := range r.players {
		if sink, ok := r.conns[p.ID]; ok {
			sink.Send(ev)
		}
	}
}

// pause is the cosmetic UI pacing delay between consecutive
// broadcasts. Zero by default; purely presentational.
func (r *Room) pause() {
	if r.pace > 0 {
		time.Sleep(r.pace)
	}
}

// handleJoin is idempotent per connection id: a duplicate join updates
// the existing player's name instead of adding a second entry.
func (r *Room) handleJoin(ev JoinGame, from string, sink Sink) {
	if p := r.player(from); p != nil {
		p.Name = ev.Name
		r.conns[from] = sink
		r.broadcast(updatePlayers(r.playersSnapshot()))
		sink.Send(joinGameResult(true, ""))
		r.log.Debug().Str("conn", from).Msg("duplicate join, player updated")
		return
	}

	isHost := false
	if from == r.originalHostID {
		isHost = true
	} else if !r.hasHost() {
		isHost = true
		r.originalHostID = from
	}

	wasEmpty := len(r.players) == 0
	r.players = append(r.players, &Player{ID: from, Name: ev.Name, IsHost: isHost})
	r.conns[from] = sink
	if wasEmpty && r.lifecycle != nil {
		r.lifecycle.roomOccupied(r.code)
	}

	r.broadcast(updatePlayers(r.playersSnapshot()))
	// Late joiners get synced to wherever the game already is.
	sink.Send(gamePhaseUpdated(r.phase, r.currentRound))
	if r.currentPrompt != "" {
		sink.Send(promptUpdated(r.currentPrompt))
	}
	sink.Send(joinGameResult(true, ""))
	r.log.Info().Str("conn", from).Int("players", len(r.players)).Msg("player joined")
}

func (r *Room) hasHost() bool {
	for _, p := range r.players {
		if p.IsHost {
			return true
		}
	}
	return false
}

func (r *Room) handleLeave(from string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == from {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	wasHost := r.players[idx].IsHost
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.conns, from)

	if wasHost && len(r.players) > 0 {
		r.players[0].IsHost = true
		r.originalHostID = r.players[0].ID
		r.log.Info().Str("host", r.players[0].ID).Msg("host reassigned")
	}

	r.broadcast(updatePlayers(r.playersSnapshot()))
	r.log.Info().Str("conn", from).Int("players", len(r.players)).Msg("player left")

	r.checkViability()

	// The leaver may have been the last missing submitter or voter;
	// without this the round would stall until the next event.
	switch r.phase {
	case PhaseSongSelection:
		if r.subs.allSubmitted(r.players) {
			r.enterRating()
		}
	case PhaseRating:
		r.advanceRatingIfComplete()
	}

	if len(r.players) == 0 && r.lifecycle != nil {
		r.lifecycle.roomEmptied(r.code, time.Now())
	}
}

// checkViability forces the room back to the lobby when the player
// count can no longer sustain an active game.
func (r *Room) checkViability() {
	if r.phase == PhaseLobby || len(r.players) >= MinPlayers {
		return
	}
	r.log.Warn().Int("players", len(r.players)).Msg("not enough players, returning to lobby")
	r.resetRoundState()
	r.phase = PhaseLobby
	r.broadcast(gameError(ErrNotEnough.Error()))
	r.broadcast(gamePhaseUpdated(PhaseLobby, r.currentRound))
}

func (r *Room) handleUpdatePlayerName(ev UpdatePlayerName, from string) {
	p := r.player(from)
	if p == nil {
		return
	}
	p.Name = ev.Name
	p.IsReady = ev.IsReady
	r.broadcast(updatePlayers(r.playersSnapshot()))
}

func (r *Room) handleUpdateSettings(ev UpdateGameSettings, from string) {
	p := r.player(from)
	if p == nil || !p.IsHost {
		r.log.Debug().Str("conn", from).Msg("settings update rejected: not host")
		return
	}
	if r.phase != PhaseLobby {
		return
	}
	r.settings = Settings{
		NumberOfRounds:  ev.NumberOfRounds,
		RoundLength:     ev.RoundLength,
		SelectedPrompts: ev.SelectedPrompts,
	}
	r.broadcast(gameSettingsUpdated(r.settings))
	r.log.Info().Str("conn", from).Msg("settings updated")
}

func (r *Room) handleUpdatePrompt(ev UpdatePrompt, from string) {
	p := r.player(from)
	if p == nil || !p.IsHost {
		return
	}
	r.currentPrompt = ev.Prompt
	r.broadcast(promptUpdated(ev.Prompt))
}

func (r *Room) handleGetSubmissionStatus(from string, sink Sink) {
	sink.Send(songSubmissionUpdate(r.subs.count(), len(r.players)))
	if r.subs.has(from) {
		sink.Send(songSelectedNotice(from, ""))
	}
}

func (r *Room) handleRequestPrompt(sink Sink) {
	if r.currentPrompt != "" {
		sink.Send(promptUpdated(r.currentPrompt))
	}
}

func (r *Room) handleRequestRoundResults(from string, sink Sink) {
	if r.phase == PhaseResults && r.roundResults != nil {
		sink.Send(roundResults(*r.roundResults))
	}
}

func (r *Room) handleRequestCurrentState(sink Sink) {
	sink.Send(currentState(roomSnapshot{
		GameCode:     r.code,
		Phase:        r.phase,
		CurrentRound: r.currentRound,
		Prompt:       r.currentPrompt,
		Players:      r.playersSnapshot(),
		Settings:     r.settings,
	}))
}

// resetRoundState clears everything scoped to a single round.
func (r *Room) resetRoundState() {
	r.subs.reset()
	r.ratings.reset()
	r.currentRatingIndex = 0
}
