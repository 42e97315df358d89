package game

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Envelope is the wire framing for every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var gameCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// --- Inbound events ---

type Inbound interface{ inbound() }

type HostGame struct{}

type JoinGame struct {
	GameCode string `json:"gameCode"`
	Name     string `json:"name"`
}

type LeaveGame struct {
	GameCode string `json:"gameCode"`
}

type UpdatePlayerName struct {
	GameCode string `json:"gameCode"`
	Name     string `json:"name"`
	IsReady  bool   `json:"isReady"`
}

type UpdateGameSettings struct {
	GameCode        string   `json:"gameCode"`
	NumberOfRounds  int      `json:"numberOfRounds"`
	RoundLength     int      `json:"roundLength"`
	SelectedPrompts []string `json:"selectedPrompts"`
}

type StartGame struct {
	GameCode string `json:"gameCode"`
}

type SongSelected struct {
	GameCode     string       `json:"gameCode"`
	TrackID      string       `json:"trackId"`
	TrackDetails TrackDetails `json:"trackDetails"`
}

type GetSubmissionStatus struct {
	GameCode string `json:"gameCode"`
}

type SubmitRating struct {
	GameCode string `json:"gameCode"`
	SongID   string `json:"songId"`
	Rating   int    `json:"rating"`
}

type NextRound struct {
	GameCode string `json:"gameCode"`
}

type ReturnToLobby struct {
	GameCode string `json:"gameCode"`
}

type RequestRoundResults struct {
	GameCode string `json:"gameCode"`
}

type RequestPrompt struct {
	GameCode string `json:"gameCode"`
}

type UpdatePrompt struct {
	GameCode string `json:"gameCode"`
	Prompt   string `json:"prompt"`
}

type RequestCurrentState struct {
	GameCode string `json:"gameCode"`
}

func (HostGame) inbound()            {}
func (JoinGame) inbound()            {}
func (LeaveGame) inbound()           {}
func (UpdatePlayerName) inbound()    {}
func (UpdateGameSettings) inbound()  {}
func (StartGame) inbound()           {}
func (SongSelected) inbound()        {}
func (GetSubmissionStatus) inbound() {}
func (SubmitRating) inbound()        {}
func (NextRound) inbound()           {}
func (ReturnToLobby) inbound()       {}
func (RequestRoundResults) inbound() {}
func (RequestPrompt) inbound()       {}
func (UpdatePrompt) inbound()        {}
func (RequestCurrentState) inbound() {}

type roomScoped interface {
	Inbound
	code() string
}

func (e JoinGame) code() string            { return e.GameCode }
func (e LeaveGame) code() string           { return e.GameCode }
func (e UpdatePlayerName) code() string    { return e.GameCode }
func (e UpdateGameSettings) code() string  { return e.GameCode }
func (e StartGame) code() string           { return e.GameCode }
func (e SongSelected) code() string        { return e.GameCode }
func (e GetSubmissionStatus) code() string { return e.GameCode }
func (e SubmitRating) code() string        { return e.GameCode }
func (e NextRound) code() string           { return e.GameCode }
func (e ReturnToLobby) code() string       { return e.GameCode }
func (e RequestRoundResults) code() string { return e.GameCode }
func (e RequestPrompt) code() string       { return e.GameCode }
func (e UpdatePrompt) code() string        { return e.GameCode }
func (e RequestCurrentState) code() string { return e.GameCode }

// DecodeInbound parses one wire envelope into its typed event and
// validates required fields. Nothing reaches a room before passing here.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	decode := func(v any) error {
		if len(env.Data) == 0 {
			return fmt.Errorf("event %q: missing data", env.Event)
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("event %q: bad payload: %w", env.Event, err)
		}
		return nil
	}

	var ev Inbound
	switch env.Event {
	case "host-game":
		ev = HostGame{}
	case "join-game":
		e := JoinGame{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "leave-game":
		e := LeaveGame{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "update-player-name":
		e := UpdatePlayerName{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "update-game-settings":
		e := UpdateGameSettings{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		if e.NumberOfRounds < 1 || e.RoundLength < 1 || len(e.SelectedPrompts) == 0 {
			return nil, fmt.Errorf("event %q: invalid settings", env.Event)
		}
		ev = e
	case "start-game":
		e := StartGame{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "song-selected":
		e := SongSelected{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		if e.TrackID == "" {
			return nil, fmt.Errorf("event %q: missing trackId", env.Event)
		}
		ev = e
	case "get-submission-status":
		e := GetSubmissionStatus{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "submit-rating":
		e := SubmitRating{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		if e.SongID == "" {
			return nil, fmt.Errorf("event %q: missing songId", env.Event)
		}
		if e.Rating != SkipRating && (e.Rating < 1 || e.Rating > 5) {
			return nil, fmt.Errorf("event %q: rating out of range", env.Event)
		}
		ev = e
	case "next-round":
		e := NextRound{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "return-to-lobby":
		e := ReturnToLobby{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "request-round-results":
		e := RequestRoundResults{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "request-prompt":
		e := RequestPrompt{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	case "update-prompt":
		e := UpdatePrompt{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		if e.Prompt == "" {
			return nil, fmt.Errorf("event %q: missing prompt", env.Event)
		}
		ev = e
	case "request-current-state":
		e := RequestCurrentState{}
		if err := decode(&e); err != nil {
			return nil, err
		}
		ev = e
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}

	if rs, ok := ev.(roomScoped); ok && !gameCodePattern.MatchString(rs.code()) {
		return nil, fmt.Errorf("event %q: invalid game code", env.Event)
	}
	return ev, nil
}

// --- Outbound events ---

// Outbound is a tagged message fanned out to connections. Data must be
// JSON-marshalable.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func (o Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}

type ackResult struct {
	Success  bool   `json:"success"`
	GameCode string `json:"gameCode,omitempty"`
	Message  string `json:"message,omitempty"`
}

func hostGameResult(code string) Outbound {
	return Outbound{Event: "host-game-result", Data: ackResult{Success: true, GameCode: code}}
}

func joinGameResult(ok bool, message string) Outbound {
	return Outbound{Event: "join-game-result", Data: ackResult{Success: ok, Message: message}}
}

func updatePlayers(players []Player) Outbound {
	return Outbound{Event: "update-players", Data: players}
}

type phasePayload struct {
	Phase        Phase `json:"phase"`
	CurrentRound int   `json:"currentRound,omitempty"`
}

func gamePhaseUpdated(phase Phase, round int) Outbound {
	return Outbound{Event: "game-phase-updated", Data: phasePayload{Phase: phase, CurrentRound: round}}
}

func promptUpdated(prompt string) Outbound {
	return Outbound{Event: "prompt-updated", Data: map[string]string{"prompt": prompt}}
}

func gameStarted(prompt string) Outbound {
	return Outbound{Event: "game-started", Data: map[string]string{"prompt": prompt}}
}

func gameSettingsUpdated(s Settings) Outbound {
	return Outbound{Event: "game-settings-updated", Data: s}
}

type songSelectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
}

func songSelectedNotice(playerID, playerName string) Outbound {
	return Outbound{Event: "song-selected", Data: songSelectedPayload{PlayerID: playerID, PlayerName: playerName}}
}

type submissionCount struct {
	Submitted int `json:"submitted"`
	Total     int `json:"total"`
}

func songSubmissionUpdate(submitted, total int) Outbound {
	return Outbound{Event: "song-submission-update", Data: submissionCount{Submitted: submitted, Total: total}}
}

type startRatingPayload struct {
	RatingIndex int        `json:"ratingIndex"`
	TotalSongs  int        `json:"totalSongs"`
	SongToRate  Submission `json:"songToRate"`
}

func startRating(index, total int, song Submission) Outbound {
	return Outbound{Event: "start-rating", Data: startRatingPayload{RatingIndex: index, TotalSongs: total, SongToRate: song}}
}

type ratingUpdatePayload struct {
	Submitted int    `json:"submitted"`
	Total     int    `json:"total"`
	SongID    string `json:"songId"`
}

func ratingUpdate(submitted, total int, songID string) Outbound {
	return Outbound{Event: "rating-update", Data: ratingUpdatePayload{Submitted: submitted, Total: total, SongID: songID}}
}

func roundResults(r RoundResult) Outbound {
	return Outbound{Event: "round-results", Data: map[string]RoundResult{"results": r}}
}

func gameWinner(standings []PlayerStanding) Outbound {
	return Outbound{Event: "game-winner", Data: map[string][]PlayerStanding{"standings": standings}}
}

func gameError(message string) Outbound {
	return Outbound{Event: "game-error", Data: map[string]string{"message": message}}
}

type roomSnapshot struct {
	GameCode     string   `json:"gameCode"`
	Phase        Phase    `json:"phase"`
	CurrentRound int      `json:"currentRound"`
	Prompt       string   `json:"prompt,omitempty"`
	Players      []Player `json:"players"`
	Settings     Settings `json:"settings"`
}

func currentState(s roomSnapshot) Outbound {
	return Outbound{Event: "current-state", Data: s}
}
