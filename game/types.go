package game

import "time"

type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseSongSelection Phase = "songSelection"
	PhaseRating        Phase = "rating"
	PhaseResults       Phase = "results"
	PhaseGameOver      Phase = "gameOver"
)

// MinPlayers is the smallest player count a game can run with. A room
// whose population drops below it mid-game is forced back to the lobby.
const MinPlayers = 3

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsHost  bool   `json:"isHost"`
	IsReady bool   `json:"isReady"`
}

type Settings struct {
	NumberOfRounds  int      `json:"numberOfRounds"`
	RoundLength     int      `json:"roundLength"`
	SelectedPrompts []string `json:"selectedPrompts"`
}

// DefaultSettings returns the settings a freshly hosted room starts with.
func DefaultSettings() Settings {
	return Settings{
		NumberOfRounds: 3,
		RoundLength:    30,
		SelectedPrompts: []string{
			"This song makes me feel like the main character.",
			"The soundtrack to a late-night drive.",
			"This song makes me wanna text my ex (or block them).",
			"A song that defines high school memories.",
			"The perfect song to play while getting ready to go out.",
			"This song could start a mosh pit.",
			"A song that instantly boosts your confidence.",
			"This song would play in the background of my villain arc.",
			"A song that could make me cry on the right day.",
			"The ultimate cookout anthem.",
			"A song that just feels like summertime.",
			"This song is pure nostalgia.",
			"A song that makes you feel unstoppable.",
			"If life had a montage, this song would play in mine.",
			"A song that instantly hypes up the whole room.",
		},
	}
}

// TrackDetails is the opaque metadata supplied by the music catalog
// for a chosen track. The server does not validate it.
type TrackDetails struct {
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	AlbumCoverURL string `json:"albumCover"`
	URI           string `json:"uri"`
}

type SubmittedBy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Submission is one player's song for the current round.
type Submission struct {
	SongID string      `json:"songId"`
	Player SubmittedBy `json:"player"`
	TrackDetails
}

// SkipRating is the sentinel recorded for a submitter's own song.
// Values <= 0 never count toward an average.
const SkipRating = -1

type Rating struct {
	VoterID string `json:"voterId"`
	Value   int    `json:"rating"`
}

// SongScore is a submission with its aggregated round score.
type SongScore struct {
	Submission
	AverageRating float64 `json:"averageRating"`
	TotalRating   int     `json:"totalRating"`
	IsWinner      bool    `json:"isWinner,omitempty"`
}

// RoundResult holds a finished round's songs ordered best first.
type RoundResult struct {
	Songs        []SongScore `json:"songs"`
	WinnerSongID string      `json:"winnerSongId"`
}

// PlayerStanding is one player's aggregate across all finished rounds.
type PlayerStanding struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	Wins        int    `json:"wins"`
	TotalPoints int    `json:"totalPoints"`
}

// roomLifecycle is what a room reports occupancy changes to. The
// registry uses it to drive reaping of abandoned rooms.
type roomLifecycle interface {
	roomEmptied(code string, at time.Time)
	roomOccupied(code string)
}
