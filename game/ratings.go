package game

import (
	"errors"
	"sort"
)

// ratingAggregator collects per-song votes for the round. Owned by
// the room's actor; no locking.
type ratingAggregator struct {
	bySong map[string][]Rating
	index  map[string]map[string]int // song id -> voter id -> slice position
}

func newRatingAggregator() *ratingAggregator {
	return &ratingAggregator{
		bySong: make(map[string][]Rating),
		index:  make(map[string]map[string]int),
	}
}

// record stores one vote. A repeat vote from the same voter for the
// same song overwrites in place, keeping the original vote order.
func (a *ratingAggregator) record(songID, voterID string, value int) {
	if a.index[songID] == nil {
		a.index[songID] = make(map[string]int)
	}
	if pos, ok := a.index[songID][voterID]; ok {
		a.bySong[songID][pos].Value = value
		return
	}
	a.index[songID][voterID] = len(a.bySong[songID])
	a.bySong[songID] = append(a.bySong[songID], Rating{VoterID: voterID, Value: value})
}

func (a *ratingAggregator) count(songID string) int {
	return len(a.bySong[songID])
}

// isComplete reports whether every current player has either voted on
// the song or submitted it.
func (a *ratingAggregator) isComplete(songID, submitterID string, players []*Player) bool {
	voted := a.index[songID]
	for _, p := range players {
		if p.ID == submitterID {
			continue
		}
		if _, ok := voted[p.ID]; !ok {
			return false
		}
	}
	return true
}

func (a *ratingAggregator) snapshot() map[string][]Rating {
	out := make(map[string][]Rating, len(a.bySong))
	for songID, ratings := range a.bySong {
		cp := make([]Rating, len(ratings))
		copy(cp, ratings)
		out[songID] = cp
	}
	return out
}

func (a *ratingAggregator) reset() {
	a.bySong = make(map[string][]Rating)
	a.index = make(map[string]map[string]int)
}

// computeResults scores a finished round. Pure and deterministic:
// averages ignore skips (values <= 0), a song with no valid ratings
// averages 0, and the sort is stable so ties keep submission order.
func computeResults(songs []Submission, ratingsBySong map[string][]Rating) (RoundResult, error) {
	if len(songs) == 0 {
		return RoundResult{}, errors.New("no songs to score")
	}

	scored := make([]SongScore, 0, len(songs))
	for _, song := range songs {
		total := 0
		valid := 0
		for _, rt := range ratingsBySong[song.SongID] {
			if rt.Value > 0 {
				total += rt.Value
				valid++
			}
		}
		avg := 0.0
		if valid > 0 {
			avg = float64(total) / float64(valid)
		}
		scored = append(scored, SongScore{
			Submission:    song,
			AverageRating: avg,
			TotalRating:   total,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].AverageRating > scored[j].AverageRating
	})
	scored[0].IsWinner = true

	return RoundResult{
		Songs:        scored,
		WinnerSongID: scored[0].SongID,
	}, nil
}

// computeStandings aggregates all finished rounds into the game
// leaderboard: round wins first, total rating points as the tie-break.
// The sort is stable, so otherwise-tied players keep the order in
// which they first appeared in the results.
func computeStandings(rounds []RoundResult) []PlayerStanding {
	byPlayer := make(map[string]*PlayerStanding)
	var order []string

	for _, round := range rounds {
		for _, song := range round.Songs {
			id := song.Player.ID
			if id == "" {
				continue
			}
			st, ok := byPlayer[id]
			if !ok {
				st = &PlayerStanding{PlayerID: id, PlayerName: song.Player.Name}
				byPlayer[id] = st
				order = append(order, id)
			}
			st.TotalPoints += song.TotalRating
			if song.SongID == round.WinnerSongID {
				st.Wins++
			}
		}
	}

	standings := make([]PlayerStanding, 0, len(order))
	for _, id := range order {
		standings = append(standings, *byPlayer[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].TotalPoints > standings[j].TotalPoints
	})
	return standings
}
