package game

// submissionTracker collects one song submission per player per round.
// It is owned by the room's actor and needs no locking.
type submissionTracker struct {
	byPlayer map[string]Submission
	order    []string // player ids, first-submission order
}

func newSubmissionTracker() *submissionTracker {
	return &submissionTracker{byPlayer: make(map[string]Submission)}
}

// submit stores a player's song. A second submission from the same
// player replaces the first but keeps its slot in the rating order.
func (t *submissionTracker) submit(playerID string, s Submission) {
	if _, ok := t.byPlayer[playerID]; !ok {
		t.order = append(t.order, playerID)
	}
	t.byPlayer[playerID] = s
}

func (t *submissionTracker) has(playerID string) bool {
	_, ok := t.byPlayer[playerID]
	return ok
}

func (t *submissionTracker) count() int {
	return len(t.byPlayer)
}

// allSubmitted reports whether every current player has a submission.
// Players who join mid-round raise the bar; a round that already
// started can go back to waiting.
func (t *submissionTracker) allSubmitted(players []*Player) bool {
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		if _, ok := t.byPlayer[p.ID]; !ok {
			return false
		}
	}
	return true
}

// ordered returns the round's submissions in the order they were
// first collected. This is the rating order and the tie-break order.
func (t *submissionTracker) ordered() []Submission {
	out := make([]Submission, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byPlayer[id])
	}
	return out
}

func (t *submissionTracker) reset() {
	t.byPlayer = make(map[string]Submission)
	t.order = nil
}
