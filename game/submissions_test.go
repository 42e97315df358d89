package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionTracker_OverwriteKeepsOrder(t *testing.T) {
	t.Parallel()
	tr := newSubmissionTracker()

	tr.submit("p1", sub("songA", "p1", ""))
	tr.submit("p2", sub("songB", "p2", ""))
	tr.submit("p1", sub("songA2", "p1", ""))

	assert.Equal(t, 2, tr.count())
	ordered := tr.ordered()
	require.Len(t, ordered, 2)
	// Last write wins, but the resubmission keeps p1's original slot.
	assert.Equal(t, "songA2", ordered[0].SongID)
	assert.Equal(t, "songB", ordered[1].SongID)
}

func TestSubmissionTracker_AllSubmitted(t *testing.T) {
	t.Parallel()
	players := []*Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
	tr := newSubmissionTracker()

	assert.False(t, tr.allSubmitted(players))
	tr.submit("p1", sub("songA", "p1", ""))
	tr.submit("p2", sub("songB", "p2", ""))
	assert.False(t, tr.allSubmitted(players))
	tr.submit("p3", sub("songC", "p3", ""))
	assert.True(t, tr.allSubmitted(players))
}

func TestSubmissionTracker_MidRoundJoinRaisesThreshold(t *testing.T) {
	t.Parallel()
	players := []*Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
	tr := newSubmissionTracker()

	tr.submit("p1", sub("songA", "p1", ""))
	tr.submit("p2", sub("songB", "p2", ""))
	tr.submit("p3", sub("songC", "p3", ""))
	require.True(t, tr.allSubmitted(players))

	// A fourth player joining mid-round reopens the round.
	players = append(players, &Player{ID: "p4"})
	assert.False(t, tr.allSubmitted(players))
	tr.submit("p4", sub("songD", "p4", ""))
	assert.True(t, tr.allSubmitted(players))
}

func TestSubmissionTracker_EmptyRoomNeverComplete(t *testing.T) {
	t.Parallel()
	tr := newSubmissionTracker()
	assert.False(t, tr.allSubmitted(nil))
}

func TestSubmissionTracker_Reset(t *testing.T) {
	t.Parallel()
	tr := newSubmissionTracker()
	tr.submit("p1", sub("songA", "p1", ""))
	tr.reset()

	assert.Equal(t, 0, tr.count())
	assert.False(t, tr.has("p1"))
	assert.Empty(t, tr.ordered())
}
