package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway() (*Gateway, *Registry) {
	reg := NewRegistry(time.Minute, 0, nil, zerolog.Nop())
	return NewGateway(reg, zerolog.Nop()), reg
}

// waitForEvent drains a session's outbound queue until the named event
// shows up. Room actors run on their own goroutines, so delivery is
// asynchronous here, unlike the direct-dispatch room tests.
func waitForEvent(t *testing.T, s *session, event string) Envelope {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case data := <-s.out:
			var env Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			if env.Event == event {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %q", event)
		}
	}
}

func TestGateway_HostGame(t *testing.T) {
	t.Parallel()
	gw, reg := newTestGateway()
	s := newSession("conn1", &MockNetworkSession{}, gw, zerolog.Nop())

	gw.dispatch(s, HostGame{})

	env := waitForEvent(t, s, "host-game-result")
	var ack ackResult
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	assert.True(t, ack.Success)
	assert.Regexp(t, codeFormat, ack.GameCode)

	_, err := reg.GetRoom(ack.GameCode)
	assert.NoError(t, err)
	assert.Len(t, s.joinedRooms(), 1)
}

func TestGateway_JoinUnknownCodeFails(t *testing.T) {
	t.Parallel()
	gw, reg := newTestGateway()
	s := newSession("conn1", &MockNetworkSession{}, gw, zerolog.Nop())

	gw.dispatch(s, JoinGame{GameCode: "NOPE00", Name: "naruto"})

	env := waitForEvent(t, s, "join-game-result")
	var ack ackResult
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	assert.False(t, ack.Success)
	assert.Equal(t, "Game code not found", ack.Message)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, s.joinedRooms())
}

func TestGateway_JoinClosedRoomFails(t *testing.T) {
	t.Parallel()
	gw, reg := newTestGateway()
	host := newSession("host", &MockNetworkSession{}, gw, zerolog.Nop())

	gw.dispatch(host, HostGame{})
	env := waitForEvent(t, host, "host-game-result")
	var ack ackResult
	require.NoError(t, json.Unmarshal(env.Data, &ack))

	room, err := reg.GetRoom(ack.GameCode)
	require.NoError(t, err)
	room.Close()

	s := newSession("conn2", &MockNetworkSession{}, gw, zerolog.Nop())
	gw.dispatch(s, JoinGame{GameCode: ack.GameCode, Name: "naruto"})

	joinEnv := waitForEvent(t, s, "join-game-result")
	var joinAck ackResult
	require.NoError(t, json.Unmarshal(joinEnv.Data, &joinAck))
	assert.False(t, joinAck.Success)
	assert.Empty(t, s.joinedRooms())
}

func TestGateway_DuplicateJoinIsIdempotent(t *testing.T) {
	t.Parallel()
	gw, reg := newTestGateway()
	host := newSession("host", &MockNetworkSession{}, gw, zerolog.Nop())

	gw.dispatch(host, HostGame{})
	env := waitForEvent(t, host, "host-game-result")
	var ack ackResult
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	code := ack.GameCode
	require.True(t, reg.Len() == 1)

	joiner := newSession("conn2", &MockNetworkSession{}, gw, zerolog.Nop())
	gw.dispatch(joiner, JoinGame{GameCode: code, Name: "naruto"})
	waitForEvent(t, joiner, "join-game-result")
	gw.dispatch(joiner, JoinGame{GameCode: code, Name: "naruto uzumaki"})
	waitForEvent(t, joiner, "join-game-result")

	gw.dispatch(joiner, RequestCurrentState{GameCode: code})
	stateEnv := waitForEvent(t, joiner, "current-state")
	var snap roomSnapshot
	require.NoError(t, json.Unmarshal(stateEnv.Data, &snap))

	require.Len(t, snap.Players, 2)
	assert.Equal(t, "naruto uzumaki", snap.Players[1].Name)
}

func TestGateway_DisconnectSweepsRooms(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway()

	hostSock := &MockNetworkSession{}
	hostSock.On("Close", "").Return()
	host := newSession("host", hostSock, gw, zerolog.Nop())
	gw.dispatch(host, HostGame{})
	env := waitForEvent(t, host, "host-game-result")
	var ack ackResult
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	code := ack.GameCode

	joinerSock := &MockNetworkSession{}
	joinerSock.On("Close", "").Return()
	joiner := newSession("conn2", joinerSock, gw, zerolog.Nop())
	gw.dispatch(joiner, JoinGame{GameCode: code, Name: "naruto"})
	waitForEvent(t, joiner, "join-game-result")

	gw.disconnect(joiner)
	assert.Empty(t, joiner.joinedRooms())
	joinerSock.AssertCalled(t, "Close", "")

	gw.dispatch(host, RequestCurrentState{GameCode: code})
	stateEnv := waitForEvent(t, host, "current-state")
	var snap roomSnapshot
	require.NoError(t, json.Unmarshal(stateEnv.Data, &snap))
	assert.Len(t, snap.Players, 1)
}
