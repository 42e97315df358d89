package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry owns the code -> Room map, the only structure shared
// across rooms. Lookups and mutations are guarded by one mutex;
// everything inside a room is the room actor's business.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	emptySince map[string]time.Time
	rng        *rand.Rand

	grace   time.Duration
	pace    time.Duration
	tickers PeriodicTickerChannelCreator
	log     zerolog.Logger
}

const reapInterval = 30 * time.Second

func NewRegistry(grace, pace time.Duration, tickers PeriodicTickerChannelCreator, log zerolog.Logger) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		emptySince: make(map[string]time.Time),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		grace:      grace,
		pace:       pace,
		tickers:    tickers,
		log:        log,
	}
}

// CreateRoom generates a unique code, creates the room with the
// requesting connection as sole player and host, and starts its actor.
func (reg *Registry) CreateRoom(hostID string, sink Sink) (string, *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := generateCode(reg.rng)
	for _, taken := reg.rooms[code]; taken; _, taken = reg.rooms[code] {
		code = generateCode(reg.rng)
	}

	room := NewRoom(code, hostID, sink, roomDeps{
		settings:  DefaultSettings(),
		pace:      reg.pace,
		lifecycle: reg,
		log:       reg.log,
		rng:       rand.New(rand.NewSource(reg.rng.Int63())),
	})
	reg.rooms[code] = room
	go room.Run()

	reg.log.Info().Str("room", code).Str("host", hostID).Msg("room created")
	return code, room
}

func (reg *Registry) GetRoom(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom stops a room's actor and forgets its code.
func (reg *Registry) RemoveRoom(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	delete(reg.rooms, code)
	delete(reg.emptySince, code)
	reg.mu.Unlock()

	if ok {
		room.Close()
		reg.log.Info().Str("room", code).Msg("room removed")
	}
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

func (reg *Registry) roomEmptied(code string, at time.Time) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[code]; ok {
		reg.emptySince[code] = at
	}
}

func (reg *Registry) roomOccupied(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.emptySince, code)
}

// Reaper sweeps rooms that have sat empty longer than the grace
// period. Runs until done is closed.
func (reg *Registry) Reaper(done <-chan struct{}) {
	ticks := reg.tickers.Create(reapInterval)
	for {
		select {
		case now := <-ticks:
			for _, code := range reg.expired(now) {
				if reg.removeIfExpired(code, now) {
					reg.log.Info().Str("room", code).Msg("reaped empty room")
				}
			}
		case <-done:
			return
		}
	}
}

// removeIfExpired re-checks the empty timestamp under the write lock
// before removing: a room re-occupied between the sweep's snapshot and
// this call keeps living.
func (reg *Registry) removeIfExpired(code string, now time.Time) bool {
	reg.mu.Lock()
	since, ok := reg.emptySince[code]
	if !ok || now.Sub(since) < reg.grace {
		reg.mu.Unlock()
		return false
	}
	room := reg.rooms[code]
	delete(reg.rooms, code)
	delete(reg.emptySince, code)
	reg.mu.Unlock()

	if room != nil {
		room.Close()
	}
	return true
}

func (reg *Registry) expired(now time.Time) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var out []string
	for code, since := range reg.emptySince {
		if now.Sub(since) >= reg.grace {
			out = append(out, code)
		}
	}
	return out
}
