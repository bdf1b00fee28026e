package manager

import (
	"context"
	"log/slog"
	"sync"

	"github.com/velotype/go-socket-typerace/internal/db"
	"github.com/velotype/go-socket-typerace/internal/game"
	"github.com/velotype/go-socket-typerace/internal/metrics"
)

// Registry is the concurrency-safe mapping from race id to room. Rooms
// are created lazily on first reference and removed when their last
// human leaves or the reaper reclaims them.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room

	texts db.TextSource
	cfg   game.Config
	log   *slog.Logger
}

func NewRegistry(texts db.TextSource, cfg game.Config, log *slog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*game.Room),
		texts: texts,
		cfg:   cfg,
		log:   log,
	}
}

// GetOrCreate returns the room for raceID, creating it atomically if
// needed. A freshly created room gets a randomly selected text and, if
// spec asks for computer players, has them joined before it is
// returned. Concurrent calls for one id always yield the same room.
func (reg *Registry) GetOrCreate(ctx context.Context, raceID string, spec game.BotSpec) *game.Room {
	reg.mu.RLock()
	room, ok := reg.rooms[raceID]
	reg.mu.RUnlock()
	if ok {
		return room
	}

	// Build the room fully outside the lock: a slow text lookup never
	// stalls unrelated rooms, and bots are joined before the room can
	// be observed through the registry.
	text := reg.texts.RandomText(ctx)
	room = game.NewRoom(raceID, text, reg.cfg, reg.log)
	room.OnEmpty = reg.Remove
	go room.Run()

	rng := game.NewRNG()
	botsJoined := 0
	for i := 0; i < spec.Count; i++ {
		bot := game.NewBotPlayer(i, spec.Difficulty, rng)
		if err := room.Join(bot, nil); err != nil {
			reg.log.Warn("bot join rejected", "room", raceID, "err", err)
			continue
		}
		botsJoined++
	}

	reg.mu.Lock()
	if winner, ok := reg.rooms[raceID]; ok {
		// Lost the creation race; discard our fully built room.
		reg.mu.Unlock()
		room.Stop()
		return winner
	}
	reg.rooms[raceID] = room
	reg.mu.Unlock()

	metrics.ActiveRooms.Inc()
	metrics.PlayersJoined.Add(float64(botsJoined))
	return room
}

// Get looks up an existing room.
func (reg *Registry) Get(raceID string) (*game.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[raceID]
	return room, ok
}

// Remove stops and deletes a room. Idempotent.
func (reg *Registry) Remove(raceID string) {
	reg.mu.Lock()
	room, ok := reg.rooms[raceID]
	if ok {
		delete(reg.rooms, raceID)
	}
	reg.mu.Unlock()

	if !ok {
		return
	}
	room.Stop()
	metrics.ActiveRooms.Dec()
	reg.log.Info("room removed", "room", raceID)
}

// Rooms returns the current rooms, for the reaper sweep.
func (reg *Registry) Rooms() []*game.Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*game.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		out = append(out, room)
	}
	return out
}

// Len reports the number of active rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
