package game

import (
	"time"

	"github.com/velotype/go-socket-typerace/internal/models"
)

// Conn delivers outbound events to one subscribed connection. Send must
// not block the caller; implementations queue or drop.
type Conn interface {
	Send(models.Message) error
	Close() error
}

// Commands delivered to a room's inbox. The run loop processes them
// strictly in arrival order.

type joinCmd struct {
	player *Player
	conn   Conn // nil for bots
	reply  chan<- error
}

type leaveCmd struct {
	playerID string
}

type startCmd struct{}

// countdownCmd fires when the countdown timer expires.
type countdownCmd struct{}

type progressCmd struct {
	playerID     string
	progress     float64
	correctChars int
	errorChars   int
}

type finishCmd struct {
	playerID string
}

// botTickCmd carries one simulated-player tick into the room.
type botTickCmd struct {
	playerID string
	now      time.Time
}

type snapshotCmd struct {
	reply chan<- models.RoomSnapshot
}
