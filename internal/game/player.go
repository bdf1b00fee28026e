package game

import (
	"github.com/velotype/go-socket-typerace/internal/constants"
	"github.com/velotype/go-socket-typerace/internal/models"
)

// Player holds one participant's race state. All fields are owned by
// the room goroutine once the player has joined.
type Player struct {
	ID       string
	Name     string
	Color    string
	IsBot    bool
	Progress float64
	WPM      float64
	Accuracy float64
	Finished bool
	Position int // 0 until ranked

	bot *botState // nil for humans
}

// NewHumanPlayer creates an unranked player with full accuracy.
func NewHumanPlayer(id, name string) *Player {
	if name == "" {
		name = "Anonymous"
	}
	return &Player{
		ID:       id,
		Name:     name,
		Accuracy: 100,
	}
}

func (p *Player) snapshot() models.PlayerSnapshot {
	return models.PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Color:    p.Color,
		IsBot:    p.IsBot,
		Progress: p.Progress,
		WPM:      p.WPM,
		Accuracy: p.Accuracy,
		Finished: p.Finished,
		Position: p.Position,
	}
}

// colorFor picks a palette color by join index.
func colorFor(i int) string {
	return constants.PlayerColors[i%len(constants.PlayerColors)]
}
