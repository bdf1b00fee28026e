package models

import (
	"time"
)

// Message defines the structure for WebSocket communication
type Message struct {
	Type   string      `json:"type"`
	RoomID string      `json:"roomId,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Time   time.Time   `json:"timestamp"`
}

// PlayerSnapshot is the externally visible state of one participant.
type PlayerSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	IsBot    bool    `json:"isBot"`
	Progress float64 `json:"progress"`
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
	Finished bool    `json:"finished"`
	Position int     `json:"position"`
}

// RoomSnapshot is the full room state published after every accepted
// mutation. Players keep join order.
type RoomSnapshot struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Text      string           `json:"text"`
	StartTime *time.Time       `json:"startTime"`
	EndTime   *time.Time       `json:"endTime"`
	Players   []PlayerSnapshot `json:"players"`
}
