package constants

import "time"

// Race lifecycle and timing constants
const (
	StatusWaiting   = "waiting"
	StatusCountdown = "countdown"
	StatusRacing    = "racing"
	StatusFinished  = "finished"

	CountdownDuration = 5 * time.Second
	BotTickInterval   = 200 * time.Millisecond

	ReaperInterval    = 5 * time.Minute
	FinishedRetention = 10 * time.Minute

	// Words are standardized to five characters for WPM purposes.
	CharsPerWord = 5
)

// PlayerColors is the cosmetic palette, assigned round-robin by join order.
var PlayerColors = []string{
	"#3498db", // blue
	"#e74c3c", // red
	"#2ecc71", // green
	"#f39c12", // orange
	"#9b59b6", // purple
	"#1abc9c", // teal
	"#d35400", // dark orange
	"#34495e", // navy
}

// BotNames are display-name stems for simulated players.
var BotNames = []string{
	"TypeBot",
	"SpeedTyper",
	"KeyMaster",
	"WordWizard",
	"RapidKeys",
	"SwiftFingers",
	"TypePro",
	"KeyboardKing",
	"QuickType",
	"FlashKeys",
	"TurboTyper",
	"NinjaKeys",
}
