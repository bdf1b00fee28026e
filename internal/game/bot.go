package game

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velotype/go-socket-typerace/internal/constants"
)

// NewRNG seeds a generator for bot parameter draws.
func NewRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// BotSpec describes the simulated players requested for a room.
type BotSpec struct {
	Count      int
	Difficulty string // easy | medium | hard | mixed
}

// botParams are the private typing characteristics of one simulated
// player. They never appear in snapshots.
type botParams struct {
	minWPM      float64
	maxWPM      float64
	errorRate   float64 // probability of degrading accuracy per tick
	consistency float64
}

// botState is the per-bot simulation state plus the cancellation handle
// for its ticker. cancel is safe to call from any path and fires once.
type botState struct {
	botParams
	startedAt time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

func (b *botState) cancel() {
	b.stopOnce.Do(func() { close(b.stop) })
}

func (b *botState) cancelled() bool {
	select {
	case <-b.stop:
		return true
	default:
		return false
	}
}

// newBotParams maps a difficulty tier to typing characteristics. A
// "mixed" room picks one of the three tiers per bot; anything else
// unrecognized draws fully random characteristics.
func newBotParams(difficulty string, rng *rand.Rand) botParams {
	switch difficulty {
	case "easy":
		return botParams{minWPM: 20, maxWPM: 40, errorRate: 0.05, consistency: 0.7}
	case "medium":
		return botParams{minWPM: 40, maxWPM: 70, errorRate: 0.03, consistency: 0.8}
	case "hard":
		return botParams{minWPM: 70, maxWPM: 100, errorRate: 0.01, consistency: 0.9}
	case "mixed":
		tiers := []string{"easy", "medium", "hard"}
		return newBotParams(tiers[rng.Intn(len(tiers))], rng)
	default:
		minWPM := 30 + rng.Float64()*50
		return botParams{
			minWPM:      minWPM,
			maxWPM:      minWPM + 20 + rng.Float64()*30,
			errorRate:   0.01 + rng.Float64()*0.05,
			consistency: 0.7 + rng.Float64()*0.3,
		}
	}
}

// NewBotPlayer creates the i-th simulated player for a room. Its initial
// WPM is drawn uniformly from the tier's range.
func NewBotPlayer(i int, difficulty string, rng *rand.Rand) *Player {
	params := newBotParams(difficulty, rng)
	name := fmt.Sprintf("%s%d", constants.BotNames[rng.Intn(len(constants.BotNames))], i+1)
	return &Player{
		ID:       fmt.Sprintf("bot-%s-%d", uuid.New().String()[:8], i),
		Name:     name,
		Color:    constants.PlayerColors[(i+1)%len(constants.PlayerColors)],
		IsBot:    true,
		Accuracy: 100,
		WPM:      params.minWPM + rng.Float64()*(params.maxWPM-params.minWPM),
		bot: &botState{
			botParams: params,
			stop:      make(chan struct{}),
		},
	}
}

// advanceBot applies one simulation tick to a racing, unfinished bot and
// reports whether it crossed the finish line. The speed wobbles around
// the bot's running WPM with a sine perturbation scaled by how
// inconsistent the tier is.
func advanceBot(p *Player, now time.Time, textLen int, rng *rand.Rand) bool {
	b := p.bot
	elapsedMinutes := now.Sub(b.startedAt).Minutes()

	variation := math.Sin(float64(now.UnixMilli())/5000) * (1 - b.consistency) * 10
	currentWPM := math.Max(b.minWPM, math.Min(b.maxWPM, p.WPM+variation))

	charsTyped := currentWPM * constants.CharsPerWord * elapsedMinutes
	// Recomputing from scratch could dip during a falling sine phase;
	// progress never goes backwards, same as the human update path.
	p.Progress = math.Max(p.Progress, math.Min(100, charsTyped/float64(textLen)*100))
	p.WPM = currentWPM

	if rng.Float64() < b.errorRate {
		p.Accuracy = math.Max(80, p.Accuracy-rng.Float64()*2)
	}

	return p.Progress >= 100
}
