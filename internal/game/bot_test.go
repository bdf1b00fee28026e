package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/velotype/go-socket-typerace/internal/constants"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestBotParamsTiers(t *testing.T) {
	rng := testRNG()

	tests := []struct {
		tier        string
		minWPM      float64
		maxWPM      float64
		errorRate   float64
		consistency float64
	}{
		{"easy", 20, 40, 0.05, 0.7},
		{"medium", 40, 70, 0.03, 0.8},
		{"hard", 70, 100, 0.01, 0.9},
	}
	for _, tt := range tests {
		params := newBotParams(tt.tier, rng)
		if params.minWPM != tt.minWPM || params.maxWPM != tt.maxWPM {
			t.Fatalf("%s: wpm range [%f,%f], want [%f,%f]",
				tt.tier, params.minWPM, params.maxWPM, tt.minWPM, tt.maxWPM)
		}
		if params.errorRate != tt.errorRate || params.consistency != tt.consistency {
			t.Fatalf("%s: errorRate=%f consistency=%f", tt.tier, params.errorRate, params.consistency)
		}
	}
}

func TestBotParamsMixedPicksATier(t *testing.T) {
	rng := testRNG()
	tiers := map[float64]bool{20: true, 40: true, 70: true}
	for i := 0; i < 50; i++ {
		params := newBotParams("mixed", rng)
		if !tiers[params.minWPM] {
			t.Fatalf("mixed draw produced minWPM=%f, not a tier", params.minWPM)
		}
	}
}

func TestBotParamsRandomFallbackRanges(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 100; i++ {
		params := newBotParams("", rng)
		if params.minWPM < 30 || params.minWPM >= 80 {
			t.Fatalf("minWPM %f outside [30,80)", params.minWPM)
		}
		spread := params.maxWPM - params.minWPM
		if spread < 20 || spread >= 50 {
			t.Fatalf("wpm spread %f outside [20,50)", spread)
		}
		if params.errorRate < 0.01 || params.errorRate >= 0.06 {
			t.Fatalf("errorRate %f outside [0.01,0.06)", params.errorRate)
		}
		if params.consistency < 0.7 || params.consistency >= 1.0 {
			t.Fatalf("consistency %f outside [0.7,1.0)", params.consistency)
		}
	}
}

func TestNewBotPlayer(t *testing.T) {
	rng := testRNG()
	p := NewBotPlayer(2, "medium", rng)

	if !p.IsBot {
		t.Fatal("expected IsBot")
	}
	if p.bot == nil {
		t.Fatal("expected simulation state")
	}
	if p.Name == "" || p.ID == "" {
		t.Fatalf("missing identity: name=%q id=%q", p.Name, p.ID)
	}
	if p.Accuracy != 100 {
		t.Fatalf("initial accuracy = %f", p.Accuracy)
	}
	if p.WPM < p.bot.minWPM || p.WPM > p.bot.maxWPM {
		t.Fatalf("initial wpm %f outside [%f,%f]", p.WPM, p.bot.minWPM, p.bot.maxWPM)
	}
	if p.Color == "" {
		t.Fatal("expected a palette color")
	}
}

// A hard bot against a 120-character text must finish inside the window
// its WPM bounds imply: between textLen/(5*maxWPM) and
// textLen/(5*minWPM) minutes, give or take one tick.
func TestHardBotFinishWindow(t *testing.T) {
	rng := testRNG()
	const textLen = 120
	tick := constants.BotTickInterval

	p := NewBotPlayer(0, "hard", rng)
	start := time.Unix(1_700_000_000, 0)
	p.bot.startedAt = start

	now := start
	for i := 0; ; i++ {
		if i > 1000 {
			t.Fatal("bot never finished")
		}
		now = now.Add(tick)
		if advanceBot(p, now, textLen, rng) {
			break
		}
	}

	elapsed := now.Sub(start)
	fastest := time.Duration(float64(textLen) / (constants.CharsPerWord * p.bot.maxWPM) * float64(time.Minute))
	slowest := time.Duration(float64(textLen) / (constants.CharsPerWord * p.bot.minWPM) * float64(time.Minute))

	if elapsed < fastest-tick || elapsed > slowest+tick {
		t.Fatalf("finished in %v, expected within [%v, %v]", elapsed, fastest, slowest)
	}
	if p.Progress < 100 {
		t.Fatalf("progress = %f at finish", p.Progress)
	}
}

func TestAdvanceBotKeepsWPMInRange(t *testing.T) {
	rng := testRNG()
	p := NewBotPlayer(0, "easy", rng)
	start := time.Unix(1_700_000_000, 0)
	p.bot.startedAt = start

	for i := 1; i <= 200; i++ {
		now := start.Add(time.Duration(i) * constants.BotTickInterval)
		if advanceBot(p, now, 5000, rng) {
			break
		}
		if p.WPM < p.bot.minWPM || p.WPM > p.bot.maxWPM {
			t.Fatalf("tick %d: wpm %f outside [%f,%f]", i, p.WPM, p.bot.minWPM, p.bot.maxWPM)
		}
		if p.Progress < 0 || p.Progress > 100 {
			t.Fatalf("tick %d: progress %f out of range", i, p.Progress)
		}
	}
}

func TestAdvanceBotAccuracyFloor(t *testing.T) {
	rng := testRNG()
	p := &Player{
		Accuracy: 100,
		WPM:      85,
		bot: &botState{
			botParams: botParams{minWPM: 70, maxWPM: 100, errorRate: 1, consistency: 0.9},
			startedAt: time.Unix(1_700_000_000, 0),
			stop:      make(chan struct{}),
		},
	}

	for i := 1; i <= 500; i++ {
		now := p.bot.startedAt.Add(time.Duration(i) * constants.BotTickInterval)
		advanceBot(p, now, 1_000_000, rng)
		if p.Accuracy < 80 || p.Accuracy > 100 {
			t.Fatalf("tick %d: accuracy %f outside [80,100]", i, p.Accuracy)
		}
	}
	if p.Accuracy >= 100 {
		t.Fatal("accuracy never degraded despite certain errors")
	}
}

func TestAdvanceBotProgressNeverRegresses(t *testing.T) {
	rng := testRNG()
	p := &Player{
		Accuracy: 100,
		WPM:      30,
		bot: &botState{
			botParams: botParams{minWPM: 20, maxWPM: 40, errorRate: 0, consistency: 0.7},
			startedAt: time.Unix(1_700_000_000, 0),
			stop:      make(chan struct{}),
		},
	}

	// One tick in, the recomputed value is far below 50; the stored
	// progress must win.
	p.Progress = 50
	advanceBot(p, p.bot.startedAt.Add(constants.BotTickInterval), 5000, rng)
	if p.Progress < 50 {
		t.Fatalf("progress regressed to %f", p.Progress)
	}

	last := p.Progress
	for i := 2; i <= 300; i++ {
		now := p.bot.startedAt.Add(time.Duration(i) * constants.BotTickInterval)
		advanceBot(p, now, 5000, rng)
		if p.Progress < last {
			t.Fatalf("tick %d: progress fell from %f to %f", i, last, p.Progress)
		}
		last = p.Progress
	}
}

func TestBotCancelFiresOnce(t *testing.T) {
	b := &botState{stop: make(chan struct{})}
	b.cancel()
	b.cancel() // second call must not panic
	if !b.cancelled() {
		t.Fatal("expected cancelled state")
	}
}
