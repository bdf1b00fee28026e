package game

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/velotype/go-socket-typerace/internal/constants"
	"github.com/velotype/go-socket-typerace/internal/metrics"
	"github.com/velotype/go-socket-typerace/internal/models"
)

var (
	// ErrRoomBusy rejects joins once the race has left the waiting state.
	ErrRoomBusy = errors.New("race already in progress")
	// ErrRoomClosed reports a command against a destroyed room.
	ErrRoomClosed = errors.New("room no longer exists")
	// ErrPlayerExists rejects a duplicate player id within one room.
	ErrPlayerExists = errors.New("player id already taken")
)

// Config carries the room timing knobs. Tests shorten them.
type Config struct {
	Countdown time.Duration
	BotTick   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Countdown: constants.CountdownDuration,
		BotTick:   constants.BotTickInterval,
	}
}

// Room is one race. All mutable state below the cfg field is owned by
// the Run goroutine; external callers interact only through the command
// methods, which serialize through the inbox.
type Room struct {
	ID   string
	Text string

	// OnEmpty is called from the room goroutine when the last human
	// participant leaves. The registry uses it to remove the room.
	OnEmpty func(id string)

	cfg Config
	log *slog.Logger

	inbox    chan interface{}
	quit     chan struct{}
	stopOnce sync.Once

	status    string
	startTime *time.Time
	endTime   *time.Time
	players   []*Player
	conns     map[string]Conn
	nextRank  int
	countdown *time.Timer
	rng       *rand.Rand
	now       func() time.Time
}

func NewRoom(id, text string, cfg Config, log *slog.Logger) *Room {
	log.Info("creating new room", "room", id)
	return &Room{
		ID:       id,
		Text:     text,
		cfg:      cfg,
		log:      log,
		inbox:    make(chan interface{}, 256),
		quit:     make(chan struct{}),
		status:   constants.StatusWaiting,
		conns:    make(map[string]Conn),
		nextRank: 1,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// PUBLIC COMMAND API =>

// Join adds a player to the race. Joins are only accepted while the
// room is still waiting; conn is nil for simulated players.
func (r *Room) Join(p *Player, conn Conn) error {
	reply := make(chan error, 1)
	if !r.send(joinCmd{player: p, conn: conn, reply: reply}) {
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.quit:
		return ErrRoomClosed
	}
}

// Leave removes a player in any state. Removing the last human destroys
// the room.
func (r *Room) Leave(playerID string) {
	r.send(leaveCmd{playerID: playerID})
}

// Start triggers the countdown. No-op unless the room is waiting.
func (r *Room) Start() {
	r.send(startCmd{})
}

// UpdateProgress applies a human progress report. Silently dropped
// unless the race is running and the player is unfinished.
func (r *Room) UpdateProgress(playerID string, progress float64, correctChars, errorChars int) {
	r.send(progressCmd{
		playerID:     playerID,
		progress:     progress,
		correctChars: correctChars,
		errorChars:   errorChars,
	})
}

// Finish marks a player as done and ranks them in processing order.
func (r *Room) Finish(playerID string) {
	r.send(finishCmd{playerID: playerID})
}

// Snapshot returns the current room state. ok is false when the room
// has been destroyed.
func (r *Room) Snapshot() (models.RoomSnapshot, bool) {
	reply := make(chan models.RoomSnapshot, 1)
	if !r.send(snapshotCmd{reply: reply}) {
		return models.RoomSnapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, true
	case <-r.quit:
		return models.RoomSnapshot{}, false
	}
}

// Stop destroys the room. Idempotent; the run loop cancels countdown
// timers and bot tickers on the way out.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Room) send(cmd interface{}) bool {
	select {
	case r.inbox <- cmd:
		return true
	case <-r.quit:
		return false
	}
}

// RUN LOOP =>

// Run processes commands until the room is stopped. It is the only
// goroutine that touches room state.
func (r *Room) Run() {
	defer r.shutdown()
	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		}
	}
}

func (r *Room) handle(cmd interface{}) {
	switch c := cmd.(type) {
	case joinCmd:
		r.handleJoin(c)
	case leaveCmd:
		r.handleLeave(c.playerID)
	case startCmd:
		r.handleStart()
	case countdownCmd:
		r.handleCountdownDone()
	case progressCmd:
		r.handleProgress(c)
	case finishCmd:
		if p := r.findPlayer(c.playerID); p != nil && r.finishPlayer(p) {
			r.broadcastState()
		}
	case botTickCmd:
		r.handleBotTick(c)
	case snapshotCmd:
		c.reply <- r.buildSnapshot()
	}
}

func (r *Room) shutdown() {
	if r.countdown != nil {
		r.countdown.Stop()
	}
	r.stopBots()
	for _, c := range r.conns {
		_ = c.Close()
	}
	r.log.Info("room destroyed", "room", r.ID)
}

// STATE MACHINE =>

func (r *Room) handleJoin(c joinCmd) {
	if r.status != constants.StatusWaiting {
		c.reply <- ErrRoomBusy
		return
	}
	if r.findPlayer(c.player.ID) != nil {
		c.reply <- ErrPlayerExists
		return
	}

	if c.player.Color == "" {
		c.player.Color = colorFor(len(r.players))
	}
	r.players = append(r.players, c.player)
	if c.conn != nil {
		r.conns[c.player.ID] = c.conn
	}
	c.reply <- nil

	r.log.Info("player joined", "room", r.ID, "player", c.player.Name, "bot", c.player.IsBot)
	r.broadcastState()
}

func (r *Room) handleLeave(playerID string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	p := r.players[idx]
	if p.bot != nil {
		p.bot.cancel()
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	if c, ok := r.conns[playerID]; ok {
		_ = c.Close()
		delete(r.conns, playerID)
	}
	r.log.Info("player left", "room", r.ID, "player", p.Name)

	if r.humanCount() == 0 {
		// Bots never keep a room alive on their own.
		if r.OnEmpty != nil {
			r.OnEmpty(r.ID)
		}
		return
	}

	// A leave can complete the race for everyone who stayed.
	if r.status == constants.StatusRacing && r.allFinished() {
		r.finishRace()
	}
	r.broadcastState()
}

func (r *Room) handleStart() {
	if r.status != constants.StatusWaiting {
		return
	}
	r.status = constants.StatusCountdown
	r.countdown = time.AfterFunc(r.cfg.Countdown, func() {
		r.send(countdownCmd{})
	})
	r.log.Info("countdown started", "room", r.ID)
	r.broadcastState()
}

func (r *Room) handleCountdownDone() {
	// The room may have been emptied and restarted between scheduling
	// and firing; only commit the transition from countdown.
	if r.status != constants.StatusCountdown {
		return
	}
	now := r.now()
	r.status = constants.StatusRacing
	r.startTime = &now
	metrics.RacesStarted.Inc()

	for _, p := range r.players {
		if p.bot == nil {
			continue
		}
		p.bot.startedAt = now
		go r.runBotTicker(p.ID, p.bot)
	}

	r.log.Info("race started", "room", r.ID, "players", len(r.players))
	r.broadcastState()
}

func (r *Room) handleProgress(c progressCmd) {
	if r.status != constants.StatusRacing {
		return
	}
	p := r.findPlayer(c.playerID)
	if p == nil || p.Finished {
		return
	}

	// Progress never goes backwards while racing.
	if next := ClampPercent(c.progress); next > p.Progress {
		p.Progress = next
	}
	if r.startTime != nil {
		if wpm, ok := WPM(c.correctChars, r.now().Sub(*r.startTime)); ok {
			p.WPM = wpm
		}
	}
	if acc, ok := Accuracy(c.correctChars, c.errorChars); ok {
		p.Accuracy = acc
	}

	r.broadcastState()
}

// finishPlayer applies the single ranking rule shared by humans and
// bots: rank = players already finished + 1, in command order. It
// reports whether the player state changed.
func (r *Room) finishPlayer(p *Player) bool {
	if r.status != constants.StatusRacing || p.Finished {
		return false
	}
	p.Finished = true
	p.Position = r.nextRank
	r.nextRank++
	if p.bot != nil {
		p.bot.cancel()
	}
	r.log.Info("player finished", "room", r.ID, "player", p.Name, "rank", p.Position)

	if r.allFinished() {
		r.finishRace()
	}
	return true
}

func (r *Room) finishRace() {
	now := r.now()
	r.status = constants.StatusFinished
	r.endTime = &now
	r.stopBots()
	metrics.RacesFinished.Inc()
	r.log.Info("race finished", "room", r.ID)
}

// BOT SIMULATION =>

// runBotTicker drives one simulated player. The goroutine exits when
// the bot is cancelled or the room stops; a cancelled ticker can never
// mutate the room again because ticks funnel through the inbox and the
// loop re-checks state.
func (r *Room) runBotTicker(playerID string, b *botState) {
	ticker := time.NewTicker(r.cfg.BotTick)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-r.quit:
			return
		case now := <-ticker.C:
			r.send(botTickCmd{playerID: playerID, now: now})
		}
	}
}

func (r *Room) handleBotTick(c botTickCmd) {
	if r.status != constants.StatusRacing {
		return
	}
	p := r.findPlayer(c.playerID)
	if p == nil || p.Finished || p.bot == nil || p.bot.cancelled() {
		return
	}

	if advanceBot(p, c.now, len(r.Text), r.rng) {
		p.Progress = 100
		r.finishPlayer(p)
	}
	r.broadcastState()
}

func (r *Room) stopBots() {
	for _, p := range r.players {
		if p.bot != nil {
			p.bot.cancel()
		}
	}
}

// HELPERS =>

func (r *Room) findPlayer(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) humanCount() int {
	n := 0
	for _, p := range r.players {
		if !p.IsBot {
			n++
		}
	}
	return n
}

func (r *Room) allFinished() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Finished {
			return false
		}
	}
	return true
}

// COMMUNICATION =>

func (r *Room) buildSnapshot() models.RoomSnapshot {
	snap := models.RoomSnapshot{
		ID:      r.ID,
		Status:  r.status,
		Text:    r.Text,
		Players: make([]models.PlayerSnapshot, 0, len(r.players)),
	}
	if r.startTime != nil {
		t := *r.startTime
		snap.StartTime = &t
	}
	if r.endTime != nil {
		t := *r.endTime
		snap.EndTime = &t
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, p.snapshot())
	}
	return snap
}

// broadcastState publishes the current snapshot to every subscribed
// connection. Connections that fail to accept are dropped from the race.
func (r *Room) broadcastState() {
	msg := models.Message{
		Type:   "state",
		RoomID: r.ID,
		Data:   r.buildSnapshot(),
		Time:   r.now(),
	}

	var failed []string
	for id, c := range r.conns {
		if err := c.Send(msg); err != nil {
			r.log.Warn("dropping unresponsive connection", "room", r.ID, "player", id, "err", err)
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.handleLeave(id)
	}
}
