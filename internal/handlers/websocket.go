package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/velotype/go-socket-typerace/internal/game"
	"github.com/velotype/go-socket-typerace/internal/manager"
	"github.com/velotype/go-socket-typerace/internal/metrics"
	"github.com/velotype/go-socket-typerace/internal/models"
)

// Configure WebSocket upgrader
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: In production, implement proper origin checking
		return true
	},
}

var (
	Registry *manager.Registry
	Log      *slog.Logger
)

func Init(reg *manager.Registry, log *slog.Logger) {
	Registry = reg
	Log = log
}

// wsConn adapts a gorilla connection to game.Conn. Writes are queued so
// the room goroutine never blocks on a slow client; the queue filling
// up counts as a send failure and gets the player dropped.
type wsConn struct {
	conn *websocket.Conn
	out  chan models.Message
	done chan struct{}
	once sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	c := &wsConn{
		conn: conn,
		out:  make(chan models.Message, 64),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *wsConn) Send(msg models.Message) error {
	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	default:
		return errors.New("send queue full")
	}
}

func (c *wsConn) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

func (c *wsConn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.Close()
				return
			}
		}
	}
}

// HandleWebSocket establishes a race session. All session parameters
// arrive once, in the query string.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raceID := q.Get("raceId")
	playerName := q.Get("playerName")

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Error("websocket upgrade failed", "err", err)
		return
	}
	wsc := newWSConn(conn)

	if raceID == "" {
		// No room is involved yet, so a direct write cannot race the
		// broadcast path; the queue might not flush before Close.
		conn.WriteJSON(models.Message{Type: "error", Data: "race id is required", Time: time.Now()})
		wsc.Close()
		return
	}

	var spec game.BotSpec
	if q.Get("isComputerMode") == "true" {
		spec.Count, _ = strconv.Atoi(q.Get("numBots"))
		if spec.Count < 0 {
			spec.Count = 0
		}
		spec.Difficulty = q.Get("difficulty")
	}

	room := Registry.GetOrCreate(r.Context(), raceID, spec)
	player := game.NewHumanPlayer(uuid.New().String(), playerName)

	if err := room.Join(player, wsc); err != nil {
		Log.Info("join rejected", "room", raceID, "player", player.Name, "err", err)
		conn.WriteJSON(models.Message{Type: "error", RoomID: raceID, Data: err.Error(), Time: time.Now()})
		wsc.Close()
		return
	}
	metrics.PlayersJoined.Inc()

	go readLoop(room, player.ID, wsc)
}

// readLoop processes incoming commands until the client disconnects,
// which counts as an implicit leave.
func readLoop(room *game.Room, playerID string, wsc *wsConn) {
	defer func() {
		room.Leave(playerID)
		wsc.Close()
	}()

	for {
		var msg models.Message
		if err := wsc.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				Log.Debug("websocket read error", "player", playerID, "err", err)
			}
			return
		}

		switch msg.Type {
		case "start":
			room.Start()
		case "progress":
			progress, correct, errs := parseProgress(msg.Data)
			room.UpdateProgress(playerID, progress, correct, errs)
		case "finish":
			room.Finish(playerID)
		case "ping":
			wsc.Send(models.Message{Type: "pong", Time: time.Now()})
		}
	}
}

func parseProgress(data interface{}) (progress float64, correct, errs int) {
	payload, ok := data.(map[string]interface{})
	if !ok {
		return 0, 0, 0
	}
	if v, ok := payload["progress"].(float64); ok {
		progress = v
	}
	if v, ok := payload["correctChars"].(float64); ok {
		correct = int(v)
	}
	if v, ok := payload["errors"].(float64); ok {
		errs = int(v)
	}
	return progress, correct, errs
}
