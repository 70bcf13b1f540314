package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openbornes/bornes-server-go/internal/config"
	"github.com/openbornes/bornes-server-go/internal/game"
	"github.com/openbornes/bornes-server-go/internal/session"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin enforcement belongs to the fronting proxy.
		return true
	},
}

// WSMessage is the wire envelope for both directions.
type WSMessage struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	Error    string          `json:"error,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Snapshot *SnapshotView   `json:"snapshot,omitempty"`
}

// createGameRequest asks for a new game.
type createGameRequest struct {
	PlayerNames []string `json:"player_names"`
}

// actionRequest carries a single game action. Target is -1 for
// self-targeted plays.
type actionRequest struct {
	CardIndex int `json:"card_index"`
	Target    int `json:"target"`
}

// SnapshotView is the JSON rendering of a game snapshot.
type SnapshotView struct {
	GameID             string        `json:"game_id"`
	Status             string        `json:"status"`
	CurrentPlayerIndex int           `json:"current_player_index"`
	Winner             string        `json:"winner,omitempty"`
	DrawPileCount      int           `json:"draw_pile_count"`
	DiscardPileCount   int           `json:"discard_pile_count"`
	Players            []PlayerView  `json:"players"`
	Messages           []MessageView `json:"messages"`
	TurnTimeRemaining  float64       `json:"turn_time_remaining"`
}

// PlayerView is a player's public state plus their hand; a production
// deployment would filter hands per recipient, which the external
// synchronization layer owns.
type PlayerView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Hand          []CardView `json:"hand"`
	BattlePile    []CardView `json:"battle_pile"`
	SpeedPile     []CardView `json:"speed_pile"`
	DistancePile  []CardView `json:"distance_pile"`
	SafetyPile    []CardView `json:"safety_pile"`
	Mileage       int        `json:"mileage"`
	Score         int        `json:"score"`
	IsActive      bool       `json:"is_active"`
	PossibleMoves []string   `json:"possible_moves,omitempty"`
}

// CardView is the JSON rendering of a card.
type CardView struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Value    int    `json:"value,omitempty"`
}

// MessageView is one log entry.
type MessageView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func cardViews(cards []game.Card) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = CardView{ID: c.ID, Kind: c.Kind.String(), Category: c.Category.String(), Value: c.Value}
	}
	return out
}

// NewSnapshotView renders a state snapshot for the wire.
func NewSnapshotView(s *game.GameState, now time.Time) *SnapshotView {
	view := &SnapshotView{
		GameID:             s.GameID,
		Status:             s.Status.String(),
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		Winner:             s.Winner,
		DrawPileCount:      len(s.DrawPile),
		DiscardPileCount:   len(s.DiscardPile),
		Players:            make([]PlayerView, len(s.Players)),
		Messages:           make([]MessageView, len(s.Messages)),
		TurnTimeRemaining:  game.TurnTimeRemaining(s.TurnStartTime, s.TurnTimeLimit, now),
	}
	for i := range s.Players {
		p := &s.Players[i]
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Hand:         cardViews(p.Hand),
			BattlePile:   cardViews(p.BattlePile),
			SpeedPile:    cardViews(p.SpeedPile),
			DistancePile: cardViews(p.DistancePile),
			SafetyPile:   cardViews(p.SafetyPile),
			Mileage:      p.Mileage,
			Score:        p.Score,
			IsActive:     p.IsActive,
		}
		if p.IsActive && s.Status == game.StatusPlaying {
			opponents := make([]game.PlayerState, 0, len(s.Players)-1)
			for j := range s.Players {
				if j != i {
					opponents = append(opponents, s.Players[j])
				}
			}
			pv.PossibleMoves = game.PossibleMoves(p, opponents)
		}
		view.Players[i] = pv
	}
	for i, m := range s.Messages {
		view.Messages[i] = MessageView{ID: m.ID, Text: m.Text, Kind: string(m.Kind), Timestamp: m.Timestamp}
	}
	return view
}

// Client is one websocket connection.
type client struct {
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	gameID      string
	unsubscribe func()
}

// Server exposes sessions over websocket and drives the turn clocks.
type Server struct {
	cfg     config.ServerConfig
	manager *session.Manager
	logger  *zap.Logger
}

// New creates a websocket server around the session manager.
func New(cfg config.ServerConfig, manager *session.Manager, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, manager: manager, logger: logger}
}

// Start listens on the configured address and polls turn clocks until stop
// closes, then shuts the listener down. It blocks until the server exits.
func (s *Server) Start(stop <-chan struct{}) error {
	ticker := time.NewTicker(s.cfg.ClockTick)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				s.manager.TickClocks(now)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)

	srv := &http.Server{Addr: s.cfg.Address, Handler: mux}
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("starting websocket server", zap.String("address", s.cfg.Address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
	go c.writePump()
	c.readPump(s)
}

func (c *client) readPump(s *Server) {
	defer func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.conn.Close()
		close(c.done)
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(WSMessage{Type: "error", Error: "malformed message"})
			continue
		}
		s.handleMessage(c, msg)
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}
}

func (c *client) reply(msg WSMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

func (s *Server) handleMessage(c *client, msg WSMessage) {
	switch msg.Type {
	case "create_game":
		var req createGameRequest
		if msg.Data != nil {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				c.reply(WSMessage{Type: "error", Error: "malformed create_game request"})
				return
			}
		}
		sess, err := s.manager.CreateGame(req.PlayerNames)
		if err != nil {
			c.reply(WSMessage{Type: "error", Error: err.Error()})
			return
		}
		s.attach(c, sess)
		c.reply(WSMessage{Type: "game_state", GameID: sess.GameID, Snapshot: NewSnapshotView(sess.State(), time.Now())})

	case "join_game":
		sess, ok := s.manager.Get(msg.GameID)
		if !ok {
			c.reply(WSMessage{Type: "error", Error: "unknown game " + msg.GameID})
			return
		}
		s.attach(c, sess)
		c.reply(WSMessage{Type: "game_state", GameID: sess.GameID, Snapshot: NewSnapshotView(sess.State(), time.Now())})

	case "draw", "play", "discard", "end_turn":
		sess, ok := s.manager.Get(c.gameID)
		if !ok {
			c.reply(WSMessage{Type: "error", Error: "not joined to a game"})
			return
		}
		var req actionRequest
		req.Target = -1
		if msg.Data != nil {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				c.reply(WSMessage{Type: "error", Error: "malformed action request"})
				return
			}
		}
		switch msg.Type {
		case "draw":
			sess.Draw()
		case "play":
			sess.Play(req.CardIndex, req.Target)
		case "discard":
			sess.Discard(req.CardIndex)
		case "end_turn":
			sess.EndTurn()
		}

	default:
		c.reply(WSMessage{Type: "error", Error: "unknown message type " + msg.Type})
	}
}

// attach subscribes the client to the session's snapshot stream.
func (s *Server) attach(c *client, sess *session.Session) {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.gameID = sess.GameID

	snapshots, cancel := sess.Subscribe()
	c.unsubscribe = cancel

	go func() {
		for state := range snapshots {
			raw, err := json.Marshal(WSMessage{
				Type:     "game_state",
				GameID:   state.GameID,
				Snapshot: NewSnapshotView(state, time.Now()),
			})
			if err != nil {
				continue
			}
			select {
			case c.send <- raw:
			default:
			}
		}
	}()
}
