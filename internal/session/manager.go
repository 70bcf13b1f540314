package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openbornes/bornes-server-go/internal/game"
	"go.uber.org/zap"
)

// ResultStore persists the outcome of a finished game. A nil store
// disables persistence.
type ResultStore interface {
	SaveResult(ctx context.Context, state *game.GameState) error
}

// Session owns one game's state and serializes every action against it.
// The engine itself performs no locking; the session is the single writer
// the engine's contract requires. Each accepted action yields a fresh
// snapshot that is recorded for replay and published to subscribers.
type Session struct {
	GameID string

	mu          sync.Mutex
	engine      *game.Engine
	state       *game.GameState
	subscribers []chan *game.GameState
	recorder    *game.ReplayRecorder
	store       ResultStore
	logger      *zap.Logger
	finished    bool
}

// State returns the current snapshot.
func (s *Session) State() *game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a snapshot channel and returns it with a cancel
// function. Slow subscribers miss snapshots rather than block the game.
func (s *Session) Subscribe() (<-chan *game.GameState, func()) {
	ch := make(chan *game.GameState, 16)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub == ch {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Draw applies a draw action for the current player.
func (s *Session) Draw() *game.GameState {
	return s.apply(func(st *game.GameState) *game.GameState {
		return s.engine.Draw(st)
	})
}

// Play applies a card play. targetIndex is negative for self-targeted
// plays.
func (s *Session) Play(cardIndex, targetIndex int) *game.GameState {
	return s.apply(func(st *game.GameState) *game.GameState {
		return s.engine.Play(st, cardIndex, targetIndex)
	})
}

// Discard applies a discard action.
func (s *Session) Discard(cardIndex int) *game.GameState {
	return s.apply(func(st *game.GameState) *game.GameState {
		return s.engine.Discard(st, cardIndex)
	})
}

// EndTurn passes the turn to the next player.
func (s *Session) EndTurn() *game.GameState {
	return s.apply(func(st *game.GameState) *game.GameState {
		return s.engine.EndTurn(st)
	})
}

// CheckTimeLimit forces the turn over when the clock has expired.
func (s *Session) CheckTimeLimit(now time.Time) *game.GameState {
	return s.apply(func(st *game.GameState) *game.GameState {
		return s.engine.CheckTimeLimit(st, now)
	})
}

// apply runs one transition under the session lock, records and publishes
// the snapshot, and finishes the game when it just ended.
func (s *Session) apply(fn func(*game.GameState) *game.GameState) *game.GameState {
	s.mu.Lock()
	prev := s.state
	next := fn(prev)

	// Every real transition, accepted or rejected, appends a message; an
	// unexpired clock poll appends none. Recording and publishing those
	// clones would grow the replay and spam subscribers once per tick.
	if len(next.Messages) == len(prev.Messages) {
		s.mu.Unlock()
		return next
	}
	s.state = next

	justEnded := next.Status == game.StatusEnded && !s.finished
	if justEnded {
		s.finished = true
		s.state = game.CalculateFinalScores(next)
		next = s.state
	}

	if s.recorder != nil {
		s.recorder.RecordState(s.GameID, next)
		if justEnded {
			s.recorder.StopRecording(s.GameID)
		}
	}
	subs := append([]chan *game.GameState(nil), s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub <- next:
		default:
			// Drop rather than block; the subscriber will catch up on the
			// next snapshot.
		}
	}

	if justEnded {
		s.persistResult(next)
		s.saveReplay()
	}
	return next
}

// saveReplay flushes the finished game's replay to disk, dropping it from
// the recorder's memory.
func (s *Session) saveReplay() {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveReplay(s.GameID); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to save replay",
				zap.String("game_id", s.GameID),
				zap.Error(err),
			)
		}
	}
}

func (s *Session) persistResult(state *game.GameState) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveResult(ctx, state); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to persist game result",
				zap.String("game_id", s.GameID),
				zap.Error(err),
			)
		}
		return
	}
	if s.logger != nil {
		s.logger.Info("game result persisted",
			zap.String("game_id", s.GameID),
			zap.String("winner", state.Winner),
		)
	}
}

// Options configures the games a manager creates.
type Options struct {
	// TurnTimeLimit overrides the engine default when positive.
	TurnTimeLimit time.Duration
	// TurnActionLimit caps major actions per turn; 0 leaves it unenforced.
	TurnActionLimit int
}

// Manager tracks all active sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	engine   *game.Engine
	recorder *game.ReplayRecorder
	store    ResultStore
	opts     Options
	logger   *zap.Logger
}

// NewManager creates a session manager. recorder and store may be nil.
func NewManager(engine *game.Engine, recorder *game.ReplayRecorder, store ResultStore, opts Options, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		engine:   engine,
		recorder: recorder,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// CreateGame initializes a new game for the named players and returns its
// session.
func (m *Manager) CreateGame(playerNames []string) (*Session, error) {
	if len(playerNames) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(playerNames))
	}

	gameID := uuid.NewString()
	state := m.engine.NewGame(playerNames, gameID)
	if m.opts.TurnTimeLimit > 0 {
		state.TurnTimeLimit = m.opts.TurnTimeLimit
	}
	state.TurnActionLimit = m.opts.TurnActionLimit

	session := &Session{
		GameID:   gameID,
		engine:   m.engine,
		state:    state,
		recorder: m.recorder,
		store:    m.store,
		logger:   m.logger,
	}
	if m.recorder != nil {
		m.recorder.StartRecording(gameID)
		m.recorder.RecordState(gameID, state)
	}

	m.mu.Lock()
	m.sessions[gameID] = session
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("session created",
			zap.String("game_id", gameID),
			zap.Strings("players", playerNames),
		)
	}
	return session, nil
}

// Get returns the session for a game ID.
func (m *Manager) Get(gameID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[gameID]
	return session, ok
}

// Remove drops a session from the manager, discarding any replay still
// held in memory for it.
func (m *Manager) Remove(gameID string) {
	m.mu.Lock()
	delete(m.sessions, gameID)
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.ClearReplay(gameID)
	}
}

// TickClocks polls the turn clock of every active session. The engine has
// no internal timers; the serving layer calls this periodically.
func (m *Manager) TickClocks(now time.Time) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.CheckTimeLimit(now)
	}
}
