package session

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/openbornes/bornes-server-go/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu    sync.Mutex
	saved []*game.GameState
}

func (f *fakeStore) SaveResult(_ context.Context, state *game.GameState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, state)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func newTestManager(store ResultStore, opts Options) *Manager {
	engine := game.NewEngine(zap.NewNop(), rand.New(rand.NewSource(11)))
	return NewManager(engine, nil, store, opts, zap.NewNop())
}

func newRecordingManager(t *testing.T, opts Options) (*Manager, *game.ReplayRecorder, string) {
	t.Helper()
	dir := t.TempDir()
	engine := game.NewEngine(zap.NewNop(), rand.New(rand.NewSource(11)))
	recorder := game.NewReplayRecorder(zap.NewNop(), dir)
	return NewManager(engine, recorder, nil, opts, zap.NewNop()), recorder, dir
}

// dealWinningHand swaps the session's snapshot for one where the current
// player wins by playing card 0.
func dealWinningHand(sess *Session) {
	state := sess.State().Clone()
	state.Players[0].BattlePile = []game.Card{{ID: "roll-x", Kind: game.KindRoll, Category: game.CategoryRemedy}}
	state.Players[0].Mileage = 800
	state.Players[0].Hand = []game.Card{{ID: "d200-x", Kind: game.KindDistance200, Category: game.CategoryDistance, Value: 200}}
	sess.mu.Lock()
	sess.state = state
	sess.mu.Unlock()
}

func TestCreateGame(t *testing.T) {
	m := newTestManager(nil, Options{})

	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.GameID)

	state := sess.State()
	assert.Equal(t, game.StatusPlaying, state.Status)
	assert.Len(t, state.Players, 2)

	got, ok := m.Get(sess.GameID)
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestCreateGameRequiresTwoPlayers(t *testing.T) {
	m := newTestManager(nil, Options{})
	_, err := m.CreateGame([]string{"Alice"})
	assert.Error(t, err)
}

func TestCreateGameAppliesOptions(t *testing.T) {
	m := newTestManager(nil, Options{
		TurnTimeLimit:   45 * time.Second,
		TurnActionLimit: 2,
	})

	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	state := sess.State()
	assert.Equal(t, 45*time.Second, state.TurnTimeLimit)
	assert.Equal(t, 2, state.TurnActionLimit)
}

func TestActionsPublishSnapshots(t *testing.T) {
	m := newTestManager(nil, Options{})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	snapshots, cancel := sess.Subscribe()
	defer cancel()

	next := sess.EndTurn()
	assert.Equal(t, 1, next.CurrentPlayerIndex)

	select {
	case published := <-snapshots:
		assert.Equal(t, next, published)
	case <-time.After(time.Second):
		t.Fatal("expected a published snapshot")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := newTestManager(nil, Options{})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	snapshots, cancel := sess.Subscribe()
	cancel()

	_, open := <-snapshots
	assert.False(t, open)

	// Further actions must not panic with the subscriber gone.
	sess.EndTurn()
}

func TestGameOverPersistsResultWithScores(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, Options{})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	// Drive the game to a win through the session's own lock.
	dealWinningHand(sess)
	final := sess.Play(0, -1)

	assert.Equal(t, game.StatusEnded, final.Status)
	assert.Equal(t, "player-0", final.Winner)
	// Scoring ran before persistence.
	assert.Equal(t, 1400, final.Players[0].Score)
	require.Equal(t, 1, store.count())
	assert.Equal(t, final.GameID, store.saved[0].GameID)

	// A further action must not persist twice.
	sess.EndTurn()
	assert.Equal(t, 1, store.count())
}

func TestTickClocksForcesTimeout(t *testing.T) {
	m := newTestManager(nil, Options{TurnTimeLimit: 10 * time.Second})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	started := sess.State().TurnStartTime

	// Under the limit nothing moves.
	m.TickClocks(started.Add(5 * time.Second))
	assert.Equal(t, 0, sess.State().CurrentPlayerIndex)

	m.TickClocks(started.Add(11 * time.Second))
	state := sess.State()
	assert.Equal(t, 1, state.CurrentPlayerIndex)
	assert.True(t, state.Players[1].IsActive)
}

func TestConcurrentCreateGame(t *testing.T) {
	m := newTestManager(nil, Options{})

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sess, err := m.CreateGame([]string{"Alice", "Bob"})
				if err != nil {
					t.Error(err)
					return
				}
				ids <- sess.GameID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestUnexpiredTickRecordsAndPublishesNothing(t *testing.T) {
	m, recorder, _ := newRecordingManager(t, Options{TurnTimeLimit: time.Minute})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	snapshots, cancel := sess.Subscribe()
	defer cancel()

	started := sess.State().TurnStartTime
	for i := 0; i < 10; i++ {
		m.TickClocks(started.Add(time.Second))
	}

	replay, ok := recorder.GetReplay(sess.GameID)
	require.True(t, ok)
	assert.Equal(t, 1, replay.Size())
	assert.Empty(t, snapshots)

	// An expired tick still records and publishes exactly once.
	m.TickClocks(started.Add(2 * time.Minute))
	assert.Equal(t, 2, replay.Size())
	assert.Len(t, snapshots, 1)
}

func TestGameOverSavesReplay(t *testing.T) {
	m, recorder, dir := newRecordingManager(t, Options{})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	dealWinningHand(sess)
	final := sess.Play(0, -1)
	require.Equal(t, game.StatusEnded, final.Status)

	// Flushed to disk and dropped from the recorder.
	_, err = os.Stat(filepath.Join(dir, sess.GameID+".replay"))
	assert.NoError(t, err)
	_, ok := recorder.GetReplay(sess.GameID)
	assert.False(t, ok)
	assert.False(t, recorder.IsRecording(sess.GameID))

	loaded, err := game.LoadReplayFromFile(dir, sess.GameID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Size())
	assert.Equal(t, game.StatusEnded, loaded.GetStateAt(1).Status)
}

func TestRemoveClearsReplay(t *testing.T) {
	m, recorder, _ := newRecordingManager(t, Options{})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	_, ok := recorder.GetReplay(sess.GameID)
	require.True(t, ok)

	m.Remove(sess.GameID)
	_, ok = recorder.GetReplay(sess.GameID)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	m := newTestManager(nil, Options{})
	sess, err := m.CreateGame([]string{"Alice", "Bob"})
	require.NoError(t, err)

	m.Remove(sess.GameID)
	_, ok := m.Get(sess.GameID)
	assert.False(t, ok)
}
