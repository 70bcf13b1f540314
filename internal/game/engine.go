package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTurnTimeLimit matches the 30-second turn clock the game was
// designed around.
const DefaultTurnTimeLimit = 30 * time.Second

// InitializeGame builds and shuffles a deck with the supplied source,
// deals six cards to every player (all six to player 0, then all six to
// player 1, and so on), and returns a snapshot in the Playing state with
// the first player active.
func InitializeGame(playerNames []string, gameID string, rng *rand.Rand) *GameState {
	deck := Shuffle(BuildDeck(), rng)
	hands, rest := deal(deck, len(playerNames))

	s := &GameState{
		GameID:        gameID,
		Players:       make([]PlayerState, len(playerNames)),
		DrawPile:      rest,
		DiscardPile:   []Card{},
		Status:        StatusPlaying,
		TurnStartTime: time.Now(),
		TurnTimeLimit: DefaultTurnTimeLimit,
	}
	for i, name := range playerNames {
		s.Players[i] = PlayerState{
			ID:       playerID(i),
			Name:     name,
			Hand:     hands[i],
			IsActive: i == 0,
		}
	}
	s.log(MessageSystem, "Game has started!")
	return s
}

func playerID(i int) string {
	return fmt.Sprintf("player-%d", i)
}

// guardPlaying rejects any action submitted outside the Playing state.
// The rejection appends exactly one error message and changes nothing
// else, keeping the engine safe against lagging or untrusted callers.
func guardPlaying(s *GameState, action string) (*GameState, bool) {
	if s.Status == StatusPlaying {
		return nil, true
	}
	next := s.Clone()
	next.log(MessageError, "Cannot %s: game is %s", action, s.Status)
	return next, false
}

// guardActionLimit enforces the optional per-turn action cap.
func guardActionLimit(s *GameState) (*GameState, bool) {
	if s.TurnActionLimit > 0 && s.TurnActions >= s.TurnActionLimit {
		next := s.Clone()
		next.log(MessageError, "%s has already acted this turn; end the turn first", s.CurrentPlayer().Name)
		return next, false
	}
	return nil, true
}

// DrawFromPile moves the head of the draw pile into the current player's
// hand. When the draw pile is empty the discard pile is reshuffled into a
// fresh draw pile first; when both are empty only a message is appended.
func DrawFromPile(s *GameState, rng *rand.Rand) *GameState {
	if next, ok := guardPlaying(s, "draw"); !ok {
		return next
	}
	if next, ok := guardActionLimit(s); !ok {
		return next
	}

	next := s.Clone()
	player := next.CurrentPlayer()

	if len(next.DrawPile) == 0 {
		if len(next.DiscardPile) == 0 {
			next.log(MessageError, "No cards left to draw!")
			return next
		}
		next.DrawPile = Shuffle(next.DiscardPile, rng)
		next.DiscardPile = []Card{}
		next.log(MessageSystem, "Discard pile shuffled into draw pile.")
	}

	player.Hand = append(player.Hand, next.DrawPile[0])
	next.DrawPile = next.DrawPile[1:]
	next.TurnActions++
	next.log(MessageAction, "%s drew a card.", player.Name)
	return next
}

// PlayCard resolves the card at cardIndex in the current player's hand and
// dispatches on its category. targetIndex selects the hazard target; pass
// a negative value for self-targeted plays. An unknown card index is a
// no-op. A rejected play appends one message and leaves everything else
// untouched, except that a hazard blocked by immunity is still consumed to
// the discard pile.
func PlayCard(s *GameState, cardIndex, targetIndex int) *GameState {
	if next, ok := guardPlaying(s, "play a card"); !ok {
		return next
	}
	if next, ok := guardActionLimit(s); !ok {
		return next
	}

	next := s.Clone()
	player := next.CurrentPlayer()
	if player == nil || cardIndex < 0 || cardIndex >= len(player.Hand) {
		return next
	}
	card := player.Hand[cardIndex]

	target := player
	if targetIndex >= 0 && targetIndex < len(next.Players) {
		target = &next.Players[targetIndex]
	}

	switch card.Category {
	case CategoryHazard:
		return playHazard(next, player, target, card, cardIndex)
	case CategoryRemedy:
		return playRemedy(next, player, target, card, cardIndex)
	case CategorySafety:
		return playSafety(next, player, target, card, cardIndex)
	case CategoryDistance:
		return playDistance(next, player, target, card, cardIndex)
	default:
		return next
	}
}

// removeFromHand drops the card at index i without reordering the rest.
func removeFromHand(p *PlayerState, i int) {
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
}

// moveBattleKind moves every battle-pile card of kind k to the discard
// pile, preserving conservation of the full deck.
func moveBattleKind(s *GameState, p *PlayerState, k Kind) {
	kept := p.BattlePile[:0]
	for _, c := range p.BattlePile {
		if c.Kind == k {
			s.DiscardPile = append(s.DiscardPile, c)
		} else {
			kept = append(kept, c)
		}
	}
	p.BattlePile = kept
}

// moveSpeedPile moves the entire speed pile to the discard pile.
func moveSpeedPile(s *GameState, p *PlayerState) {
	s.DiscardPile = append(s.DiscardPile, p.SpeedPile...)
	p.SpeedPile = p.SpeedPile[:0]
}

func playHazard(next *GameState, player, target *PlayerState, card Card, cardIndex int) *GameState {
	if target.ID == player.ID {
		next.log(MessageError, "Cannot play hazard on yourself!")
		return next
	}

	if HasImmunityAgainst(target, card.Kind) {
		// The hazard is consumed even when blocked. This asymmetry with
		// inapplicable remedies is intentional.
		removeFromHand(player, cardIndex)
		next.DiscardPile = append(next.DiscardPile, card)
		next.TurnActions++
		next.log(MessageInfo, "%s played %s on %s, but they have immunity!", player.Name, card.Kind, target.Name)
		return next
	}

	removeFromHand(player, cardIndex)
	if card.Kind == KindSpeedLimit {
		target.SpeedPile = append(target.SpeedPile, card)
	} else {
		moveBattleKind(next, target, KindRoll)
		target.BattlePile = append(target.BattlePile, card)
	}
	next.TurnActions++
	next.log(MessageAction, "%s played %s on %s!", player.Name, card.Kind, target.Name)
	return next
}

func playRemedy(next *GameState, player, target *PlayerState, card Card, cardIndex int) *GameState {
	if target.ID != player.ID {
		next.log(MessageError, "Cannot play remedy on other players!")
		return next
	}
	if res := CanPlayRemedy(player, card); !res.Legal {
		// Inapplicable remedies stay in hand, unlike blocked hazards.
		next.log(MessageError, "%s", res.Reason)
		return next
	}

	removeFromHand(player, cardIndex)
	switch card.Kind {
	case KindEndOfLimit:
		moveSpeedPile(next, player)
		next.DiscardPile = append(next.DiscardPile, card)
	case KindRoll:
		// Roll occupies the battle slot rather than the discard pile so
		// the moving status is backed by a real card.
		moveBattleKind(next, player, KindStop)
		player.BattlePile = append(player.BattlePile, card)
	default:
		moveBattleKind(next, player, HazardCuredBy[card.Kind])
		next.DiscardPile = append(next.DiscardPile, card)
	}
	next.TurnActions++
	next.log(MessageAction, "%s played %s!", player.Name, card.Kind)
	return next
}

func playSafety(next *GameState, player, target *PlayerState, card Card, cardIndex int) *GameState {
	if res := CanPlaySafety(player, target); !res.Legal {
		next.log(MessageError, "%s", res.Reason)
		return next
	}

	removeFromHand(player, cardIndex)
	player.SafetyPile = append(player.SafetyPile, card)
	switch card.Kind {
	case KindDrivingAce:
		moveBattleKind(next, player, KindAccident)
	case KindFuelTank:
		moveBattleKind(next, player, KindOutOfGas)
	case KindPunctureProof:
		moveBattleKind(next, player, KindFlatTire)
	case KindRightOfWay:
		moveBattleKind(next, player, KindStop)
		moveSpeedPile(next, player)
	}
	next.TurnActions++
	next.log(MessageAction, "%s played %s!", player.Name, card.Kind)
	return next
}

func playDistance(next *GameState, player, target *PlayerState, card Card, cardIndex int) *GameState {
	if target.ID != player.ID {
		next.log(MessageError, "Cannot play distance cards on other players!")
		return next
	}
	if res := CheckDistancePlay(player, card); !res.Legal {
		next.log(MessageError, "%s", res.Reason)
		return next
	}

	removeFromHand(player, cardIndex)
	player.DistancePile = append(player.DistancePile, card)
	player.Mileage += card.Value
	next.TurnActions++
	next.log(MessageAction, "%s played %s and moved %d miles!", player.Name, card.Kind, card.Value)

	// The win check runs immediately after the mileage update so mileage
	// only ever increases through accepted distance plays.
	if player.Mileage >= WinningDistance {
		next.Status = StatusEnded
		next.Winner = player.ID
		for i := range next.Players {
			next.Players[i].IsActive = false
		}
		next.log(MessageSystem, "%s has reached %d miles and won the game!", player.Name, WinningDistance)
	}
	return next
}

// DiscardCard moves the card at cardIndex from the current player's hand
// to the discard pile. Discarding is always legal; an unknown index is a
// no-op.
func DiscardCard(s *GameState, cardIndex int) *GameState {
	if next, ok := guardPlaying(s, "discard"); !ok {
		return next
	}
	if next, ok := guardActionLimit(s); !ok {
		return next
	}

	next := s.Clone()
	player := next.CurrentPlayer()
	if player == nil || cardIndex < 0 || cardIndex >= len(player.Hand) {
		return next
	}
	card := player.Hand[cardIndex]
	removeFromHand(player, cardIndex)
	next.DiscardPile = append(next.DiscardPile, card)
	next.TurnActions++
	next.log(MessageAction, "%s discarded a card.", player.Name)
	return next
}

// EndTurn advances the active seat to the next player in fixed order and
// resets the turn clock.
func EndTurn(s *GameState) *GameState {
	if next, ok := guardPlaying(s, "end the turn"); !ok {
		return next
	}
	next := s.Clone()
	ended := next.CurrentPlayer().Name
	next = advanceTurn(next, time.Now())
	next.log(MessageSystem, "%s's turn ended. It's now %s's turn.",
		ended, next.CurrentPlayer().Name)
	return next
}

// CheckTimeLimit forces the turn over when the clock has expired,
// otherwise the state is returned unchanged. This is the only transition
// driven by elapsed time; the caller polls it.
func CheckTimeLimit(s *GameState, now time.Time) *GameState {
	if s.Status != StatusPlaying {
		return s.Clone()
	}
	if now.Sub(s.TurnStartTime) <= s.TurnTimeLimit {
		return s.Clone()
	}
	next := s.Clone()
	expired := next.CurrentPlayer().Name
	next = advanceTurn(next, now)
	next.log(MessageSystem, "Time's up for %s! Turn automatically ended.", expired)
	return next
}

func advanceTurn(next *GameState, now time.Time) *GameState {
	nextIndex := (next.CurrentPlayerIndex + 1) % len(next.Players)
	next.CurrentPlayerIndex = nextIndex
	next.TurnStartTime = now
	next.TurnActions = 0
	for i := range next.Players {
		next.Players[i].IsActive = i == nextIndex
	}
	return next
}

// Engine wraps the pure transition functions with structured logging and a
// pluggable random source, the shape the session layer drives.
type Engine struct {
	logger *zap.Logger

	// rng is shared by every game this engine drives; rand.Rand is not
	// safe for concurrent use, so every shuffle goes through rngMu.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine creates an engine. A nil rng uses the process source; a seeded
// source makes every shuffle, and therefore every game, replayable.
func NewEngine(logger *zap.Logger, rng *rand.Rand) *Engine {
	return &Engine{logger: logger, rng: rng}
}

// NewGame initializes a game and logs the roster.
func (e *Engine) NewGame(playerNames []string, gameID string) *GameState {
	e.rngMu.Lock()
	s := InitializeGame(playerNames, gameID, e.rng)
	e.rngMu.Unlock()
	if e.logger != nil {
		e.logger.Info("game initialized",
			zap.String("game_id", gameID),
			zap.Strings("players", playerNames),
			zap.Int("draw_pile", len(s.DrawPile)),
		)
	}
	return s
}

// Draw applies DrawFromPile. The lock covers the discard reshuffle.
func (e *Engine) Draw(s *GameState) *GameState {
	e.rngMu.Lock()
	next := DrawFromPile(s, e.rng)
	e.rngMu.Unlock()
	e.logTransition(s, next, "draw")
	return next
}

// Play applies PlayCard.
func (e *Engine) Play(s *GameState, cardIndex, targetIndex int) *GameState {
	next := PlayCard(s, cardIndex, targetIndex)
	e.logTransition(s, next, "play")
	return next
}

// Discard applies DiscardCard.
func (e *Engine) Discard(s *GameState, cardIndex int) *GameState {
	next := DiscardCard(s, cardIndex)
	e.logTransition(s, next, "discard")
	return next
}

// EndTurn applies EndTurn.
func (e *Engine) EndTurn(s *GameState) *GameState {
	next := EndTurn(s)
	e.logTransition(s, next, "end_turn")
	return next
}

// CheckTimeLimit applies CheckTimeLimit.
func (e *Engine) CheckTimeLimit(s *GameState, now time.Time) *GameState {
	next := CheckTimeLimit(s, now)
	if len(next.Messages) > len(s.Messages) {
		e.logTransition(s, next, "timeout")
	}
	return next
}

func (e *Engine) logTransition(prev, next *GameState, action string) {
	if e.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("game_id", next.GameID),
		zap.String("action", action),
		zap.String("status", next.Status.String()),
		zap.Int("current_player", next.CurrentPlayerIndex),
	}
	if n := len(next.Messages); n > len(prev.Messages) {
		fields = append(fields, zap.String("message", next.Messages[n-1].Text))
	}
	e.logger.Debug("applied transition", fields...)
}
