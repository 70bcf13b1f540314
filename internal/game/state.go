package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a game. Transitions are
// monotonic: Waiting -> Setup -> Playing -> Ended.
type Status int

const (
	StatusWaiting Status = iota
	StatusSetup
	StatusPlaying
	StatusEnded
)

var statusNames = map[Status]string{
	StatusWaiting: "WAITING",
	StatusSetup:   "SETUP",
	StatusPlaying: "PLAYING",
	StatusEnded:   "ENDED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(s))
}

// MessageKind classifies a log entry for the UI layer.
type MessageKind string

const (
	MessageInfo   MessageKind = "info"
	MessageAction MessageKind = "action"
	MessageError  MessageKind = "error"
	MessageSystem MessageKind = "system"
)

// Message is one entry in the append-only game log.
type Message struct {
	ID        string
	Text      string
	Kind      MessageKind
	Timestamp time.Time
}

func newMessage(kind MessageKind, format string, args ...interface{}) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      fmt.Sprintf(format, args...),
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// BattleStatus is the tagged view of a player's battle slot.
type BattleStatus int

const (
	// BattleNone means no status card has been played yet.
	BattleNone BattleStatus = iota
	// BattleMoving means a Roll is active and no hazard blocks the player.
	BattleMoving
	// BattleStopped means a blocking hazard occupies the slot.
	BattleStopped
)

// PlayerState holds one participant's piles and derived totals.
type PlayerState struct {
	ID           string
	Name         string
	Hand         []Card
	BattlePile   []Card
	SpeedPile    []Card
	DistancePile []Card
	SafetyPile   []Card
	Mileage      int
	Score        int
	IsActive     bool
}

// Battle returns the tagged status of the battle slot along with the
// blocking hazard kind when stopped. Only the most recent status-affecting
// card in the pile is semantically active.
func (p *PlayerState) Battle() (BattleStatus, Kind) {
	for _, c := range p.BattlePile {
		if IsBlockingHazard(c.Kind) {
			return BattleStopped, c.Kind
		}
	}
	for _, c := range p.BattlePile {
		if c.Kind == KindRoll {
			return BattleMoving, KindRoll
		}
	}
	return BattleNone, KindRoll
}

// HasBattleKind reports whether the battle pile holds a card of kind k.
func (p *PlayerState) HasBattleKind(k Kind) bool {
	for _, c := range p.BattlePile {
		if c.Kind == k {
			return true
		}
	}
	return false
}

// HasSafety reports whether the player owns the given safety card.
func (p *PlayerState) HasSafety(k Kind) bool {
	for _, c := range p.SafetyPile {
		if c.Kind == k {
			return true
		}
	}
	return false
}

func (p *PlayerState) clone() PlayerState {
	out := *p
	out.Hand = append([]Card(nil), p.Hand...)
	out.BattlePile = append([]Card(nil), p.BattlePile...)
	out.SpeedPile = append([]Card(nil), p.SpeedPile...)
	out.DistancePile = append([]Card(nil), p.DistancePile...)
	out.SafetyPile = append([]Card(nil), p.SafetyPile...)
	return out
}

// GameState is the aggregate snapshot of one game. Transition functions
// never mutate a GameState in place; they clone it and return the next
// snapshot, so callers can diff, persist, or broadcast freely.
type GameState struct {
	GameID             string
	Players            []PlayerState
	DrawPile           []Card
	DiscardPile        []Card
	CurrentPlayerIndex int
	Status             Status
	Winner             string
	Messages           []Message
	TurnStartTime      time.Time
	TurnTimeLimit      time.Duration
	// TurnActionLimit caps draws/plays/discards per turn when positive.
	// Zero leaves the count unenforced.
	TurnActionLimit int
	// TurnActions counts major actions taken since the last EndTurn.
	TurnActions int
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]PlayerState, len(s.Players))
	for i := range s.Players {
		out.Players[i] = s.Players[i].clone()
	}
	out.DrawPile = append([]Card(nil), s.DrawPile...)
	out.DiscardPile = append([]Card(nil), s.DiscardPile...)
	out.Messages = append([]Message(nil), s.Messages...)
	return &out
}

// CurrentPlayer returns the active player, or nil when the index is out of
// range (defensive: the engine must stay safe against lagging callers).
func (s *GameState) CurrentPlayer() *PlayerState {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayerIndex]
}

// FindPlayer returns the player with the given id.
func (s *GameState) FindPlayer(id string) (*PlayerState, bool) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], true
		}
	}
	return nil, false
}

func (s *GameState) log(kind MessageKind, format string, args ...interface{}) {
	s.Messages = append(s.Messages, newMessage(kind, format, args...))
}
