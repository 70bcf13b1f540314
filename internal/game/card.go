package game

import "fmt"

// Category represents the broad family a card belongs to.
type Category int

const (
	CategoryDistance Category = iota
	CategoryHazard
	CategoryRemedy
	CategorySafety
)

var categoryNames = map[Category]string{
	CategoryDistance: "DISTANCE",
	CategoryHazard:   "HAZARD",
	CategoryRemedy:   "REMEDY",
	CategorySafety:   "SAFETY",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

// Kind represents the fine-grained card type.
type Kind int

const (
	// Distance
	KindDistance25 Kind = iota
	KindDistance50
	KindDistance75
	KindDistance100
	KindDistance200
	// Hazards
	KindAccident
	KindOutOfGas
	KindFlatTire
	KindSpeedLimit
	KindStop
	// Remedies
	KindRepairs
	KindGasoline
	KindSpareTire
	KindEndOfLimit
	KindRoll
	// Safeties
	KindDrivingAce
	KindFuelTank
	KindPunctureProof
	KindRightOfWay
)

var kindNames = map[Kind]string{
	KindDistance25:    "25 Miles",
	KindDistance50:    "50 Miles",
	KindDistance75:    "75 Miles",
	KindDistance100:   "100 Miles",
	KindDistance200:   "200 Miles",
	KindAccident:      "Accident",
	KindOutOfGas:      "Out of Gas",
	KindFlatTire:      "Flat Tire",
	KindSpeedLimit:    "Speed Limit",
	KindStop:          "Stop",
	KindRepairs:       "Repairs",
	KindGasoline:      "Gasoline",
	KindSpareTire:     "Spare Tire",
	KindEndOfLimit:    "End of Limit",
	KindRoll:          "Roll",
	KindDrivingAce:    "Driving Ace",
	KindFuelTank:      "Fuel Tank",
	KindPunctureProof: "Puncture Proof",
	KindRightOfWay:    "Right of Way",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// Card is an immutable deck card. Value is set only for distance cards.
// Playing a card moves its reference between piles; cards are never
// created or destroyed after the deck is built.
type Card struct {
	ID       string
	Kind     Kind
	Category Category
	Value    int
}

// WinningDistance is the mileage that ends the game.
const WinningDistance = 1000

// SpeedLimitMax is the largest distance value playable under an active
// speed limit.
const SpeedLimitMax = 50

// deckEntry describes one kind's contribution to the canonical deck.
type deckEntry struct {
	kind     Kind
	category Category
	value    int
	count    int
}

// deckComposition is the canonical 106-card Mille Bornes deck.
var deckComposition = []deckEntry{
	{KindDistance25, CategoryDistance, 25, 10},
	{KindDistance50, CategoryDistance, 50, 10},
	{KindDistance75, CategoryDistance, 75, 10},
	{KindDistance100, CategoryDistance, 100, 12},
	{KindDistance200, CategoryDistance, 200, 4},
	{KindAccident, CategoryHazard, 0, 3},
	{KindOutOfGas, CategoryHazard, 0, 3},
	{KindFlatTire, CategoryHazard, 0, 3},
	{KindSpeedLimit, CategoryHazard, 0, 4},
	{KindStop, CategoryHazard, 0, 5},
	{KindRepairs, CategoryRemedy, 0, 6},
	{KindGasoline, CategoryRemedy, 0, 6},
	{KindSpareTire, CategoryRemedy, 0, 6},
	{KindEndOfLimit, CategoryRemedy, 0, 6},
	{KindRoll, CategoryRemedy, 0, 14},
	{KindDrivingAce, CategorySafety, 0, 1},
	{KindFuelTank, CategorySafety, 0, 1},
	{KindPunctureProof, CategorySafety, 0, 1},
	{KindRightOfWay, CategorySafety, 0, 1},
}

// DeckSize is the total number of cards in a full deck.
const DeckSize = 106

// RemedyFor maps each hazard to the remedy that cures it.
var RemedyFor = map[Kind]Kind{
	KindAccident:   KindRepairs,
	KindOutOfGas:   KindGasoline,
	KindFlatTire:   KindSpareTire,
	KindSpeedLimit: KindEndOfLimit,
	KindStop:       KindRoll,
}

// SafetyAgainst maps each hazard to the safety that grants immunity.
// RightOfWay covers both Stop and SpeedLimit.
var SafetyAgainst = map[Kind]Kind{
	KindAccident:   KindDrivingAce,
	KindOutOfGas:   KindFuelTank,
	KindFlatTire:   KindPunctureProof,
	KindSpeedLimit: KindRightOfWay,
	KindStop:       KindRightOfWay,
}

// HazardCuredBy maps each remedy back to the hazard it removes.
var HazardCuredBy = map[Kind]Kind{
	KindRepairs:    KindAccident,
	KindGasoline:   KindOutOfGas,
	KindSpareTire:  KindFlatTire,
	KindEndOfLimit: KindSpeedLimit,
	KindRoll:       KindStop,
}

// SafetyKinds lists the four permanent safety cards.
var SafetyKinds = []Kind{KindDrivingAce, KindFuelTank, KindPunctureProof, KindRightOfWay}

// IsBlockingHazard reports whether the kind occupies the battle slot and
// prevents distance plays. SpeedLimit is excluded: it lives in the speed
// pile and only caps card values.
func IsBlockingHazard(k Kind) bool {
	switch k {
	case KindAccident, KindOutOfGas, KindFlatTire, KindStop:
		return true
	default:
		return false
	}
}
