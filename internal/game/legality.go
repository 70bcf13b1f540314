package game

import "fmt"

// LegalityResult represents the outcome of a legality check.
type LegalityResult struct {
	Legal  bool
	Reason string
}

func legal() LegalityResult {
	return LegalityResult{Legal: true}
}

func illegal(format string, args ...interface{}) LegalityResult {
	return LegalityResult{Legal: false, Reason: fmt.Sprintf(format, args...)}
}

// CanPlayDistance reports whether the player is allowed to play distance
// cards at all: a Roll must be active and no blocking hazard may occupy
// the battle slot.
func CanPlayDistance(p *PlayerState) bool {
	status, _ := p.Battle()
	return status == BattleMoving
}

// HasActiveSpeedLimit reports whether the player is under an unprotected
// speed limit. Right of Way neutralizes any speed limits on the pile.
func HasActiveSpeedLimit(p *PlayerState) bool {
	if p.HasSafety(KindRightOfWay) {
		return false
	}
	for _, c := range p.SpeedPile {
		if c.Kind == KindSpeedLimit {
			return true
		}
	}
	return false
}

// DistanceWithinSpeedLimit checks the card value against an active speed
// limit.
func DistanceWithinSpeedLimit(p *PlayerState, card Card) LegalityResult {
	if HasActiveSpeedLimit(p) && card.Value > SpeedLimitMax {
		return illegal("Cannot play distance card that exceeds the speed limit of %d!", SpeedLimitMax)
	}
	return legal()
}

// DistanceWithinMileageCap checks that the play would not overshoot the
// winning distance.
func DistanceWithinMileageCap(p *PlayerState, card Card) LegalityResult {
	if p.Mileage+card.Value > WinningDistance {
		return illegal("This distance card would exceed the %d-mile limit!", WinningDistance)
	}
	return legal()
}

// CheckDistancePlay combines every distance-card predicate.
func CheckDistancePlay(p *PlayerState, card Card) LegalityResult {
	if !CanPlayDistance(p) {
		return illegal("Cannot play distance card without a Roll card or with active hazards!")
	}
	if res := DistanceWithinSpeedLimit(p, card); !res.Legal {
		return res
	}
	return DistanceWithinMileageCap(p, card)
}

// HasImmunityAgainst reports whether the player's safety pile blocks the
// given hazard kind.
func HasImmunityAgainst(p *PlayerState, hazard Kind) bool {
	safety, ok := SafetyAgainst[hazard]
	if !ok {
		return false
	}
	return p.HasSafety(safety)
}

// CanPlayHazard validates a hazard play against a target. The target must
// be an opponent and must not hold the immunizing safety.
func CanPlayHazard(actor, target *PlayerState, card Card) LegalityResult {
	if target.ID == actor.ID {
		return illegal("Cannot play hazard on yourself!")
	}
	if HasImmunityAgainst(target, card.Kind) {
		return illegal("%s has immunity against %s", target.Name, card.Kind)
	}
	return legal()
}

// CanApplyRemedy reports whether the remedy kind matches a hazard
// currently affecting the player. Roll is also playable on an empty battle
// pile, the initial "start moving" case.
func CanApplyRemedy(p *PlayerState, remedy Kind) bool {
	switch remedy {
	case KindRepairs:
		return p.HasBattleKind(KindAccident)
	case KindGasoline:
		return p.HasBattleKind(KindOutOfGas)
	case KindSpareTire:
		return p.HasBattleKind(KindFlatTire)
	case KindEndOfLimit:
		for _, c := range p.SpeedPile {
			if c.Kind == KindSpeedLimit {
				return true
			}
		}
		return false
	case KindRoll:
		return p.HasBattleKind(KindStop) || len(p.BattlePile) == 0
	default:
		return false
	}
}

// CanPlayRemedy validates a remedy play on self.
func CanPlayRemedy(p *PlayerState, card Card) LegalityResult {
	if !CanApplyRemedy(p, card.Kind) {
		return illegal("This remedy is not applicable!")
	}
	return legal()
}

// CanPlaySafety validates a safety play. Safeties are always legal on
// self and never playable on an opponent.
func CanPlaySafety(actor, target *PlayerState) LegalityResult {
	if target.ID != actor.ID {
		return illegal("Cannot play safety card on other players!")
	}
	return legal()
}
