package game

import "fmt"

// Winner identifies which side of a resolution won.
type Winner string

const (
	WinnerA    Winner = "a"
	WinnerB    Winner = "b"
	WinnerDraw Winner = "draw"
)

// RoundResult is the outcome of comparing two played cards.
type RoundResult struct {
	Winner Winner
	CardA  Card
	CardB  Card
	Reason string
}

// Resolve compares two played cards. Same category is decided by power;
// different categories follow the rock > scissors > paper > rock cycle,
// regardless of power. Resolve is pure and symmetric: swapping the
// inputs swaps the winner and preserves draws.
func Resolve(a, b Card) RoundResult {
	if a.Category == b.Category {
		switch {
		case a.Power > b.Power:
			return RoundResult{Winner: WinnerA, CardA: a, CardB: b, Reason: "higher power"}
		case a.Power < b.Power:
			return RoundResult{Winner: WinnerB, CardA: a, CardB: b, Reason: "higher power"}
		default:
			return RoundResult{Winner: WinnerDraw, CardA: a, CardB: b, Reason: "equal power"}
		}
	}

	if beats[a.Category] == b.Category {
		return RoundResult{
			Winner: WinnerA,
			CardA:  a,
			CardB:  b,
			Reason: fmt.Sprintf("%s beats %s", a.Category, b.Category),
		}
	}
	return RoundResult{
		Winner: WinnerB,
		CardA:  a,
		CardB:  b,
		Reason: fmt.Sprintf("%s beats %s", b.Category, a.Category),
	}
}
