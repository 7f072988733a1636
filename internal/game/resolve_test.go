package game

import "testing"

func TestResolveCrossCategoryCycle(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Card
		winner Winner
		reason string
	}{
		{
			name:   "rock beats scissors regardless of power",
			a:      Card{ID: 1, Category: CategoryRock, Power: 1},
			b:      Card{ID: 18, Category: CategoryScissors, Power: 6},
			winner: WinnerA,
			reason: "rock beats scissors",
		},
		{
			name:   "scissors beats paper",
			a:      Card{ID: 13, Category: CategoryScissors, Power: 2},
			b:      Card{ID: 7, Category: CategoryPaper, Power: 5},
			winner: WinnerA,
			reason: "scissors beats paper",
		},
		{
			name:   "paper beats rock",
			a:      Card{ID: 7, Category: CategoryPaper, Power: 1},
			b:      Card{ID: 6, Category: CategoryRock, Power: 6},
			winner: WinnerA,
			reason: "paper beats rock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Resolve(tt.a, tt.b)
			if result.Winner != tt.winner {
				t.Errorf("Resolve(%v, %v) winner = %v, want %v", tt.a, tt.b, result.Winner, tt.winner)
			}
			if result.Reason != tt.reason {
				t.Errorf("Resolve(%v, %v) reason = %q, want %q", tt.a, tt.b, result.Reason, tt.reason)
			}

			// Swapping inputs must swap the winner and keep the reason.
			swapped := Resolve(tt.b, tt.a)
			if swapped.Winner != WinnerB {
				t.Errorf("Resolve(%v, %v) winner = %v, want %v", tt.b, tt.a, swapped.Winner, WinnerB)
			}
			if swapped.Reason != tt.reason {
				t.Errorf("swapped reason = %q, want %q", swapped.Reason, tt.reason)
			}
		})
	}
}

// TestResolveCycleIsStrict verifies the beats-relation is a strict 3-cycle:
// for every pair of distinct categories exactly one direction wins.
func TestResolveCycleIsStrict(t *testing.T) {
	for _, catA := range Categories {
		for _, catB := range Categories {
			if catA == catB {
				continue
			}
			a := Card{Category: catA, Power: 3}
			b := Card{Category: catB, Power: 3}

			forward := Resolve(a, b)
			backward := Resolve(b, a)

			if forward.Winner == WinnerDraw || backward.Winner == WinnerDraw {
				t.Fatalf("cross-category resolution %s vs %s produced a draw", catA, catB)
			}
			if (forward.Winner == WinnerA) == (backward.Winner == WinnerA) {
				t.Errorf("beats relation not antisymmetric for %s vs %s", catA, catB)
			}
		}
	}
}

func TestResolveSameCategory(t *testing.T) {
	high := Card{ID: 5, Category: CategoryRock, Power: 5}
	low := Card{ID: 2, Category: CategoryRock, Power: 2}

	if got := Resolve(high, low); got.Winner != WinnerA || got.Reason != "higher power" {
		t.Errorf("Resolve(high, low) = %v %q, want a wins by higher power", got.Winner, got.Reason)
	}
	if got := Resolve(low, high); got.Winner != WinnerB {
		t.Errorf("Resolve(low, high) winner = %v, want %v", got.Winner, WinnerB)
	}

	tie := Resolve(
		Card{ID: 4, Category: CategoryRock, Power: 4},
		Card{ID: 4, Category: CategoryRock, Power: 4},
	)
	if tie.Winner != WinnerDraw || tie.Reason != "equal power" {
		t.Errorf("equal power should draw, got %v %q", tie.Winner, tie.Reason)
	}
}

func TestResolveSameCategoryAllPairsSymmetric(t *testing.T) {
	for p1 := 1; p1 <= PowersPerCategory; p1++ {
		for p2 := 1; p2 <= PowersPerCategory; p2++ {
			a := Card{Category: CategoryPaper, Power: p1}
			b := Card{Category: CategoryPaper, Power: p2}

			forward := Resolve(a, b)
			backward := Resolve(b, a)

			switch {
			case p1 == p2:
				if forward.Winner != WinnerDraw || backward.Winner != WinnerDraw {
					t.Errorf("power %d vs %d should draw both ways", p1, p2)
				}
			case p1 > p2:
				if forward.Winner != WinnerA || backward.Winner != WinnerB {
					t.Errorf("power %d vs %d: higher power must win both ways", p1, p2)
				}
			}
		}
	}
}
