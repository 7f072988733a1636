package game

import (
	"fmt"
	"math/rand"
)

// ErrConfiguration indicates an impossible deck/hand configuration.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("deck configuration error: %s", e.Reason)
}

// BuildDeck returns the full catalog permuted by the given seed.
// The same seed always yields the same ordering, so a match can be
// replayed from its persisted seed.
func BuildDeck(seed int64) []Card {
	deck := Catalog()
	r := rand.New(rand.NewSource(seed))

	// Fisher-Yates
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Deal splits the deck into two disjoint hands of handSize cards each,
// plus the undealt remainder. It fails when the deck cannot supply two
// full hands.
func Deal(deck []Card, handSize int) (hand1, hand2, remainder []Card, err error) {
	if handSize < 1 {
		return nil, nil, nil, &ErrConfiguration{Reason: fmt.Sprintf("hand size %d must be positive", handSize)}
	}
	if 2*handSize > len(deck) {
		return nil, nil, nil, &ErrConfiguration{
			Reason: fmt.Sprintf("deck of %d cards cannot deal two hands of %d", len(deck), handSize),
		}
	}

	hand1 = append([]Card(nil), deck[:handSize]...)
	hand2 = append([]Card(nil), deck[handSize:2*handSize]...)
	remainder = append([]Card(nil), deck[2*handSize:]...)
	return hand1, hand2, remainder, nil
}
