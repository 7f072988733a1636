// Package game implements the card duel rules: the fixed card catalog,
// seeded deck construction, dealing, and round resolution.
package game

// Category is the rock/paper/scissors class of a card.
type Category string

const (
	CategoryRock     Category = "rock"
	CategoryPaper    Category = "paper"
	CategoryScissors Category = "scissors"
)

// Categories lists all card categories in catalog order.
var Categories = []Category{CategoryRock, CategoryPaper, CategoryScissors}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRock, CategoryPaper, CategoryScissors:
		return true
	}
	return false
}

// beats maps each category to the category it defeats.
var beats = map[Category]Category{
	CategoryRock:     CategoryScissors,
	CategoryScissors: CategoryPaper,
	CategoryPaper:    CategoryRock,
}

// Card is an immutable catalog entry.
type Card struct {
	ID       int      `json:"id"`
	Category Category `json:"category"`
	Power    int      `json:"power"`
}

// PowersPerCategory is the number of power values each category carries.
const PowersPerCategory = 6

// catalog is the fixed 18-card set: powers 1..6 in each category.
// Card IDs are assigned sequentially and never change.
var catalog = buildCatalog()

func buildCatalog() []Card {
	cards := make([]Card, 0, len(Categories)*PowersPerCategory)
	id := 1
	for _, cat := range Categories {
		for power := 1; power <= PowersPerCategory; power++ {
			cards = append(cards, Card{ID: id, Category: cat, Power: power})
			id++
		}
	}
	return cards
}

// Catalog returns a copy of the full card catalog.
func Catalog() []Card {
	out := make([]Card, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogSize is the number of cards in the catalog.
const CatalogSize = 3 * PowersPerCategory

// CardByID looks up a catalog card by its ID.
func CardByID(id int) (Card, bool) {
	if id < 1 || id > len(catalog) {
		return Card{}, false
	}
	return catalog[id-1], true
}
