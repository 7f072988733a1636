package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cardduel/cardduel/internal/api/response"
	"github.com/cardduel/cardduel/internal/game"
)

// CardHandler serves the static card catalog.
type CardHandler struct{}

// NewCardHandler creates a new CardHandler.
func NewCardHandler() *CardHandler {
	return &CardHandler{}
}

// ListCards returns the full catalog, optionally filtered by category.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	catalog := game.Catalog()

	if raw := r.URL.Query().Get("category"); raw != "" {
		category := game.Category(raw)
		if !category.Valid() {
			response.BadRequest(w, errors.New("unknown category: "+raw))
			return
		}
		filtered := make([]game.Card, 0, game.PowersPerCategory)
		for _, card := range catalog {
			if card.Category == category {
				filtered = append(filtered, card)
			}
		}
		catalog = filtered
	}

	response.Success(w, catalog)
}

// GetCard returns a single card by its numeric id.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "cardID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(w, errors.New("card id must be numeric"))
		return
	}

	card, ok := game.CardByID(id)
	if !ok {
		response.NotFound(w, errors.New("card "+raw+" not found"))
		return
	}

	response.Success(w, card)
}
