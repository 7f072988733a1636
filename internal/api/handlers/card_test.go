package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardduel/cardduel/internal/game"
)

func newCardRouter() *chi.Mux {
	h := NewCardHandler()
	r := chi.NewRouter()
	r.Get("/cards", h.ListCards)
	r.Get("/cards/{cardID}", h.GetCard)
	return r
}

func TestListCards(t *testing.T) {
	router := newCardRouter()

	req := httptest.NewRequest(http.MethodGet, "/cards", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []game.Card `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, game.CatalogSize)
}

func TestListCardsFilteredByCategory(t *testing.T) {
	router := newCardRouter()

	req := httptest.NewRequest(http.MethodGet, "/cards?category=rock", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []game.Card `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, game.PowersPerCategory)
	for _, card := range envelope.Data {
		assert.Equal(t, game.CategoryRock, card.Category)
	}
}

func TestListCardsUnknownCategory(t *testing.T) {
	router := newCardRouter()

	req := httptest.NewRequest(http.MethodGet, "/cards?category=lizard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCard(t *testing.T) {
	router := newCardRouter()

	req := httptest.NewRequest(http.MethodGet, "/cards/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data game.Card `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.ID)
}

func TestGetCardNotFound(t *testing.T) {
	router := newCardRouter()

	req := httptest.NewRequest(http.MethodGet, "/cards/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCardBadID(t *testing.T) {
	router := newCardRouter()

	req := httptest.NewRequest(http.MethodGet, "/cards/rocky", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
