package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"pivoLogAPI/internal/achievement"
	"pivoLogAPI/internal/entry"
	"pivoLogAPI/middleware"
	"pivoLogAPI/services"
)

type EntryHandler struct {
	entryService       *services.EntryService
	achievementService *services.AchievementService
}

func NewEntryHandler(entryService *services.EntryService, achievementService *services.AchievementService) *EntryHandler {
	return &EntryHandler{
		entryService:       entryService,
		achievementService: achievementService,
	}
}

type quickAddResponse struct {
	Entry         *entry.Entry             `json:"entry"`
	NewlyUnlocked []achievement.Definition `json:"newly_unlocked"`
}

// QuickAdd logs a consumption and returns the entry together with any
// achievements the entry unlocked.
func (h *EntryHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req entry.QuickAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.entryService.QuickAdd(ctx, userID, &req, time.Now())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	newly, err := h.achievementService.CheckAndUnlock(ctx, userID)
	if err != nil {
		// The entry is already saved; a failed achievement pass must not
		// turn the response into an error.
		log.Printf("achievement check failed for %s: %v", userID, err)
		newly = nil
	}
	if newly == nil {
		newly = []achievement.Definition{}
	}

	respondWithJSON(w, http.StatusCreated, quickAddResponse{Entry: e, NewlyUnlocked: newly})
}

func (h *EntryHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.entryService.GetToday(ctx, userID, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch today's entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	if err := h.entryService.Delete(ctx, userID, entryID); err != nil {
		respondWithError(w, http.StatusNotFound, "Entry not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *EntryHandler) SearchBeers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	search := r.URL.Query().Get("q")
	if search == "" {
		respondWithError(w, http.StatusBadRequest, "Search query parameter 'q' is required")
		return
	}

	beers, err := h.entryService.SearchBeers(ctx, search)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to search beers")
		return
	}

	respondWithJSON(w, http.StatusOK, beers)
}
