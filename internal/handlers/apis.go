package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// HandleCreateRoom hands out a fresh race id. The room itself is created
// lazily on the first websocket join.
func HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raceID := "race_0x" + uuid.New().String()[:8]
	Log.Info("race id issued", "room", raceID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"raceId": raceID,
		"status": "created",
	})
}

// HandleCheckRoom reports whether a race id currently has a live room.
func HandleCheckRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raceID := r.URL.Query().Get("race_id")
	if raceID == "" {
		http.Error(w, "Missing race_id", http.StatusBadRequest)
		return
	}

	_, exists := Registry.Get(raceID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"exists": exists,
	})
}
