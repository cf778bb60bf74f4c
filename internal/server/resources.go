package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/mindcare-go/internal/resources"
)

type sleepOptions struct {
	Hours   []string `json:"hours"`
	Default string   `json:"default"`
	Tip     string   `json:"tip"`
}

func registerResourceRoutes(r chi.Router) {
	r.Get("/resources/crisis", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, resources.CrisisContacts())
	})
	r.Get("/resources/moods", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, resources.Moods())
	})
	r.Get("/resources/help", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, resources.ChatHelp())
	})
	r.Get("/resources/exercises", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, resources.Exercises())
	})
	r.Get("/resources/exercises/{exerciseID}", handleGetExercise)
	r.Get("/resources/sleep", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, sleepOptions{
			Hours:   resources.SleepHours(),
			Default: resources.DefaultSleepHours,
			Tip:     resources.SleepTip,
		})
	})

	// check-ins are acknowledged, never stored
	r.Post("/checkins/mood", handleMoodCheckIn)
	r.Post("/checkins/sleep", handleSleepCheckIn)
}

func handleGetExercise(w http.ResponseWriter, r *http.Request) {
	e, ok := resources.ExerciseByID(chi.URLParam(r, "exerciseID"))
	if !ok {
		respondError(w, http.StatusNotFound, "exercise not found")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func handleMoodCheckIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Mood  string `json:"mood"`
		Notes string `json:"notes"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	entry, err := resources.NewMoodEntry(payload.Mood, payload.Notes)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func handleSleepCheckIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Hours string `json:"hours"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	entry, err := resources.NewSleepEntry(payload.Hours)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}
