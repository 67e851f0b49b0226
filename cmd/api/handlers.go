package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/auth"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

type sessionStore interface {
	CreateSession(ctx context.Context, lectureID string) (string, error)
}

type preferenceStore interface {
	GetPreference(ctx context.Context, lectureID string) (models.AIPreference, bool, error)
	SavePreference(ctx context.Context, p models.AIPreference) error
}

type userStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (string, error)
}

// sessionsHandler starts a chat session for a lecture. /chat needs the
// returned id before it can persist any messages.
func sessionsHandler(st sessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			LectureID string `json:"lecture_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.LectureID) == "" {
			http.Error(w, "lecture_id required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := st.CreateSession(ctx, body.LectureID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"id": id}); err != nil {
			http.Error(w, "Failed to encode response", 500)
		}
	}
}

// preferencesHandler reads and writes the per-lecture AI preference record
// the url_content source retrieves from.
func preferencesHandler(st preferenceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			lectureID := r.URL.Query().Get("lecture_id")
			if lectureID == "" {
				http.Error(w, "missing query parameter lecture_id", http.StatusBadRequest)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			pref, found, err := st.GetPreference(ctx, lectureID)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if !found {
				http.Error(w, "no preference for lecture", http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(pref); err != nil {
				http.Error(w, "Failed to encode response", 500)
			}
		case http.MethodPut, http.MethodPost:
			var pref models.AIPreference
			if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			if strings.TrimSpace(pref.LectureID) == "" {
				http.Error(w, "lecture_id required", http.StatusBadRequest)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			if err := st.SavePreference(ctx, pref); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// bootstrapAdmin creates a portal login from an "email:password" pair and
// returns the new account id.
func bootstrapAdmin(ctx context.Context, users userStore, creds string) (string, error) {
	email, password, ok := strings.Cut(creds, ":")
	email = strings.TrimSpace(email)
	if !ok || email == "" || password == "" {
		return "", errors.New("expected email:password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	return users.CreateUser(ctx, email, hash)
}
