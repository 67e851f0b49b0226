package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/pflag"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/ai"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/auth"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/config"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/retrieval"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/scorer"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/store"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

type chatRequest struct {
	LectureID string           `json:"lecture_id"`
	SessionID string           `json:"session_id,omitempty"`
	Messages  []ai.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Reply   string                `json:"reply"`
	Sources []models.ScoredResult `json:"sources,omitempty"`
}

func main() {
	// Create flagset for configuration
	fs := pflag.NewFlagSet("belto-api", pflag.ExitOnError)
	createAdmin := fs.String("create-admin", "", "Create an admin login (email:password) and exit")

	// Load configuration
	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Set up logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("provider", cfg.Provider).Str("log_level", cfg.LogLevel).Bool("auth_enabled", cfg.Auth.Enabled).Msg("starting belto admin api")

	// Create AI client configuration
	var clientConfig *ai.ClientConfig
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		clientConfig = &ai.ClientConfig{
			APIKey:    cfg.APIKey,
			ChatModel: cfg.ChatModel,
			ProjectID: cfg.ProjectID,
			Provider:  ai.ProviderOpenAI,
		}
	case "gemini", "google":
		clientConfig = &ai.ClientConfig{
			APIKey:    cfg.APIKey,
			ChatModel: cfg.ChatModel,
			ProjectID: cfg.ProjectID,
			Location:  cfg.Location,
			Provider:  ai.ProviderGemini,
		}
	case "stub":
		clientConfig = &ai.ClientConfig{
			Provider: ai.ProviderStub,
		}
	default:
		log.Fatalf("unsupported provider: %s", cfg.Provider)
	}

	auth.InitializeAuth(cfg.Auth.JwtSecret, cfg.Auth.Enabled)

	ctx := context.Background()
	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if *createAdmin != "" {
		id, err := bootstrapAdmin(ctx, st, *createAdmin)
		if err != nil {
			log.Fatalf("Failed to create admin login: %v", err)
		}
		logger.Info().Str("id", id).Msg("admin login created")
		return
	}

	llm, err := ai.NewClient(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	svc := retrieval.NewService(st, st, st, scorer.New(scorer.DefaultConfig()), retrieval.Options{
		MaxResults:     cfg.Retrieval.MaxResults,
		MinScore:       cfg.Retrieval.MinScore,
		ChunkSize:      cfg.Retrieval.ChunkSize,
		AdapterTimeout: time.Duration(cfg.Retrieval.AdapterTimeoutMS) * time.Millisecond,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// Auth status endpoint (always available)
	mux.HandleFunc("/auth/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]bool{"enabled": auth.IsAuthEnabled()}); err != nil {
			http.Error(w, "Failed to encode response", 500)
		}
	})

	if auth.IsAuthEnabled() {
		log.Println("Authentication is ENABLED")

		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}

			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			user, err := auth.Login(ctx, st, body.Email, body.Password)
			if err != nil {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}

			token, err := auth.GenerateJWT(user)
			if err != nil {
				http.Error(w, "Failed to generate token", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     "auth_token",
				Value:    token,
				Path:     "/",
				MaxAge:   86400, // 24 hours
				HttpOnly: true,
				Secure:   strings.HasPrefix(r.Header.Get("X-Forwarded-Proto"), "https"),
				SameSite: http.SameSiteLaxMode,
			})

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(auth.AuthResponse{User: *user, Token: token}); err != nil {
				http.Error(w, "Failed to encode response", 500)
			}
		})

		mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			var tokenString string
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			} else {
				if cookie, err := r.Cookie("auth_token"); err == nil {
					tokenString = cookie.Value
				}
			}

			if tokenString == "" {
				http.Error(w, "No authentication token", http.StatusUnauthorized)
				return
			}

			user, err := auth.ValidateJWT(tokenString)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(auth.AuthResponse{User: *user, Token: tokenString}); err != nil {
				http.Error(w, "Failed to encode response", 500)
			}
		})

		mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:   "auth_token",
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			w.WriteHeader(http.StatusOK)
		})
	} else {
		log.Println("Authentication is DISABLED - running in open mode")
	}

	mux.HandleFunc("/lectures", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		switch r.Method {
		case http.MethodGet:
			lectures, err := st.ListLectures(ctx)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if lectures == nil {
				lectures = []models.Lecture{}
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(lectures); err != nil {
				http.Error(w, "Failed to encode lectures", 500)
			}
		case http.MethodPost:
			var body struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Name) == "" {
				http.Error(w, "lecture name required", http.StatusBadRequest)
				return
			}
			id, err := st.CreateLecture(ctx, body.Name)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(map[string]string{"id": id}); err != nil {
				http.Error(w, "Failed to encode response", 500)
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.HandleFunc("/sessions", auth.OptionalAuthMiddleware(sessionsHandler(st)))
	mux.HandleFunc("/preferences", auth.OptionalAuthMiddleware(preferencesHandler(st)))

	mux.HandleFunc("/retrieve", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		q := r.URL.Query().Get("q")
		lectureID := r.URL.Query().Get("lecture_id")
		k := cfg.Retrieval.MaxResults
		if v := r.URL.Query().Get("k"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				k = n
			}
		}
		if q == "" {
			http.Error(w, "missing query parameter q", http.StatusBadRequest)
			return
		}
		if lectureID == "" {
			http.Error(w, "missing query parameter lecture_id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		res := svc.Retrieve(ctx, q, lectureID, k)

		// never an empty body
		w.Header().Set("Content-Type", "application/json")
		if res == nil {
			if _, err := w.Write([]byte("[]")); err != nil {
				http.Error(w, "Failed to write response", http.StatusInternalServerError)
				return
			}
		} else {
			for i := range res {
				if math.IsNaN(res[i].Similarity) || math.IsInf(res[i].Similarity, 0) {
					res[i].Similarity = 0
				}
			}
			if err := json.NewEncoder(w).Encode(res); err != nil {
				log.Printf("failed to encode response: %v", err)
				_, _ = w.Write([]byte("[]"))
			}
		}

		hlog.FromRequest(r).Info().Str("path", "/retrieve").Str("q", q).Str("lecture_id", lectureID).Int("k", k).Dur("dur", time.Since(start)).Msg("served")
	}))

	mux.HandleFunc("/chat", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.LectureID == "" || len(req.Messages) == 0 {
			http.Error(w, "lecture_id and messages are required", http.StatusBadRequest)
			return
		}

		last := -1
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == "user" {
				last = i
				break
			}
		}
		if last == -1 {
			http.Error(w, "no user message to answer", http.StatusBadRequest)
			return
		}
		question := req.Messages[last].Content

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		// Best-effort augmentation: empty results simply mean the model
		// answers without lecture context.
		results := svc.Retrieve(ctx, question, req.LectureID, cfg.Retrieval.MaxResults)
		if ragContext := retrieval.FormatContext(results); ragContext != "" {
			req.Messages[last].Content = ragContext + "\n\n" + question
		}

		reply, err := llm.Complete(ctx, req.Messages)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("lecture_id", req.LectureID).Msg("llm backend failed")
			http.Error(w, "chat backend unavailable", http.StatusBadGateway)
			return
		}

		if req.SessionID != "" {
			userMsg := models.Message{Role: "user", Content: question, Timestamp: time.Now()}
			if err := st.AppendMessage(ctx, req.SessionID, userMsg); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("failed to persist user message")
			}
			botMsg := models.Message{Role: "assistant", Content: reply, Timestamp: time.Now()}
			if err := st.AppendMessage(ctx, req.SessionID, botMsg); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("failed to persist assistant message")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(chatResponse{Reply: reply, Sources: results}); err != nil {
			http.Error(w, "Failed to encode response", 500)
		}
	}))

	handler := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)

	address := fmt.Sprintf(":%d", cfg.Port)
	s := &http.Server{Addr: address, Handler: handler}
	logger.Info().Str("addr", s.Addr).Msg("api server listening")
	log.Fatal(s.ListenAndServe())
}
