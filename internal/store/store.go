package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

// Store provides methods to interact with the database.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store instance connected to the given database URL.
func New(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Migrate applies necessary database migrations and schema setup.
func (s *Store) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS lectures (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE TABLE IF NOT EXISTS materials (
  id         TEXT PRIMARY KEY,
  lecture_id TEXT NOT NULL REFERENCES lectures(id) ON DELETE CASCADE,
  name       TEXT NOT NULL,
  content    TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS materials_lecture_name_uidx
  ON materials (lecture_id, name);

CREATE TABLE IF NOT EXISTS ai_preferences (
  lecture_id        TEXT PRIMARY KEY REFERENCES lectures(id) ON DELETE CASCADE,
  extracted_content JSONB,
  access_url        TEXT NOT NULL DEFAULT '',
  updated_at        TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE TABLE IF NOT EXISTS chat_sessions (
  id         TEXT PRIMARY KEY,
  lecture_id TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE INDEX IF NOT EXISTS chat_sessions_lecture_idx
  ON chat_sessions (lecture_id);

CREATE TABLE IF NOT EXISTS chat_messages (
  id          BIGSERIAL PRIMARY KEY,
  session_id  TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
  role        TEXT NOT NULL,
  content     TEXT NOT NULL DEFAULT '',
  attachments JSONB,
  created_at  TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE INDEX IF NOT EXISTS chat_messages_session_idx
  ON chat_messages (session_id);

CREATE TABLE IF NOT EXISTS admin_users (
  id            TEXT PRIMARY KEY,
  email         TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    TIMESTAMP WITH TIME ZONE DEFAULT now()
);
`
	_, err := s.pool.Exec(ctx, q)
	return err
}

// CreateLecture inserts a lecture and returns its generated id.
func (s *Store) CreateLecture(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lectures (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		return "", fmt.Errorf("create lecture: %w", err)
	}
	return id, nil
}

// GetLecture returns the lecture with its materials. The bool reports
// whether the lecture exists.
func (s *Store) GetLecture(ctx context.Context, id string) (models.Lecture, bool, error) {
	var lec models.Lecture
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM lectures WHERE id = $1`, id).
		Scan(&lec.ID, &lec.Name, &lec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Lecture{}, false, nil
		}
		return models.Lecture{}, false, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, content FROM materials WHERE lecture_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return models.Lecture{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Content); err != nil {
			return models.Lecture{}, false, err
		}
		lec.Materials = append(lec.Materials, m)
	}
	return lec, true, rows.Err()
}

// ListLectures returns all lectures without their materials.
func (s *Store) ListLectures(ctx context.Context) ([]models.Lecture, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at FROM lectures ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lecture
	for rows.Next() {
		var lec models.Lecture
		if err := rows.Scan(&lec.ID, &lec.Name, &lec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, lec)
	}
	return out, rows.Err()
}

// UpsertMaterial inserts or replaces a material by (lecture, name).
func (s *Store) UpsertMaterial(ctx context.Context, lectureID, name, content string) error {
	const q = `
		INSERT INTO materials (id, lecture_id, name, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lecture_id, name) DO UPDATE SET
			content = EXCLUDED.content;`
	_, err := s.pool.Exec(ctx, q, uuid.NewString(), lectureID, name, content)
	if err != nil {
		return fmt.Errorf("upsert material %q: %w", name, err)
	}
	return nil
}

// GetPreference returns the AI-preference record for a lecture. The raw
// extracted content is handed back exactly as persisted so callers can
// normalize across schema generations.
func (s *Store) GetPreference(ctx context.Context, lectureID string) (models.AIPreference, bool, error) {
	var p models.AIPreference
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT lecture_id, extracted_content, access_url FROM ai_preferences WHERE lecture_id = $1`,
		lectureID).Scan(&p.LectureID, &raw, &p.AccessURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AIPreference{}, false, nil
		}
		return models.AIPreference{}, false, err
	}
	p.ExtractedContent = json.RawMessage(raw)
	return p, true, nil
}

// SavePreference upserts the AI-preference record for a lecture.
func (s *Store) SavePreference(ctx context.Context, p models.AIPreference) error {
	const q = `
		INSERT INTO ai_preferences (lecture_id, extracted_content, access_url, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (lecture_id) DO UPDATE SET
			extracted_content = EXCLUDED.extracted_content,
			access_url        = EXCLUDED.access_url,
			updated_at        = now();`
	_, err := s.pool.Exec(ctx, q, p.LectureID, []byte(p.ExtractedContent), p.AccessURL)
	return err
}

// CreateSession starts a chat session for a lecture.
func (s *Store) CreateSession(ctx context.Context, lectureID string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (id, lecture_id) VALUES ($1, $2)`, id, lectureID)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// AppendMessage stores one message, attachments included, on a session.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	var atts []byte
	if len(msg.Attachments) > 0 {
		b, err := json.Marshal(msg.Attachments)
		if err != nil {
			return fmt.Errorf("marshal attachments: %w", err)
		}
		atts = b
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (session_id, role, content, attachments, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sessionID, msg.Role, msg.Content, atts, ts)
	return err
}

// ListSessions returns every chat session of a lecture with its messages
// in chronological order.
func (s *Store) ListSessions(ctx context.Context, lectureID string) ([]models.ChatSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM chat_sessions WHERE lecture_id = $1 ORDER BY created_at, id`, lectureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChatSession
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, models.ChatSession{ID: id, LectureID: lectureID})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		msgs, err := s.listMessages(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Messages = msgs
	}
	return sessions, nil
}

func (s *Store) listMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content, attachments, created_at
		 FROM chat_messages WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		var atts []byte
		if err := rows.Scan(&m.Role, &m.Content, &atts, &m.Timestamp); err != nil {
			return nil, err
		}
		if len(atts) > 0 {
			if err := json.Unmarshal(atts, &m.Attachments); err != nil {
				return nil, fmt.Errorf("unmarshal attachments: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CreateUser inserts a portal admin account.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admin_users (id, email, password_hash) VALUES ($1, $2, $3)`,
		id, email, passwordHash)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the admin account for an email, if any.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.AdminUser, bool, error) {
	var u models.AdminUser
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM admin_users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AdminUser{}, false, nil
		}
		return models.AdminUser{}, false, err
	}
	return u, true, nil
}

// Ping checks the database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
