package models

import (
	"encoding/json"
	"time"
)

// Source identifies which collaborator a retrieved chunk came from.
type Source string

const (
	SourceLectureMaterial Source = "lecture_material"
	SourceURLContent      Source = "url_content"
	SourceUploadedFile    Source = "uploaded_file"
)

// ContentType is the finer content-kind tag attached to a result.
type ContentType string

const (
	TypeDocument         ContentType = "document"
	TypeWebContent       ContentType = "web_content"
	TypeUploadedDocument ContentType = "uploaded_document"
)

// ScoredResult is one ranked chunk returned by the retrieval engine.
// SourceInfo carries provenance fields specific to the source kind and
// always includes the lecture id.
type ScoredResult struct {
	Content    string            `json:"content"`
	Source     Source            `json:"source"`
	SourceInfo map[string]string `json:"source_info"`
	Similarity float64           `json:"similarity"`
	Type       ContentType       `json:"type"`
}

// Material is one piece of content attached to a lecture.
type Material struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

type Lecture struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Materials []Material `json:"materials"`
	CreatedAt time.Time  `json:"created_at"`
}

// ExtractedItem is the current shape of one URL/video extraction record.
type ExtractedItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	ExtractedAt string `json:"extractedAt"`
}

// AIPreference holds the per-lecture AI configuration. ExtractedContent is
// kept raw because two historical schema generations exist on disk: the
// current []ExtractedItem array and a legacy single object or bare string.
type AIPreference struct {
	LectureID        string          `json:"lecture_id"`
	ExtractedContent json.RawMessage `json:"extracted_content"`
	AccessURL        string          `json:"access_url"`
}

// Attachment is a file uploaded into a chat message, with the text the
// extraction pipeline pulled out of it.
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type ChatSession struct {
	ID        string    `json:"id"`
	LectureID string    `json:"lecture_id"`
	Messages  []Message `json:"messages"`
}

// AdminUser is a portal login account.
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
