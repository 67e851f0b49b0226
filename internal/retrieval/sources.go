package retrieval

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/chunker"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

// fetchMaterials pulls the materials attached to the lecture record. A
// missing lecture is zero chunks, not an error.
func (s *Service) fetchMaterials(ctx context.Context, lectureID string) ([]candidate, error) {
	lec, found, err := s.Lectures.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var out []candidate
	for _, m := range lec.Materials {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		for _, chunk := range chunker.Split(m.Content, s.opts.ChunkSize) {
			out = append(out, candidate{
				content: chunk,
				source:  models.SourceLectureMaterial,
				ctype:   models.TypeDocument,
				info: map[string]string{
					"lectureName":  lec.Name,
					"materialName": m.Name,
					"lectureId":    lectureID,
				},
			})
		}
	}
	return out, nil
}

// fetchURLContent pulls previously extracted URL/video content from the
// lecture's AI-preference record, tolerating both the current array shape
// and the legacy single-object or bare-string shapes.
func (s *Service) fetchURLContent(ctx context.Context, lectureID string) ([]candidate, error) {
	pref, found, err := s.Prefs.GetPreference(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	items := normalizeExtractedContent(pref.ExtractedContent)
	if len(items) == 0 {
		return nil, nil
	}

	lectureName := s.lectureName(ctx, lectureID)

	var out []candidate
	for _, item := range items {
		if strings.TrimSpace(item.Content) == "" {
			continue
		}
		info := map[string]string{
			"lectureName": lectureName,
			"lectureId":   lectureID,
		}
		if item.URL != "" {
			info["url"] = item.URL
		}
		if item.Title != "" {
			info["title"] = item.Title
		}
		if item.ContentType != "" {
			info["contentType"] = item.ContentType
		}
		if item.ExtractedAt != "" {
			info["extractedAt"] = item.ExtractedAt
		}
		for _, chunk := range chunker.Split(item.Content, s.opts.ChunkSize) {
			out = append(out, candidate{
				content: chunk,
				source:  models.SourceURLContent,
				ctype:   models.TypeWebContent,
				info:    info,
			})
		}
	}
	return out, nil
}

// fetchUploads walks every chat session of the lecture, collecting the
// extracted text of message attachments.
func (s *Service) fetchUploads(ctx context.Context, lectureID string) ([]candidate, error) {
	sessions, err := s.Chats.ListSessions(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	lectureName := s.lectureName(ctx, lectureID)

	var out []candidate
	for _, sess := range sessions {
		for _, msg := range sess.Messages {
			for _, att := range msg.Attachments {
				if strings.TrimSpace(att.Content) == "" {
					continue
				}
				for _, chunk := range chunker.Split(att.Content, s.opts.ChunkSize) {
					out = append(out, candidate{
						content: chunk,
						source:  models.SourceUploadedFile,
						ctype:   models.TypeUploadedDocument,
						info: map[string]string{
							"lectureName":   lectureName,
							"fileName":      att.Name,
							"uploadedAt":    msg.Timestamp.Format(time.RFC3339),
							"chatSessionId": sess.ID,
							"lectureId":     lectureID,
						},
					})
				}
			}
		}
	}
	return out, nil
}

// lectureName looks up the lecture display name for provenance fields,
// falling back to empty when the record is unavailable.
func (s *Service) lectureName(ctx context.Context, lectureID string) string {
	lec, found, err := s.Lectures.GetLecture(ctx, lectureID)
	if err != nil || !found {
		return ""
	}
	return lec.Name
}

// normalizeExtractedContent maps whatever shape the stored extracted
// content has onto the current []ExtractedItem form. Two generations of
// records predate the array schema: a single object with the same fields,
// and a bare string holding the content directly.
func normalizeExtractedContent(raw json.RawMessage) []models.ExtractedItem {
	if len(raw) == 0 {
		return nil
	}

	var items []models.ExtractedItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}

	var single models.ExtractedItem
	if err := json.Unmarshal(raw, &single); err == nil && single.Content != "" {
		return []models.ExtractedItem{single}
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil && strings.TrimSpace(plain) != "" {
		return []models.ExtractedItem{{Content: plain}}
	}

	return nil
}
