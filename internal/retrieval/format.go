package retrieval

import (
	"fmt"
	"strings"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

const (
	contextHeader = "=== RELEVANT LECTURE CONTEXT ==="
	contextFooter = "=== END OF LECTURE CONTEXT ==="
	contextInstruction = "Use the material above to answer the question. " +
		"If the question cannot be answered from this material, say so explicitly."
)

// FormatContext renders ranked results into the context block injected
// ahead of the user's message. Empty input renders to an empty string so
// callers can skip augmentation entirely.
func FormatContext(results []models.ScoredResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	sb.WriteString("\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "[Source %d: %s]\n%s\n\n", i+1, sourceLabel(r), r.Content)
	}
	sb.WriteString(contextFooter)
	sb.WriteString("\n")
	sb.WriteString(contextInstruction)
	return sb.String()
}

// sourceLabel derives the human-readable attribution for one result.
func sourceLabel(r models.ScoredResult) string {
	switch r.Source {
	case models.SourceLectureMaterial:
		return r.SourceInfo["materialName"]
	case models.SourceUploadedFile:
		return r.SourceInfo["fileName"]
	default:
		return r.SourceInfo["url"]
	}
}
