package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BeltoAI/Belto-Admin-Updated-sub000/internal/scorer"
	"github.com/BeltoAI/Belto-Admin-Updated-sub000/pkg/models"
)

// LectureStore provides read access to lecture records and their materials.
type LectureStore interface {
	GetLecture(ctx context.Context, id string) (models.Lecture, bool, error)
}

// PreferenceStore provides read access to per-lecture AI preferences.
type PreferenceStore interface {
	GetPreference(ctx context.Context, lectureID string) (models.AIPreference, bool, error)
}

// ChatStore provides read access to the chat sessions of a lecture.
type ChatStore interface {
	ListSessions(ctx context.Context, lectureID string) ([]models.ChatSession, error)
}

// Options tunes the aggregator. Zero values fall back to the defaults the
// platform has been running with; treat the threshold and boosts as
// starting points, not calibrated truth.
type Options struct {
	MaxResults     int           // default 5
	MinScore       float64       // default 0.02, results must score strictly above it
	ChunkSize      int           // default 500
	AdapterTimeout time.Duration // default 3s per source
}

func (o *Options) setDefaults() {
	if o.MaxResults <= 0 {
		o.MaxResults = 5
	}
	if o.MinScore == 0 {
		o.MinScore = 0.02
	}
	if o.AdapterTimeout <= 0 {
		o.AdapterTimeout = 3 * time.Second
	}
}

// Service gathers candidate chunks from the three content sources, scores
// them against the query and returns the top results. It holds no mutable
// state between calls.
type Service struct {
	Lectures LectureStore
	Prefs    PreferenceStore
	Chats    ChatStore

	scorer *scorer.Scorer
	opts   Options
}

// NewService creates a retrieval service over the given stores.
func NewService(lectures LectureStore, prefs PreferenceStore, chats ChatStore, sc *scorer.Scorer, opts Options) *Service {
	opts.setDefaults()
	if sc == nil {
		sc = scorer.New(scorer.DefaultConfig())
	}
	return &Service{
		Lectures: lectures,
		Prefs:    prefs,
		Chats:    chats,
		scorer:   sc,
		opts:     opts,
	}
}

// candidate is an unscored chunk plus its provenance.
type candidate struct {
	content string
	source  models.Source
	ctype   models.ContentType
	info    map[string]string
}

// Retrieve returns up to maxResults chunks relevant to query, ordered by
// descending similarity. Empty query or lecture id yields an empty slice.
// Retrieval is best-effort enrichment: adapter failures are logged and the
// call degrades to whatever the other sources produced. It never returns
// an error and never panics out.
func (s *Service) Retrieve(ctx context.Context, query, lectureID string, maxResults int) (results []models.ScoredResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("lecture_id", lectureID).Msg("retrieval panicked, returning no context")
			results = nil
		}
	}()

	if query == "" || lectureID == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = s.opts.MaxResults
	}

	candidates := s.gather(ctx, lectureID)

	scored := make([]models.ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		sim := s.scorer.Score(query, c.content)
		if sim <= s.opts.MinScore {
			continue
		}
		scored = append(scored, models.ScoredResult{
			Content:    c.content,
			Source:     c.source,
			SourceInfo: c.info,
			Similarity: sim,
			Type:       c.ctype,
		})
	}

	// Stable sort keeps discovery order (materials, url content, uploads)
	// on exact ties, which makes repeated calls reproducible.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

// gather fans out over the three source adapters concurrently. Each
// adapter runs under its own timeout and delivers into its own buffered
// channel; the join selects that channel against the deadline, so an
// adapter that ignores its context is abandoned rather than waited on.
// A failed, hung or abandoned adapter contributes zero chunks.
func (s *Service) gather(ctx context.Context, lectureID string) []candidate {
	type adapter struct {
		name  string
		fetch func(ctx context.Context, lectureID string) ([]candidate, error)
	}
	adapters := []adapter{
		{name: "lecture_materials", fetch: s.fetchMaterials},
		{name: "url_content", fetch: s.fetchURLContent},
		{name: "uploaded_files", fetch: s.fetchUploads},
	}

	// Buffered so a late adapter can still deliver after the join has
	// moved on; the result is simply dropped with the channel.
	results := make([]chan []candidate, len(adapters))
	for i := range results {
		results[i] = make(chan []candidate, 1)
	}

	for i, a := range adapters {
		go func(a adapter, out chan<- []candidate) {
			var chunks []candidate
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("adapter", a.name).Msg("source adapter panicked")
					chunks = nil
				}
				out <- chunks
			}()

			actx, cancel := context.WithTimeout(ctx, s.opts.AdapterTimeout)
			defer cancel()

			var err error
			chunks, err = a.fetch(actx, lectureID)
			if err != nil {
				log.Warn().Err(err).Str("adapter", a.name).Str("lecture_id", lectureID).Msg("source adapter failed, skipping")
				chunks = nil
			}
		}(a, results[i])
	}

	// All adapters started together, so one shared deadline bounds the
	// whole join. Indexed slots preserve the source discovery order
	// regardless of which goroutine finishes first.
	jctx, cancel := context.WithTimeout(ctx, s.opts.AdapterTimeout)
	defer cancel()

	gathered := make([][]candidate, len(adapters))
	for i := range adapters {
		select {
		case gathered[i] = <-results[i]:
		case <-jctx.Done():
			log.Warn().Str("adapter", adapters[i].name).Str("lecture_id", lectureID).Msg("source adapter timed out, skipping")
		}
	}

	var out []candidate
	for _, g := range gathered {
		out = append(out, g...)
	}
	return out
}
