package scorer

import "strings"

// Config holds the curated keyword and intent lists plus boost magnitudes.
// The lists are static configuration: build one at startup (usually
// DefaultConfig) and treat it as immutable afterwards.
type Config struct {
	// DomainKeywords reward partial/stemmed matches that exact token
	// overlap misses. Matching is substring in either direction.
	DomainKeywords []string
	// Intents map trigger words in the query to answer vocabulary
	// expected in the text.
	Intents []Intent

	KeywordBoost float64 // per matching query token
	ExactBoost   float64 // full query appears verbatim in text
}

// Intent is one query-pattern heuristic: if the query contains any trigger
// and the text contains any answer token, Boost is added once.
type Intent struct {
	Triggers []string
	Answers  []string
	Boost    float64
}

// DefaultConfig returns the keyword and intent lists tuned for the
// platform's security-education content.
func DefaultConfig() Config {
	return Config{
		DomainKeywords: []string{
			"phishing", "evilginx", "evilginx2", "cybersecurity", "security",
			"authentication", "credential", "credentials", "malware",
			"attack", "exploit", "hacking", "haxpert", "rishav",
			"tutorial", "lecture", "assignment", "quiz", "belto",
		},
		Intents: []Intent{
			{
				Triggers: []string{"creator", "who", "author", "made"},
				Answers:  []string{"rishav", "haxpert", "cyber-haxpert", "created", "creator", "founder"},
				Boost:    0.4,
			},
			{
				Triggers: []string{"tool", "tools", "mentioned", "demonstrated"},
				Answers:  []string{"evilginx", "evilginx2", "tool", "tools", "framework", "demonstrated", "software"},
				Boost:    0.3,
			},
		},
		KeywordBoost: 0.15,
		ExactBoost:   0.3,
	}
}

// Scorer computes a bounded lexical similarity between a query and a text
// chunk. It is a ranking signal, not a probability; callers may swap an
// embedding-backed implementation behind the same Score contract.
type Scorer struct {
	cfg Config
}

func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns a similarity in [0, 1]. Empty inputs score 0; malformed
// inputs never panic.
func (s *Scorer) Score(query, text string) float64 {
	if query == "" || text == "" {
		return 0
	}

	lq := strings.ToLower(query)
	lt := strings.ToLower(text)

	qTokens := tokenize(lq)
	tTokens := tokenize(lt)
	if len(qTokens) == 0 || len(tTokens) == 0 {
		return 0
	}

	score := jaccard(qTokens, tTokens)

	for qt := range qTokens {
		if s.keywordHit(qt, tTokens) {
			score += s.cfg.KeywordBoost
		}
	}

	if strings.Contains(lt, lq) {
		score += s.cfg.ExactBoost
	}

	for _, in := range s.cfg.Intents {
		if containsAny(lq, in.Triggers) && containsAny(lt, in.Answers) {
			score += in.Boost
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// keywordHit reports whether the query token substring-matches a domain
// keyword (either direction) and that keyword also substring-matches some
// text token.
func (s *Scorer) keywordHit(qt string, tTokens map[string]struct{}) bool {
	for _, kw := range s.cfg.DomainKeywords {
		if !strings.Contains(qt, kw) && !strings.Contains(kw, qt) {
			continue
		}
		for tt := range tTokens {
			if strings.Contains(tt, kw) || strings.Contains(kw, tt) {
				return true
			}
		}
	}
	return false
}

// tokenize lowercased input into a set, discarding tokens of length <= 2.
func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		if len(f) > 2 {
			out[f] = struct{}{}
		}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
