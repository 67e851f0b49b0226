package scorer

import (
	"strings"
	"testing"
)

func TestScore_EmptyInputs(t *testing.T) {
	s := New(DefaultConfig())

	tests := []struct {
		name  string
		query string
		text  string
	}{
		{name: "empty query", query: "", text: "anything at all"},
		{name: "empty text", query: "anything at all", text: ""},
		{name: "both empty", query: "", text: ""},
		{name: "only short tokens in query", query: "a an it", text: "some longer text here"},
		{name: "only short tokens in text", query: "some longer text here", text: "a an it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.query, tt.text); got != 0 {
				t.Errorf("Score(%q, %q) = %v, want 0", tt.query, tt.text, got)
			}
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	s := New(DefaultConfig())

	tests := []struct {
		name  string
		query string
		text  string
	}{
		{name: "identical", query: "phishing attack tutorial", text: "phishing attack tutorial"},
		{name: "every boost fires", query: "who created the phishing tools mentioned", text: "Rishav the creator demonstrated evilginx2 phishing tools. who created the phishing tools mentioned"},
		{name: "no overlap", query: "javascript closures", text: "gardening tips for spring"},
		{name: "long document", query: "security", text: strings.Repeat("security lecture content. ", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.query, tt.text)
			if got < 0 || got > 1 {
				t.Errorf("Score(%q, ...) = %v, out of [0,1]", tt.query, got)
			}
		})
	}
}

func TestScore_JaccardBase(t *testing.T) {
	// Keep tokens away from the domain keyword list so only the base
	// overlap contributes.
	s := New(Config{KeywordBoost: 0.15, ExactBoost: 0.3})

	got := s.Score("apples oranges", "apples pears")
	// tokens: {apples, oranges} vs {apples, pears}: |I|=1, |U|=3.
	want := 1.0 / 3.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScore_ExactSubstringBoost(t *testing.T) {
	s := New(Config{ExactBoost: 0.3})

	with := s.Score("session hijacking", "the lecture covers session hijacking in depth")
	without := s.Score("session hijacking", "the lecture covers hijacking session in depth")
	if with-without < 0.29 {
		t.Errorf("exact substring boost missing: with=%v without=%v", with, without)
	}
}

func TestScore_KeywordBoost(t *testing.T) {
	s := New(DefaultConfig())

	// "phish" substring-matches the "phishing" keyword, and the text
	// contains a phishing token, so the boost fires even though Jaccard
	// overlap between the token sets is zero.
	got := s.Score("phish detection", "recognizing phishing emails early")
	if got < 0.15 {
		t.Errorf("keyword boost missing: got %v", got)
	}
}

func TestScore_CreatorToolsScenario(t *testing.T) {
	s := New(DefaultConfig())

	got := s.Score(
		"what tools did the creator mention",
		"Rishav from Cyber-Haxpert demonstrated Evilginx2 as a phishing tool.",
	)
	if got <= 0.3 {
		t.Errorf("boosted intent score = %v, want > 0.3", got)
	}
}

func TestScore_UnrelatedLongDocument(t *testing.T) {
	s := New(DefaultConfig())

	doc := strings.Repeat("The migration patterns of arctic terns span hemispheres. ", 22)
	if len(doc) < 1200 {
		t.Fatalf("test document too short: %d", len(doc))
	}
	if got := s.Score("javascript closures", doc); got != 0 {
		t.Errorf("Score = %v, want 0 for disjoint vocabulary", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := New(DefaultConfig())
	q := "phishing tools the creator mentioned"
	text := "Evilginx2 was demonstrated as a phishing framework by Rishav."

	first := s.Score(q, text)
	for i := 0; i < 50; i++ {
		if got := s.Score(q, text); got != first {
			t.Fatalf("run %d: Score = %v, want %v", i, got, first)
		}
	}
}

func BenchmarkScore(b *testing.B) {
	s := New(DefaultConfig())
	text := strings.Repeat("phishing defense relies on user awareness and layered controls. ", 8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Score("how do I defend against phishing", text)
	}
}
