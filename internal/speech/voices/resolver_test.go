package voices

import (
	"testing"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/pkg/quiz"
)

func sampleCatalog() []engine.Voice {
	return []engine.Voice{
		{URI: "voice:amelie", Name: "Amélie", Language: "fr-FR"},
		{URI: "voice:samantha", Name: "Samantha", Language: "en-US"},
		{URI: "voice:daniel", Name: "Daniel", Language: "en-GB"},
		{URI: "voice:plain", Name: "English (Great Britain)", Language: "en-GB"},
		{URI: "voice:default", Name: "Default", Language: "en-US"},
	}
}

func TestSelectVoiceExplicitURIWins(t *testing.T) {
	// Explicit choice beats the gender heuristic even when the URI
	// points at a voice the classifier would never pick.
	sel := SelectVoice(sampleCatalog(), quiz.GenderMale, "voice:samantha")
	if !sel.OK {
		t.Fatal("no voice selected")
	}
	if sel.Voice.URI != "voice:samantha" {
		t.Errorf("selected %q, want voice:samantha", sel.Voice.URI)
	}
	if sel.KeywordMatch {
		t.Error("explicit URI must not count as a keyword match")
	}
}

func TestSelectVoiceKeyword(t *testing.T) {
	tests := []struct {
		name    string
		gender  quiz.Gender
		wantURI string
	}{
		{name: "female keyword", gender: quiz.GenderFemale, wantURI: "voice:samantha"},
		{name: "male keyword", gender: quiz.GenderMale, wantURI: "voice:daniel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectVoice(sampleCatalog(), tt.gender, "")
			if !sel.OK || !sel.KeywordMatch {
				t.Fatalf("selection = %+v, want keyword match", sel)
			}
			if sel.Voice.URI != tt.wantURI {
				t.Errorf("selected %q, want %q", sel.Voice.URI, tt.wantURI)
			}
		})
	}
}

func TestSelectVoiceDefaultTagFallback(t *testing.T) {
	catalog := []engine.Voice{
		{URI: "voice:fr", Name: "Amélie", Language: "fr-FR"},
		{URI: "voice:us", Name: "Nameless", Language: "en-US"},
		{URI: "voice:gb", Name: "Nameless Too", Language: "en-GB"},
	}

	sel := SelectVoice(catalog, quiz.GenderMale, "")
	if !sel.OK {
		t.Fatal("no voice selected")
	}
	if sel.Voice.URI != "voice:us" {
		t.Errorf("selected %q, want default-tag voice:us", sel.Voice.URI)
	}
	if sel.KeywordMatch {
		t.Error("fallback must not count as a keyword match")
	}
}

func TestSelectVoicePrimarySubtagFallback(t *testing.T) {
	catalog := []engine.Voice{
		{URI: "voice:fr", Name: "Amélie", Language: "fr-FR"},
		{URI: "voice:in", Name: "Nameless", Language: "en-IN"},
	}

	sel := SelectVoice(catalog, quiz.GenderFemale, "")
	if !sel.OK || sel.Voice.URI != "voice:in" {
		t.Errorf("selection = %+v, want primary-subtag voice:in", sel)
	}
}

func TestSelectVoiceNone(t *testing.T) {
	tests := []struct {
		name    string
		catalog []engine.Voice
	}{
		{name: "empty catalog", catalog: nil},
		{name: "no target language", catalog: []engine.Voice{
			{URI: "voice:fr", Name: "Amélie", Language: "fr-FR"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sel := SelectVoice(tt.catalog, quiz.GenderFemale, ""); sel.OK {
				t.Errorf("selection = %+v, want none", sel)
			}
		})
	}
}

func TestSelectVoiceDeterministic(t *testing.T) {
	catalog := sampleCatalog()
	first := SelectVoice(catalog, quiz.GenderMale, "")
	for i := 0; i < 20; i++ {
		if got := SelectVoice(catalog, quiz.GenderMale, ""); got != first {
			t.Fatalf("call %d: selection %+v differs from %+v", i, got, first)
		}
	}
}

func TestRankByRegion(t *testing.T) {
	catalog := []engine.Voice{
		{URI: "1", Name: "Zed", Language: "en-GB"},
		{URI: "2", Name: "Amy", Language: "mi-NZ"},
		{URI: "3", Name: "Bea", Language: "en-US"},
		{URI: "4", Name: "Abe", Language: "en-US"},
		{URI: "5", Name: "Cat", Language: "en-AU"},
	}

	ranked := RankByRegion(catalog)

	wantOrder := []string{"4", "3", "1", "5", "2"}
	for i, want := range wantOrder {
		if ranked[i].URI != want {
			t.Errorf("position %d = %q, want %q", i, ranked[i].URI, want)
		}
	}

	// The input snapshot is left alone.
	if catalog[0].URI != "1" {
		t.Error("RankByRegion mutated its input")
	}
}

func TestParseTable(t *testing.T) {
	if DefaultTable.Version == 0 {
		t.Error("embedded table has no version")
	}
	if len(DefaultTable.Male) <= len(DefaultTable.Female) {
		t.Error("male keyword list should be the broader one")
	}

	if _, err := ParseTable([]byte("version: 1\n")); err == nil {
		t.Error("expected error for table without language")
	}
}
