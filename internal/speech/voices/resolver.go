package voices

import (
	"sort"
	"strings"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/pkg/quiz"
)

// Selection is the result of SelectVoice. KeywordMatch reports whether
// the voice was found by the gender keyword classifier; the output
// adapter uses this to decide on the pitch-shift fallback.
type Selection struct {
	Voice        engine.Voice
	OK           bool
	KeywordMatch bool
}

// SelectVoice picks a voice from a catalog snapshot. Pure and
// deterministic for a given snapshot. Priority order:
//
//  1. explicitURI present in the catalog (gender ignored)
//  2. keyword match on display name, within the target language family
//  3. any voice with the default regional tag
//  4. any voice whose primary language subtag matches
//  5. none
func SelectVoice(catalog []engine.Voice, gender quiz.Gender, explicitURI string) Selection {
	return DefaultTable.SelectVoice(catalog, gender, explicitURI)
}

// SelectVoice evaluates the priority chain against this keyword table.
func (t *KeywordTable) SelectVoice(catalog []engine.Voice, gender quiz.Gender, explicitURI string) Selection {
	if explicitURI != "" {
		for _, v := range catalog {
			if v.URI == explicitURI {
				return Selection{Voice: v, OK: true}
			}
		}
	}

	keywords := t.Keywords(gender)
	for _, v := range catalog {
		if !t.inLanguageFamily(v) {
			continue
		}
		name := strings.ToLower(v.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return Selection{Voice: v, OK: true, KeywordMatch: true}
			}
		}
	}

	for _, v := range catalog {
		if strings.EqualFold(v.Language, t.DefaultTag) {
			return Selection{Voice: v, OK: true}
		}
	}

	for _, v := range catalog {
		if t.inLanguageFamily(v) {
			return Selection{Voice: v, OK: true}
		}
	}

	return Selection{}
}

func (t *KeywordTable) inLanguageFamily(v engine.Voice) bool {
	return strings.EqualFold(primarySubtag(v.Language), t.Language)
}

func primarySubtag(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return tag[:i]
	}
	return tag
}

// RankByRegion orders a catalog snapshot by fixed region preference,
// tie-broken by display name. Used for user-facing candidate lists;
// SelectVoice does not consult it. Pure; the input is not mutated.
func RankByRegion(catalog []engine.Voice) []engine.Voice {
	return DefaultTable.RankByRegion(catalog)
}

// RankByRegion orders the snapshot by this table's region preference.
func (t *KeywordTable) RankByRegion(catalog []engine.Voice) []engine.Voice {
	ranked := make([]engine.Voice, len(catalog))
	copy(ranked, catalog)

	rank := func(v engine.Voice) int {
		for i, region := range t.RegionOrder {
			if strings.EqualFold(v.Language, region) {
				return i
			}
		}
		return len(t.RegionOrder)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := rank(ranked[i]), rank(ranked[j])
		if ri != rj {
			return ri < rj
		}
		return ranked[i].Name < ranked[j].Name
	})

	return ranked
}
