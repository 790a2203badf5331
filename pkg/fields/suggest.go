package fields

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxEditDistance bounds typo-level suggestions.
const maxEditDistance = 3

// Suggestion is a header that nearly matches a field keyword.
type Suggestion struct {
	Header   Header
	Keyword  string
	Distance int
}

// Suggest returns headers that come close to any keyword without matching
// it, best first. It is a diagnostic for unresolved fields.
func Suggest(h HeaderMap, keywords []string, limit int) []Suggestion {
	names := h.Names()
	best := make(map[int]Suggestion)

	consider := func(idx int, keyword string, distance int) {
		if cur, ok := best[idx]; ok && cur.Distance <= distance {
			return
		}
		best[idx] = Suggestion{Header: h.headers[idx], Keyword: keyword, Distance: distance}
	}

	for _, k := range keywords {
		k = strings.ToLower(k)

		ranks := fuzzy.RankFindNormalizedFold(k, names)
		sort.Sort(ranks)
		for _, r := range ranks {
			consider(r.OriginalIndex, k, r.Distance)
		}

		for i, name := range names {
			if d := fuzzy.LevenshteinDistance(k, name); d <= maxEditDistance {
				consider(i, k, d)
			}
		}
	}

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Header.Col < out[j].Header.Col
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
