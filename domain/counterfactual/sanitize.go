package counterfactual

import "strings"

// placeholderObject is the fallback target when the planner returns
// nothing usable.
const placeholderObject = "object"

var (
	// Truncation markers: everything from the first of these on is a
	// parenthetical or clause, not part of the noun phrase.
	bracketMarkers = []string{"(", "[", "{", " - ", ":", ";"}
	clauseMarkers  = []string{" with ", " featuring ", " that ", " to "}

	quoteReplacer = strings.NewReplacer(`"`, "", "'", "", "“", "", "”", "", "‘", "", "’", "")
)

// SanitizeTargetObject normalizes raw planner output into a canonical
// short noun phrase suitable as a segmentation or editing prompt. The
// result is always non-empty and at most four words.
func SanitizeTargetObject(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return placeholderObject
	}

	s = truncateAtFirst(s, bracketMarkers)
	s = truncateAtFirst(s, clauseMarkers)
	s = strings.TrimSpace(quoteReplacer.Replace(s))
	s = dropLeadingArticle(s)
	s = strings.TrimRight(s, ".,- ")

	words := strings.Fields(s)
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return placeholderObject
	}
	return strings.Join(words, " ")
}

// truncateAtFirst cuts s at the earliest occurrence of any marker.
func truncateAtFirst(s string, markers []string) string {
	cut := -1
	for _, m := range markers {
		if idx := strings.Index(s, m); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut >= 0 {
		s = s[:cut]
	}
	return strings.TrimSpace(s)
}

func dropLeadingArticle(s string) string {
	for {
		lower := strings.ToLower(s)
		dropped := false
		for _, article := range []string{"a", "an", "the"} {
			if lower == article {
				return ""
			}
			if strings.HasPrefix(lower, article+" ") {
				s = strings.TrimSpace(s[len(article)+1:])
				dropped = true
				break
			}
		}
		if !dropped {
			return s
		}
	}
}
