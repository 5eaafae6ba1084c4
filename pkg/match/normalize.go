package match

import (
	"regexp"
	"strings"
)

// legalFormSuffix strips a trailing legal-form suffix (GmbH, AG, KG, UG, ...)
// so that "Acme GmbH" and "Acme" compare as the same name.
var legalFormSuffix = regexp.MustCompile(
	`(?i)\s+(gmbh\s*&\s*co\.?\s*kg|co\.?\s*kg|gmbh|mbh|ag|kg|ohg|gbr|ug|e\.?k\.?)\.?\s*$`)

// Normalize lowercases, collapses whitespace and strips a trailing
// legal-form suffix.
func Normalize(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	s = legalFormSuffix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Similarity scores two strings in [0,1]: equal 1.0, containment either way
// 0.8, otherwise the Jaccard overlap of their whitespace-tokenized word sets.
func Similarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}
	s1, s2 = strings.ToLower(s1), strings.ToLower(s2)
	if s1 == s2 {
		return 1.0
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return 0.8
	}

	words1 := tokenSet(s1)
	words2 := tokenSet(s2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
