package ingest

import (
	"regexp"
	"strings"
)

const maxKeywords = 10

var medicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:disease|syndrome|disorder|condition|infection)\b`),
	regexp.MustCompile(`(?i)\b(?:fever|pain|headache|nausea|vomiting|diarrhea|cough|shortness of breath|fatigue)\b`),
	regexp.MustCompile(`(?i)\b(?:CT scan|MRI|X-ray|blood test|urine test|biopsy|ultrasound)\b`),
	regexp.MustCompile(`(?i)\b(?:medication|treatment|therapy|surgery|prescription)\b`),
}

// ExtractKeywords pulls medical terms out of text with simple pattern
// matching, capped at maxKeywords unique entries, "general" when nothing
// matches.
func ExtractKeywords(text string) string {
	textLower := strings.ToLower(text)

	seen := make(map[string]bool)
	var keywords []string
	for _, pattern := range medicalPatterns {
		for _, match := range pattern.FindAllString(textLower, -1) {
			keyword := strings.ToLower(match)
			if seen[keyword] {
				continue
			}
			seen[keyword] = true
			keywords = append(keywords, keyword)
			if len(keywords) >= maxKeywords {
				return strings.Join(keywords, ", ")
			}
		}
	}

	if len(keywords) == 0 {
		return "general"
	}
	return strings.Join(keywords, ", ")
}
