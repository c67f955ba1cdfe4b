package intent

import "strings"

// Label tags the detected visitor intent.
type Label string

const (
	None    Label = "none"
	Booking Label = "booking"
)

// Decision is the outcome of intent analysis over one user utterance.
type Decision struct {
	Intent     Label
	Confidence float32
	Score      int
}

// Keyword buckets per intent. Matching is case-insensitive substring
// containment, so "Booking" and "appointments" both hit.
var keywordBuckets = map[Label][]string{
	Booking: {
		"booking", "appointment",
	},
}

// Analyze inspects a user utterance for booking intent. It is deliberately
// rule-based: the capture contract depends on deterministic matching, and a
// model-based classifier can be swapped in behind lead.Classifier without
// touching callers.
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Intent: None}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	bestLabel := None
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}

	if bestScore == 0 {
		return Decision{Intent: None}
	}

	confidence := 0.6 + 0.1*float32(bestScore-3)/3
	if confidence > 1 {
		confidence = 1
	}

	return Decision{Intent: bestLabel, Confidence: confidence, Score: bestScore}
}
