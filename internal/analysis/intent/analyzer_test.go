package intent

import "testing"

func TestAnalyzeDetectsBooking(t *testing.T) {
	cases := []string{
		"Can I book an appointment for Friday?",
		"how does BOOKING work here",
		"I'd like an Appointment next week",
	}
	for _, text := range cases {
		decision := Analyze(text)
		if decision.Intent != Booking {
			t.Fatalf("%q: expected booking intent, got %s", text, decision.Intent)
		}
		if decision.Confidence <= 0 || decision.Confidence > 1 {
			t.Fatalf("%q: confidence out of range: %f", text, decision.Confidence)
		}
	}
}

func TestAnalyzeIgnoresGeneralQuestions(t *testing.T) {
	cases := []string{
		"What are your hours?",
		"Do you offer teeth whitening?",
		"",
		"   ",
	}
	for _, text := range cases {
		if decision := Analyze(text); decision.Intent != None {
			t.Fatalf("%q: expected no intent, got %s", text, decision.Intent)
		}
	}
}

func TestAnalyzeBothKeywordsRaiseConfidence(t *testing.T) {
	single := Analyze("I want an appointment")
	double := Analyze("Is booking an appointment possible online?")
	if double.Confidence <= single.Confidence {
		t.Fatalf("expected higher confidence with more matches: %f vs %f", double.Confidence, single.Confidence)
	}
}
