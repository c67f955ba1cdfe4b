package lead

import "time"

// Lead is a prospective patient record submitted for analysis.
type Lead struct {
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Interest   string    `json:"interest"`
	Source     string    `json:"source,omitempty"`
	CapturedAt time.Time `json:"capturedAt,omitempty"`
}

// CaptureEvent is the ephemeral payload handed to the capture callback when
// booking intent is detected in a chat turn. It is not retained here.
type CaptureEvent struct {
	Name     string `json:"name,omitempty"`
	Interest string `json:"interest"`
}
