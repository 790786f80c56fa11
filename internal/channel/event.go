package channel

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Event is one immutable record in a channel's log. Text is the rendered
// display form of whatever the client submitted (position fields or chat
// text); the core never interprets it.
type Event struct {
	Id     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Role   string `json:"role,omitempty"`
	Time   string `json:"time"`
}

func NewEventId() string {
	return gonanoid.Must()
}

// FormatPosition renders telemetry fields into the single display string
// stored on an event.
func FormatPosition(latitude, longitude, speed, heading float64) string {
	return fmt.Sprintf("%v, %v, %v, %v", latitude, longitude, speed, heading)
}

// FormatClock renders client-supplied time components as hh:mm, or hh:mm:ss
// when seconds are present.
func FormatClock(hr, mins int, secs *int) string {
	if secs == nil {
		return fmt.Sprintf("%02d:%02d", hr, mins)
	}

	return fmt.Sprintf("%02d:%02d:%02d", hr, mins, *secs)
}
