package incidents

import (
	"time"

	"care-monitor/internal/ports/gateways"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

const LabelDetected = "detected"

type TimelineEntry struct {
	ElapsedMs int64  `json:"elapsed_ms"`
	Label     string `json:"label"`
}

type Incident struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Source     string             `json:"source"`
	Status     Status             `json:"status"`
	StartedAt  time.Time          `json:"started_at"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty"`
	Location   *gateways.Location `json:"location,omitempty"`
	Timeline   []TimelineEntry    `json:"timeline"`
	Notes      string             `json:"notes,omitempty"`
	Rehearsal  bool               `json:"rehearsal"`
	Cancelled  bool               `json:"cancelled,omitempty"`

	ContactsNotified []string `json:"contacts_notified,omitempty"`
	MessageSent      string   `json:"message_sent,omitempty"`
	ResponseTimeMs   int64    `json:"response_time_ms,omitempty"`
}

func (i Incident) Active() bool { return i.Status == StatusActive }

// Append agrega un paso al timeline con el tiempo transcurrido desde StartedAt.
func (i Incident) Append(label string, at time.Time) Incident {
	i.Timeline = append(append([]TimelineEntry(nil), i.Timeline...), TimelineEntry{
		ElapsedMs: at.Sub(i.StartedAt).Milliseconds(),
		Label:     label,
	})
	return i
}

// MarkResolved deja ResolvedAt con la primera resolución.
func (i Incident) MarkResolved(at time.Time) Incident {
	i.Status = StatusResolved
	if i.ResolvedAt == nil {
		t := at
		i.ResolvedAt = &t
	}
	return i
}

// HasLabel reporta si el timeline ya tiene ese paso.
func (i Incident) HasLabel(label string) bool {
	for _, e := range i.Timeline {
		if e.Label == label {
			return true
		}
	}
	return false
}
