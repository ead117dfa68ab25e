package medicines

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidTime = errors.New("time must be HH:MM")

// TimeOfDay es una hora del día en formato "HH:MM" (24h).
type TimeOfDay string

// ParseTimeOfDay normaliza "8:05" => "08:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", ErrInvalidTime
	}
	return TimeOfDay(t.Format("15:04")), nil
}

// TimeOfDayOf devuelve la hora del día de t (truncada al minuto).
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format("15:04"))
}

// Minutes devuelve minutos desde medianoche, o -1 si el valor no es válido.
func (t TimeOfDay) Minutes() int {
	p, err := time.Parse("15:04", string(t))
	if err != nil {
		return -1
	}
	return p.Hour()*60 + p.Minute()
}

type Medicine struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Instructions string `json:"instructions"`

	// Únicas y ordenadas.
	ScheduledTimes []TimeOfDay `json:"scheduled_times"`
	VoiceLocale    string      `json:"voice_locale"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTime indica si la medicina está programada a esa hora.
func (m Medicine) HasTime(t TimeOfDay) bool {
	for _, st := range m.ScheduledTimes {
		if st == t {
			return true
		}
	}
	return false
}
