package adherence

import (
	"time"

	"care-monitor/internal/domain/medicines"
)

// DefaultGraceWindow: pasado este tiempo desde la hora programada, una dosis
// no tomada se considera perdida.
const DefaultGraceWindow = 60 * time.Minute

const minutesPerDay = 24 * 60

// ClassifyDose es puro: no muta el entry ni hace I/O.
//   - taken   si el entry ya está tomado
//   - missed  si el entry ya estaba perdido, o si now-scheduled >= grace
//   - pending en otro caso
func ClassifyDose(entry DoseEntry, scheduled, now medicines.TimeOfDay, grace time.Duration) DoseStatus {
	switch entry.Status {
	case StatusTaken:
		return StatusTaken
	case StatusMissed:
		// missed -> pending no existe.
		return StatusMissed
	}

	s, n := scheduled.Minutes(), now.Minutes()
	if s < 0 || n < 0 {
		return StatusPending
	}
	if time.Duration(n-s)*time.Minute >= grace {
		return StatusMissed
	}
	return StatusPending
}

// Classify aplica ClassifyDose a cada horario de una medicina contra el log del día.
func Classify(medicineID string, times []medicines.TimeOfDay, day DayLog, now medicines.TimeOfDay, grace time.Duration) map[medicines.TimeOfDay]DoseStatus {
	out := make(map[medicines.TimeOfDay]DoseStatus, len(times))
	for _, t := range times {
		out[t] = ClassifyDose(day[KeyOf(medicineID, t)], t, now, grace)
	}
	return out
}

// ClassifyPreviousDay clasifica una dosis de ayer vista desde now (hoy): el
// tiempo transcurrido incluye la medianoche.
func ClassifyPreviousDay(entry DoseEntry, scheduled, now medicines.TimeOfDay, grace time.Duration) DoseStatus {
	switch entry.Status {
	case StatusTaken, StatusMissed:
		return entry.Status
	}

	s, n := scheduled.Minutes(), now.Minutes()
	if s < 0 || n < 0 {
		return StatusPending
	}
	if time.Duration(minutesPerDay+n-s)*time.Minute >= grace {
		return StatusMissed
	}
	return StatusPending
}
