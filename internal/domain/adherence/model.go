package adherence

import (
	"strings"
	"time"

	"care-monitor/internal/domain/medicines"
)

// LogStoreKey guarda el DailyLog completo.
const LogStoreKey = "doses:log"

const dateLayout = "2006-01-02"

type DoseStatus string

const (
	StatusPending DoseStatus = "pending"
	StatusTaken   DoseStatus = "taken"
	StatusMissed  DoseStatus = "missed"
)

// DoseEntry: TakenAt existe sólo si Status=taken, MissedAt sólo si Status=missed.
type DoseEntry struct {
	Status   DoseStatus `json:"status"`
	TakenAt  *time.Time `json:"taken_at,omitempty"`
	MissedAt *time.Time `json:"missed_at,omitempty"`
}

// DoseKey identifica una dosis dentro de un día: "<medicineID>|<HH:MM>".
type DoseKey string

func KeyOf(medicineID string, t medicines.TimeOfDay) DoseKey {
	return DoseKey(medicineID + "|" + string(t))
}

func (k DoseKey) MedicineID() string {
	id, _, _ := strings.Cut(string(k), "|")
	return id
}

func (k DoseKey) Time() medicines.TimeOfDay {
	_, t, _ := strings.Cut(string(k), "|")
	return medicines.TimeOfDay(t)
}

// DayLog son las dosis de un día calendario.
type DayLog map[DoseKey]DoseEntry

// DailyLog: fecha (YYYY-MM-DD) -> DayLog. Nunca se borra un día automáticamente.
type DailyLog map[string]DayLog

// DateKey devuelve la fecha calendario de t (en la zona de t).
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// DoseView es una fila de la vista "hoy".
type DoseView struct {
	MedicineID   string              `json:"medicine_id"`
	MedicineName string              `json:"medicine_name"`
	Time         medicines.TimeOfDay `json:"time"`
	Status       DoseStatus          `json:"status"`
	TakenAt      *time.Time          `json:"taken_at,omitempty"`
	MissedAt     *time.Time          `json:"missed_at,omitempty"`
}
