package adherence

import (
	"testing"
	"time"

	"care-monitor/internal/domain/medicines"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDose_GraceBoundary(t *testing.T) {
	none := DoseEntry{}

	assert.Equal(t, StatusPending, ClassifyDose(none, "08:00", "07:30", DefaultGraceWindow))
	assert.Equal(t, StatusPending, ClassifyDose(none, "08:00", "08:00", DefaultGraceWindow))
	assert.Equal(t, StatusPending, ClassifyDose(none, "08:00", "08:59", DefaultGraceWindow))
	assert.Equal(t, StatusMissed, ClassifyDose(none, "08:00", "09:00", DefaultGraceWindow))
	assert.Equal(t, StatusMissed, ClassifyDose(none, "08:00", "23:59", DefaultGraceWindow))
}

func TestClassifyDose_TakenIsTerminal(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 10, 0, 0, time.UTC)
	taken := DoseEntry{Status: StatusTaken, TakenAt: &at}

	for _, now := range []medicines.TimeOfDay{"08:00", "09:00", "23:59"} {
		assert.Equal(t, StatusTaken, ClassifyDose(taken, "08:00", now, DefaultGraceWindow), now)
	}
}

func TestClassifyDose_MissedNeverGoesBack(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	missed := DoseEntry{Status: StatusMissed, MissedAt: &at}

	// Aunque la ventana crezca, una dosis perdida no vuelve a pending.
	assert.Equal(t, StatusMissed, ClassifyDose(missed, "08:00", "09:00", 3*time.Hour))
}

func TestClassify_IsIdempotent(t *testing.T) {
	day := DayLog{}
	times := []medicines.TimeOfDay{"08:00", "14:00", "20:00"}

	first := Classify("m1", times, day, "14:30", DefaultGraceWindow)
	second := Classify("m1", times, day, "14:30", DefaultGraceWindow)

	assert.Equal(t, first, second)
	assert.Equal(t, map[medicines.TimeOfDay]DoseStatus{
		"08:00": StatusMissed,
		"14:00": StatusPending,
		"20:00": StatusPending,
	}, first)
	assert.Empty(t, day)
}

func TestClassifyPreviousDay_GraceCrossesMidnight(t *testing.T) {
	none := DoseEntry{}

	assert.Equal(t, StatusPending, ClassifyPreviousDay(none, "23:30", "00:29", DefaultGraceWindow))
	assert.Equal(t, StatusMissed, ClassifyPreviousDay(none, "23:30", "00:30", DefaultGraceWindow))
	assert.Equal(t, StatusMissed, ClassifyPreviousDay(none, "08:00", "00:00", DefaultGraceWindow))

	at := time.Date(2025, 3, 1, 23, 40, 0, 0, time.UTC)
	taken := DoseEntry{Status: StatusTaken, TakenAt: &at}
	assert.Equal(t, StatusTaken, ClassifyPreviousDay(taken, "23:30", "06:00", DefaultGraceWindow))
}
