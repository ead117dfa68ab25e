package emergency

import (
	"fmt"
	"strings"
	"time"

	"care-monitor/internal/domain/incidents"
	"care-monitor/internal/domain/profile"
	"care-monitor/internal/ports/gateways"
)

type Step string

const (
	StepActivated Step = "activated"
	StepCalling   Step = "calling"
	StepMessaging Step = "messaging"
	StepLocating  Step = "locating"
	StepLogged    Step = "logged"
	StepResolved  Step = "resolved"
)

// Sequence son los pasos con su offset desde la activación.
var Sequence = []struct {
	Step   Step
	Offset time.Duration
}{
	{StepActivated, 0},
	{StepCalling, 2 * time.Second},
	{StepMessaging, 5 * time.Second},
	{StepLocating, 10 * time.Second},
	{StepLogged, 15 * time.Second},
	{StepResolved, 20 * time.Second},
}

// StepResult es lo que los efectos de pasos anteriores aportan al incidente.
type StepResult struct {
	ContactsNotified []string
	Message          string
}

// Apply es la transición pura de un paso: agrega la entrada al timeline y los
// campos que el paso finaliza. No hace I/O.
func Apply(step Step, inc incidents.Incident, res StepResult, at time.Time) incidents.Incident {
	inc = inc.Append(string(step), at)

	switch step {
	case StepLogged:
		inc.ContactsNotified = append([]string(nil), res.ContactsNotified...)
		inc.MessageSent = res.Message
		inc.ResponseTimeMs = at.Sub(inc.StartedAt).Milliseconds()
	case StepResolved:
		inc = inc.MarkResolved(at)
	}
	return inc
}

// AttachLocation es la transición cuando llega la ubicación (después del timer de Locating).
func AttachLocation(inc incidents.Incident, loc gateways.Location) incidents.Incident {
	l := loc
	inc.Location = &l
	return inc
}

// ComposeMessage arma el aviso que se manda a los contactos.
func ComposeMessage(p profile.Profile, inc incidents.Incident, at time.Time) string {
	name := strings.TrimSpace(p.ElderName)
	if name == "" {
		name = "Tu familiar"
	}

	var b strings.Builder
	if inc.Rehearsal {
		b.WriteString("[SIMULACRO] ")
	}
	fmt.Fprintf(&b, "EMERGENCIA: %s necesita ayuda.", name)
	if addr := strings.TrimSpace(p.Address); addr != "" {
		fmt.Fprintf(&b, " Dirección: %s.", addr)
	}
	fmt.Fprintf(&b, " Hora: %s.", at.Format("02/01/2006 15:04"))
	if inc.Location != nil {
		fmt.Fprintf(&b, " Ubicación: https://maps.google.com/?q=%.6f,%.6f", inc.Location.Lat, inc.Location.Lng)
	}
	return b.String()
}
