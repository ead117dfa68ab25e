package incidents

import (
	"context"
	"strings"
	"time"

	"care-monitor/internal/ports/gateways"
	"care-monitor/internal/ports/store"

	"github.com/google/uuid"
)

// LastLocationKey guarda la última ubicación conocida (placeholder de nuevos incidentes).
const LastLocationKey = "location:last"

const (
	TypeEmergency = "emergency"

	SourceManual     = "manual"
	SourceManualHold = "manual_hold"
	SourceVoice      = "voice"
	SourceAPI        = "api"
)

// Reason describe qué disparó la emergencia.
type Reason struct {
	Type      string
	Source    string
	Rehearsal bool
}

type Factory struct {
	store store.Store
	now   func() time.Time
}

func NewFactory(s store.Store, now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{store: s, now: now}
}

// Create arma un incidente activo con timeline [{0, detected}]. Si no se puede
// leer la última ubicación, el incidente sale sin ubicación.
func (f *Factory) Create(ctx context.Context, r Reason) Incident {
	typ := strings.TrimSpace(r.Type)
	if typ == "" {
		typ = TypeEmergency
	}
	src := strings.TrimSpace(r.Source)
	if src == "" {
		src = SourceManual
	}

	inc := Incident{
		ID:        uuid.NewString(),
		Type:      typ,
		Source:    src,
		Status:    StatusActive,
		StartedAt: f.now(),
		Timeline:  []TimelineEntry{{ElapsedMs: 0, Label: LabelDetected}},
		Rehearsal: r.Rehearsal,
	}

	if loc, ok, _ := LastLocation(ctx, f.store); ok {
		inc.Location = &loc
	}
	return inc
}

func LastLocation(ctx context.Context, s store.Store) (gateways.Location, bool, error) {
	var loc gateways.Location
	ok, err := store.GetJSON(ctx, s, LastLocationKey, &loc)
	return loc, ok, err
}

func SaveLastLocation(ctx context.Context, s store.Store, loc gateways.Location) error {
	return store.SetJSON(ctx, s, LastLocationKey, loc)
}
