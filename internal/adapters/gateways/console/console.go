// Package console implementa los gateways sin plataforma anfitriona: solo
// registran en el log lo que se habría pedido. Útil en dev y en servidores.
package console

import (
	"context"
	"time"

	"care-monitor/internal/platform/logger"
	"care-monitor/internal/ports/gateways"
)

type Gateways struct {
	log logger.Logger
}

// New devuelve un gateways.Set completo respaldado por el log.
// Location siempre falla con ErrUnavailable: no hay GPS en consola.
func New(log logger.Logger) gateways.Set {
	g := &Gateways{log: log.With(map[string]any{"component": "console_gateway"})}
	return gateways.Set{
		Notification: g,
		Speech:       g,
		Telephony:    g,
		Messaging:    g,
		Location:     g,
		Alert:        g,
	}
}

func (g *Gateways) RequestPermission(ctx context.Context) (gateways.Permission, error) {
	return gateways.PermissionGranted, nil
}

func (g *Gateways) Notify(ctx context.Context, title, body string) error {
	g.log.Info("notification", map[string]any{"title": title, "body": body})
	return nil
}

func (g *Gateways) Speak(ctx context.Context, text, locale string) error {
	g.log.Info("speech", map[string]any{"text": text, "locale": locale})
	return nil
}

func (g *Gateways) Call(ctx context.Context, phone string) error {
	g.log.Warn("call requested", map[string]any{"phone": phone})
	return nil
}

func (g *Gateways) Send(ctx context.Context, phone, body string) error {
	g.log.Warn("message requested", map[string]any{"phone": phone, "body": body})
	return nil
}

func (g *Gateways) Current(ctx context.Context, timeout time.Duration) (gateways.Location, error) {
	return gateways.Location{}, gateways.ErrUnavailable
}

func (g *Gateways) PlayTone(ctx context.Context) error {
	g.log.Info("alert tone", nil)
	return nil
}

func (g *Gateways) Vibrate(ctx context.Context) error {
	return nil
}

func (g *Gateways) AcquireWakeLock(ctx context.Context) error {
	return nil
}
