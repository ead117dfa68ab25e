// Package hostbridge reenvía las acciones de plataforma (notificación, voz,
// llamada, SMS, ubicación, alertas) a la app anfitriona por HTTP.
package hostbridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"care-monitor/internal/platform/httpclient"
	"care-monitor/internal/ports/gateways"
)

type Bridge struct {
	client *httpclient.Client
}

func New(baseURL string, timeout time.Duration) (*Bridge, error) {
	c, err := httpclient.New(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Bridge{client: c}, nil
}

func (b *Bridge) Gateways() gateways.Set {
	return gateways.Set{
		Notification: b,
		Speech:       b,
		Telephony:    b,
		Messaging:    b,
		Location:     b,
		Alert:        b,
	}
}

type permissionResponse struct {
	Permission gateways.Permission `json:"permission"`
}

func (b *Bridge) RequestPermission(ctx context.Context) (gateways.Permission, error) {
	var out permissionResponse
	if err := b.client.DoJSON(ctx, http.MethodPost, "/v1/notifications/permission", nil, &out); err != nil {
		return gateways.PermissionDenied, mapErr(err)
	}
	if out.Permission != gateways.PermissionGranted {
		return gateways.PermissionDenied, nil
	}
	return gateways.PermissionGranted, nil
}

func (b *Bridge) Notify(ctx context.Context, title, body string) error {
	return b.post(ctx, "/v1/notifications", map[string]string{"title": title, "body": body})
}

func (b *Bridge) Speak(ctx context.Context, text, locale string) error {
	return b.post(ctx, "/v1/speech", map[string]string{"text": text, "locale": locale})
}

func (b *Bridge) Call(ctx context.Context, phone string) error {
	return b.post(ctx, "/v1/calls", map[string]string{"phone": phone})
}

func (b *Bridge) Send(ctx context.Context, phone, body string) error {
	return b.post(ctx, "/v1/messages", map[string]string{"phone": phone, "body": body})
}

func (b *Bridge) Current(ctx context.Context, timeout time.Duration) (gateways.Location, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	path := fmt.Sprintf("/v1/location?timeout_ms=%d", timeout.Milliseconds())
	var out gateways.Location
	if err := b.client.DoJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return gateways.Location{}, mapErr(err)
	}
	return out, nil
}

func (b *Bridge) PlayTone(ctx context.Context) error {
	return b.post(ctx, "/v1/alerts/tone", nil)
}

func (b *Bridge) Vibrate(ctx context.Context) error {
	return b.post(ctx, "/v1/alerts/vibrate", nil)
}

func (b *Bridge) AcquireWakeLock(ctx context.Context) error {
	return b.post(ctx, "/v1/alerts/wake-lock", nil)
}

func (b *Bridge) post(ctx context.Context, path string, in any) error {
	return mapErr(b.client.DoJSON(ctx, http.MethodPost, path, in, nil))
}

// mapErr traduce "no soportado / denegado / timeout" a ErrUnavailable.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch httpclient.StatusOf(err) {
	case http.StatusForbidden, http.StatusNotFound, http.StatusNotImplemented, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %v", gateways.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", gateways.ErrUnavailable, err)
	}
	return err
}
