package gateways

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable: la plataforma no soporta la acción o el permiso fue negado.
// Quien llama lo trata como no-op.
var ErrUnavailable = errors.New("gateway unavailable")

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type NotificationGateway interface {
	RequestPermission(ctx context.Context) (Permission, error)
	// Notify es no-op si el permiso no fue concedido.
	Notify(ctx context.Context, title, body string) error
}

type SpeechGateway interface {
	Speak(ctx context.Context, text, locale string) error
}

type TelephonyGateway interface {
	Call(ctx context.Context, phone string) error
}

type MessagingGateway interface {
	Send(ctx context.Context, phone, body string) error
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type LocationGateway interface {
	// Current falla con ErrUnavailable (u otro error) ante timeout o negativa.
	Current(ctx context.Context, timeout time.Duration) (Location, error)
}

// AlertGateway cubre los efectos locales del paso de activación.
type AlertGateway interface {
	PlayTone(ctx context.Context) error
	Vibrate(ctx context.Context) error
	AcquireWakeLock(ctx context.Context) error
}

// Set agrupa todos los gateways para inyectarlos juntos.
type Set struct {
	Notification NotificationGateway
	Speech       SpeechGateway
	Telephony    TelephonyGateway
	Messaging    MessagingGateway
	Location     LocationGateway
	Alert        AlertGateway
}
