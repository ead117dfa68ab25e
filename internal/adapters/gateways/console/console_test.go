package console

import (
	"context"
	"testing"
	"time"

	"care-monitor/internal/platform/logger"
	"care-monitor/internal/ports/gateways"

	"github.com/stretchr/testify/assert"
)

func TestConsoleGateways(t *testing.T) {
	g := New(logger.Nop())
	ctx := context.Background()

	p, err := g.Notification.RequestPermission(ctx)
	assert.NoError(t, err)
	assert.Equal(t, gateways.PermissionGranted, p)

	assert.NoError(t, g.Notification.Notify(ctx, "Medicina", "Toma tu dosis"))
	assert.NoError(t, g.Speech.Speak(ctx, "hola", "es-PE"))
	assert.NoError(t, g.Telephony.Call(ctx, "+51999000111"))
	assert.NoError(t, g.Messaging.Send(ctx, "+51999000111", "help"))
	assert.NoError(t, g.Alert.PlayTone(ctx))

	_, err = g.Location.Current(ctx, time.Second)
	assert.ErrorIs(t, err, gateways.ErrUnavailable)
}
