package emergency

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const DefaultHoldDuration = 2 * time.Second

// HoldTrigger dispara fire sólo si se mantiene presionado durante hold.
// Soltar antes aborta sin efectos.
type HoldTrigger struct {
	clock clock.Clock
	hold  time.Duration
	fire  func()

	mu    sync.Mutex
	timer *clock.Timer
	gen   uint64
}

func NewHoldTrigger(clk clock.Clock, hold time.Duration, fire func()) *HoldTrigger {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return &HoldTrigger{clock: clk, hold: hold, fire: fire}
}

// Press arma el timer. Devuelve false si ya estaba presionado.
func (h *HoldTrigger) Press() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timer != nil {
		return false
	}
	h.gen++
	gen := h.gen
	h.timer = h.clock.AfterFunc(h.hold, func() {
		h.mu.Lock()
		if h.gen != gen || h.timer == nil {
			h.mu.Unlock()
			return
		}
		h.timer = nil
		h.mu.Unlock()

		h.fire()
	})
	return true
}

// Release devuelve true si abortó un press en curso.
func (h *HoldTrigger) Release() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timer == nil {
		return false
	}
	h.timer.Stop()
	h.timer = nil
	h.gen++
	return true
}
