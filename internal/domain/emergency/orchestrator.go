package emergency

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"care-monitor/internal/domain/activity"
	"care-monitor/internal/domain/contacts"
	"care-monitor/internal/domain/incidents"
	"care-monitor/internal/domain/profile"
	"care-monitor/internal/platform/logger"
	"care-monitor/internal/platform/metrics"
	"care-monitor/internal/ports/gateways"
	"care-monitor/internal/ports/store"

	"github.com/benbjohnson/clock"
)

var ErrNotRunning = errors.New("no emergency sequence running for incident")

const (
	DefaultLocationTimeout = 8 * time.Second
	// DefaultShutdownWait acota cuánto espera Shutdown a los efectos en vuelo.
	DefaultShutdownWait = 5 * time.Second
)

type ContactSource interface {
	List(ctx context.Context) ([]contacts.Contact, error)
}

type ProfileSource interface {
	Get(ctx context.Context) (profile.Profile, error)
}

type Options struct {
	Clock    clock.Clock
	Gateways gateways.Set

	Contacts ContactSource
	Profile  ProfileSource

	// Rehearsal fuerza modo simulacro en todas las activaciones.
	Rehearsal       bool
	LocationTimeout time.Duration
	HoldDuration    time.Duration
	ShutdownWait    time.Duration

	Activity activity.Recorder
	Metrics  *metrics.Metrics
	Logger   logger.Logger
}

// Request es lo que llega desde el botón, la voz o la API.
type Request struct {
	Type      string
	Source    string
	Rehearsal bool
}

type Orchestrator struct {
	kv        store.Store
	incidents *incidents.Store
	factory   *incidents.Factory

	clock    clock.Clock
	gw       gateways.Set
	contacts ContactSource
	profile  ProfileSource

	rehearsal       bool
	locationTimeout time.Duration
	shutdownWait    time.Duration

	activity activity.Recorder
	metrics  *metrics.Metrics
	log      logger.Logger

	hold *HoldTrigger

	mu   sync.Mutex
	runs map[string]*run
	// draining: runs detenidos con efectos todavía en curso.
	draining map[*run]struct{}
}

// run es una activación en curso. mu serializa las transiciones del incidente;
// los efectos (gateways) se ejecutan fuera del lock.
type run struct {
	id        string
	startedAt time.Time
	rehearsal bool

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timers  []*clock.Timer
	stopped bool
	result  StepResult
	// effectsWG cuenta las llamadas a gateways en curso. Add sólo antes de
	// publicar el run o bajo mu con stopped == false.
	effectsWG sync.WaitGroup
}

func NewOrchestrator(kv store.Store, st *incidents.Store, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.LocationTimeout <= 0 {
		opts.LocationTimeout = DefaultLocationTimeout
	}
	if opts.ShutdownWait <= 0 {
		opts.ShutdownWait = DefaultShutdownWait
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	o := &Orchestrator{
		kv:              kv,
		incidents:       st,
		factory:         incidents.NewFactory(kv, opts.Clock.Now),
		clock:           opts.Clock,
		gw:              opts.Gateways,
		contacts:        opts.Contacts,
		profile:         opts.Profile,
		rehearsal:       opts.Rehearsal,
		locationTimeout: opts.LocationTimeout,
		shutdownWait:    opts.ShutdownWait,
		activity:        opts.Activity,
		metrics:         opts.Metrics,
		log:             opts.Logger.With(map[string]any{"component": "emergency"}),
		runs:            make(map[string]*run),
		draining:        make(map[*run]struct{}),
	}
	o.hold = NewHoldTrigger(opts.Clock, opts.HoldDuration, func() {
		if _, err := o.Activate(context.Background(), Request{Source: incidents.SourceManualHold}); err != nil {
			o.log.Error("hold activation failed", map[string]any{"error": err})
		}
	})
	return o
}

// Hold es el disparador de mantener presionado.
func (o *Orchestrator) Hold() *HoldTrigger { return o.hold }

// Activate crea el incidente, lo persiste con el paso Activated y arma los
// timers de los pasos siguientes. Una activación con otra en curso crea un
// incidente nuevo; la anterior sigue su propia secuencia.
func (o *Orchestrator) Activate(ctx context.Context, req Request) (incidents.Incident, error) {
	inc := o.factory.Create(ctx, incidents.Reason{
		Type:      req.Type,
		Source:    req.Source,
		Rehearsal: req.Rehearsal || o.rehearsal,
	})
	inc = Apply(StepActivated, inc, StepResult{}, inc.StartedAt)

	if err := o.incidents.Log(ctx, inc); err != nil {
		return incidents.Incident{}, fmt.Errorf("emergency: log incident: %w", err)
	}

	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		id:        inc.ID,
		startedAt: inc.StartedAt,
		rehearsal: inc.Rehearsal,
		ctx:       rctx,
		cancel:    cancel,
	}
	// alert
	r.effectsWG.Add(1)

	o.mu.Lock()
	o.runs[r.id] = r
	o.metrics.SetActiveIncident(len(o.runs) > 0)
	o.mu.Unlock()

	r.mu.Lock()
	for _, s := range Sequence[1:] {
		step := s.Step
		r.timers = append(r.timers, o.clock.AfterFunc(s.Offset, func() { o.fire(r, step) }))
	}
	r.mu.Unlock()

	o.metrics.Step(string(StepActivated))
	o.log.Info("emergency activated", map[string]any{
		"incident_id": inc.ID,
		"source":      inc.Source,
		"rehearsal":   inc.Rehearsal,
	})
	o.record(ctx, activity.KindEmergencyTriggered, fmt.Sprintf("Emergencia activada (%s)", inc.Source))

	go func() {
		defer r.effectsWG.Done()
		o.alert(r)
	}()

	return inc, nil
}

// fire corre cuando vence el timer de un paso.
func (o *Orchestrator) fire(r *run, step Step) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.effectsWG.Add(1)
	defer r.effectsWG.Done()

	at := o.clock.Now()
	res := r.result
	_, err := o.incidents.Update(r.ctx, r.id, func(inc incidents.Incident) incidents.Incident {
		return Apply(step, inc, res, at)
	})
	if step == StepResolved {
		r.stopped = true
	}
	r.mu.Unlock()

	o.metrics.Step(string(step))
	fields := map[string]any{"incident_id": r.id, "step": string(step), "elapsed_ms": at.Sub(r.startedAt).Milliseconds()}
	if err != nil {
		o.log.Error("emergency step not persisted", merge(fields, map[string]any{"error": err}))
	} else {
		o.log.Info("emergency step", fields)
	}

	switch step {
	case StepCalling:
		o.call(r)
	case StepMessaging:
		o.message(r)
	case StepLocating:
		r.effectsWG.Add(1)
		go func() {
			defer r.effectsWG.Done()
			o.locate(r)
		}()
	case StepResolved:
		o.notify(r.ctx, "Ayuda en camino", "Tus contactos ya fueron avisados.")
		o.record(r.ctx, activity.KindEmergencyResolved, "Emergencia resuelta")
		o.finish(r)
	}
}

func (o *Orchestrator) alert(r *run) {
	if o.gw.Alert == nil || r.ctx.Err() != nil {
		return
	}
	if err := o.gw.Alert.PlayTone(r.ctx); err != nil {
		o.gatewayFailed("alert", r.id, err)
	}
	if err := o.gw.Alert.Vibrate(r.ctx); err != nil {
		o.gatewayFailed("alert", r.id, err)
	}
	if err := o.gw.Alert.AcquireWakeLock(r.ctx); err != nil {
		o.gatewayFailed("alert", r.id, err)
	}
}

func (o *Orchestrator) call(r *run) {
	if r.ctx.Err() != nil {
		return
	}
	if r.rehearsal {
		o.log.Info("rehearsal: call skipped", map[string]any{"incident_id": r.id})
		return
	}
	if o.gw.Telephony == nil || o.contacts == nil {
		return
	}

	list, err := o.contacts.List(r.ctx)
	if err != nil {
		o.log.Warn("contacts unavailable", map[string]any{"incident_id": r.id, "error": err})
		return
	}
	primary, ok := contacts.Primary(list)
	if !ok {
		o.log.Warn("no contact to call", map[string]any{"incident_id": r.id})
		return
	}
	if r.ctx.Err() != nil {
		o.log.Debug("call skipped after cancel", map[string]any{"incident_id": r.id})
		return
	}
	if err := o.gw.Telephony.Call(r.ctx, primary.Phone); err != nil {
		o.gatewayFailed("telephony", r.id, err)
	}
}

func (o *Orchestrator) message(r *run) {
	if r.ctx.Err() != nil {
		return
	}
	inc, err := o.incidents.Get(r.ctx, r.id)
	if err != nil {
		o.log.Error("incident unavailable for message", map[string]any{"incident_id": r.id, "error": err})
		return
	}

	var p profile.Profile
	if o.profile != nil {
		if p, err = o.profile.Get(r.ctx); err != nil {
			o.log.Warn("profile unavailable", map[string]any{"incident_id": r.id, "error": err})
		}
	}
	var list []contacts.Contact
	if o.contacts != nil {
		if list, err = o.contacts.List(r.ctx); err != nil {
			o.log.Warn("contacts unavailable", map[string]any{"incident_id": r.id, "error": err})
		}
	}

	body := ComposeMessage(p, inc, o.clock.Now())
	notified := make([]string, 0, len(list))
	for _, c := range list {
		if r.rehearsal {
			// Simulacro: se registra a quién se habría avisado, sin enviar.
			notified = append(notified, c.Name)
			continue
		}
		if o.gw.Messaging == nil || r.ctx.Err() != nil {
			break
		}
		if err := o.gw.Messaging.Send(r.ctx, c.Phone, body); err != nil {
			o.gatewayFailed("messaging", r.id, err)
			continue
		}
		notified = append(notified, c.Name)
	}

	r.mu.Lock()
	r.result = StepResult{ContactsNotified: notified, Message: body}
	r.mu.Unlock()
}

// locate puede terminar después de Cancel: en ese caso el resultado se descarta.
func (o *Orchestrator) locate(r *run) {
	if o.gw.Location == nil {
		return
	}
	loc, err := o.gw.Location.Current(r.ctx, o.locationTimeout)
	if err != nil {
		o.gatewayFailed("location", r.id, err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		o.log.Debug("location discarded after cancel", map[string]any{"incident_id": r.id})
		return
	}

	if _, err := o.incidents.Update(r.ctx, r.id, func(inc incidents.Incident) incidents.Incident {
		return AttachLocation(inc, loc)
	}); err != nil {
		o.log.Error("location not persisted", map[string]any{"incident_id": r.id, "error": err})
		return
	}
	if err := incidents.SaveLastLocation(r.ctx, o.kv, loc); err != nil {
		o.log.Warn("last location not saved", map[string]any{"error": err})
	}
}

// Cancel detiene los timers pendientes y descarta los efectos en vuelo. El
// incidente queda activo; resolverlo es decisión de quien llama.
func (o *Orchestrator) Cancel(ctx context.Context, id string) (incidents.Incident, error) {
	r := o.take(id)
	if r == nil {
		return incidents.Incident{}, ErrNotRunning
	}
	o.stop(r)
	o.retire(r)

	inc, err := o.incidents.Update(ctx, id, func(inc incidents.Incident) incidents.Incident {
		inc.Cancelled = true
		return inc
	})
	if err != nil {
		return incidents.Incident{}, err
	}

	o.log.Info("emergency cancelled", map[string]any{"incident_id": id})
	o.record(ctx, activity.KindEmergencyCancelled, "Emergencia cancelada")
	return inc, nil
}

// Resolve es la resolución manual: detiene la secuencia (si sigue) y resuelve.
func (o *Orchestrator) Resolve(ctx context.Context, id string) (incidents.Incident, error) {
	if r := o.take(id); r != nil {
		o.stop(r)
		o.retire(r)
	}

	inc, err := o.incidents.Resolve(ctx, id)
	if err != nil {
		return incidents.Incident{}, err
	}
	o.log.Info("emergency resolved", map[string]any{"incident_id": id})
	o.record(ctx, activity.KindEmergencyResolved, "Emergencia resuelta manualmente")
	return inc, nil
}

// Running indica si la secuencia del incidente sigue en curso.
func (o *Orchestrator) Running(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.runs[id]
	return ok
}

// Shutdown cancela todas las secuencias en curso y espera, como mucho
// ShutdownWait, a que terminen las llamadas a gateways ya iniciadas.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	runs := make([]*run, 0, len(o.runs))
	for id, r := range o.runs {
		runs = append(runs, r)
		delete(o.runs, id)
	}
	o.metrics.SetActiveIncident(false)
	o.mu.Unlock()

	for _, r := range runs {
		o.stop(r)
	}

	o.mu.Lock()
	for r := range o.draining {
		runs = append(runs, r)
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, r := range runs {
			r.effectsWG.Wait()
		}
		close(done)
	}()

	// Espera en tiempo real: el reloj de la orquestación puede ser virtual.
	t := time.NewTimer(o.shutdownWait)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		o.log.Warn("emergency effects still running at shutdown", map[string]any{"runs": len(runs)})
	}
}

func (o *Orchestrator) take(id string) *run {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.runs[id]
	if !ok {
		return nil
	}
	delete(o.runs, id)
	o.metrics.SetActiveIncident(len(o.runs) > 0)
	return r
}

func (o *Orchestrator) stop(r *run) {
	r.mu.Lock()
	r.stopped = true
	for _, t := range r.timers {
		t.Stop()
	}
	r.cancel()
	r.mu.Unlock()
}

// finish cierra un run que llegó a Resolved por sí solo.
func (o *Orchestrator) finish(r *run) {
	o.take(r.id)
	r.cancel()
	o.retire(r)
}

// retire mantiene r en draining hasta que terminen sus efectos. r ya tiene
// que estar detenido.
func (o *Orchestrator) retire(r *run) {
	o.mu.Lock()
	o.draining[r] = struct{}{}
	o.mu.Unlock()

	go func() {
		r.effectsWG.Wait()
		o.mu.Lock()
		delete(o.draining, r)
		o.mu.Unlock()
	}()
}

func (o *Orchestrator) notify(ctx context.Context, title, body string) {
	if o.gw.Notification == nil {
		return
	}
	if err := o.gw.Notification.Notify(ctx, title, body); err != nil {
		o.gatewayFailed("notification", "", err)
	}
}

func (o *Orchestrator) gatewayFailed(name, incidentID string, err error) {
	o.metrics.GatewayFailed(name)
	o.log.Debug(name+" gateway failed", map[string]any{"incident_id": incidentID, "error": err})
}

func (o *Orchestrator) record(ctx context.Context, kind activity.Kind, msg string) {
	if o.activity == nil {
		return
	}
	if err := o.activity.Record(ctx, kind, msg); err != nil {
		o.log.Warn("activity record failed", map[string]any{"error": err, "kind": string(kind)})
	}
}

func merge(a, b map[string]any) map[string]any {
	out := maps.Clone(a)
	maps.Copy(out, b)
	return out
}
