package adherence

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"care-monitor/internal/domain/activity"
	"care-monitor/internal/domain/medicines"
	"care-monitor/internal/platform/logger"
	"care-monitor/internal/platform/metrics"
	"care-monitor/internal/ports/gateways"
	"care-monitor/internal/ports/store"

	"github.com/benbjohnson/clock"
)

// ErrUnknownDose: la medicina o el horario no existen. El estado del motor no cambia.
var ErrUnknownDose = errors.New("unknown dose")

const DefaultTickInterval = 30 * time.Second

// MedicineSource es lo que el scheduler necesita del catálogo de medicinas.
type MedicineSource interface {
	List(ctx context.Context) ([]medicines.Medicine, error)
}

type Options struct {
	Clock        clock.Clock
	TickInterval time.Duration
	GraceWindow  time.Duration

	Notification gateways.NotificationGateway
	Speech       gateways.SpeechGateway

	Activity activity.Recorder
	Metrics  *metrics.Metrics
	Logger   logger.Logger
}

// dedupeKey: una notificación por (día, medicina, horario, minuto actual).
type dedupeKey struct {
	date       string
	medicineID string
	time       medicines.TimeOfDay
	firedAt    medicines.TimeOfDay
}

type Scheduler struct {
	store store.Store
	meds  MedicineSource

	clock    clock.Clock
	interval time.Duration
	grace    time.Duration

	notify gateways.NotificationGateway
	speech gateways.SpeechGateway

	activity activity.Recorder
	metrics  *metrics.Metrics
	log      logger.Logger

	mu          sync.Mutex
	currentDate string
	notified    map[dedupeKey]struct{}
}

func NewScheduler(s store.Store, meds MedicineSource, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.GraceWindow <= 0 {
		opts.GraceWindow = DefaultGraceWindow
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	return &Scheduler{
		store:    s,
		meds:     meds,
		clock:    opts.Clock,
		interval: opts.TickInterval,
		grace:    opts.GraceWindow,
		notify:   opts.Notification,
		speech:   opts.Speech,
		activity: opts.Activity,
		metrics:  opts.Metrics,
		log:      opts.Logger.With(map[string]any{"component": "adherence"}),
		notified: make(map[dedupeKey]struct{}),
	}
}

// Run pide permiso de notificaciones una vez, hace un tick inmediato y luego
// uno cada TickInterval hasta que ctx termine.
func (s *Scheduler) Run(ctx context.Context) error {
	s.requestPermission(ctx)

	t := s.clock.Ticker(s.interval)
	defer t.Stop()

	s.tickLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.tickLogged(ctx)
		}
	}
}

func (s *Scheduler) tickLogged(ctx context.Context) {
	if err := s.Tick(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("adherence tick failed", map[string]any{"error": err})
	}
}

func (s *Scheduler) requestPermission(ctx context.Context) {
	if s.notify == nil {
		return
	}
	p, err := s.notify.RequestPermission(ctx)
	if err != nil {
		s.log.Debug("notification permission unavailable", map[string]any{"error": err})
		return
	}
	s.log.Info("notification permission", map[string]any{"permission": string(p)})
}

// Tick: rollover de día, clasificación (persistida una vez) y recordatorios.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	today := DateKey(now)
	nowTOD := medicines.TimeOfDayOf(now)

	meds, err := s.meds.List(ctx)
	if err != nil {
		return fmt.Errorf("adherence: list medicines: %w", err)
	}

	log, err := s.loadLog(ctx)
	if err != nil {
		return err
	}

	changed := false
	if s.currentDate != today {
		if _, ok := log[today]; !ok {
			log[today] = DayLog{}
			changed = true
		}
		s.notified = make(map[dedupeKey]struct{})
		s.currentDate = today
		s.log.Info("adherence day started", map[string]any{"date": today})
	}

	day := log[today]
	if day == nil {
		day = DayLog{}
		log[today] = day
	}

	var missed []string

	// Dosis de anoche cuya gracia vence pasada la medianoche.
	if prev := log[DateKey(now.AddDate(0, 0, -1))]; len(prev) > 0 {
		names := make(map[string]string, len(meds))
		for _, m := range meds {
			names[m.ID] = m.Name
		}
		for k, e := range prev {
			if e.Status == StatusMissed || ClassifyPreviousDay(e, k.Time(), nowTOD, s.grace) != StatusMissed {
				continue
			}
			at := now
			prev[k] = DoseEntry{Status: StatusMissed, MissedAt: &at}
			changed = true

			name, ok := names[k.MedicineID()]
			if !ok {
				name = k.MedicineID()
			}
			missed = append(missed, fmt.Sprintf("%s %s", name, k.Time()))
		}
	}

	for _, m := range meds {
		statuses := Classify(m.ID, m.ScheduledTimes, day, nowTOD, s.grace)
		for _, t := range m.ScheduledTimes {
			key := KeyOf(m.ID, t)
			entry, has := day[key]

			if !has {
				// Día nuevo o medicina nueva: arranca en pending.
				day[key] = DoseEntry{Status: StatusPending}
				changed = true
			}

			if statuses[t] == StatusMissed && entry.Status != StatusMissed && entry.Status != StatusTaken {
				at := now
				day[key] = DoseEntry{Status: StatusMissed, MissedAt: &at}
				changed = true
				missed = append(missed, fmt.Sprintf("%s %s", m.Name, t))
			}
		}
	}

	// Un log sin guardar no frena los recordatorios; los missed se registran
	// en el tick que consiga guardarlo.
	var saveErr error
	if changed {
		if err := store.SetJSON(ctx, s.store, LogStoreKey, log); err != nil {
			saveErr = fmt.Errorf("adherence: save log: %w", err)
			missed = nil
		}
	}

	for _, label := range missed {
		s.metrics.DoseMissed()
		s.record(ctx, activity.KindDoseMissed, label)
	}

	for _, m := range meds {
		for _, t := range m.ScheduledTimes {
			if t != nowTOD {
				continue
			}
			k := dedupeKey{date: today, medicineID: m.ID, time: t, firedAt: nowTOD}
			if _, done := s.notified[k]; done {
				continue
			}
			s.notified[k] = struct{}{}
			s.remind(ctx, m, t)
		}
	}

	return saveErr
}

func (s *Scheduler) remind(ctx context.Context, m medicines.Medicine, t medicines.TimeOfDay) {
	s.metrics.ReminderFired()
	fields := map[string]any{"medicine_id": m.ID, "time": string(t)}

	body := fmt.Sprintf("%s (%s)", m.Name, t)
	if m.Instructions != "" {
		body += ". " + m.Instructions
	}

	if s.notify != nil {
		if err := s.notify.Notify(ctx, "Hora de tu medicina", body); err != nil {
			s.gatewayFailed("notification", err, fields)
		}
	}
	if s.speech != nil {
		text := "Es hora de tomar " + m.Name
		if m.Instructions != "" {
			text += ". " + m.Instructions
		}
		if err := s.speech.Speak(ctx, text, m.VoiceLocale); err != nil {
			s.gatewayFailed("speech", err, fields)
		}
	}
	s.log.Info("dose reminder", fields)
}

func (s *Scheduler) gatewayFailed(name string, err error, fields map[string]any) {
	s.metrics.GatewayFailed(name)
	s.log.Debug(name+" gateway failed", merge(fields, map[string]any{"error": err}))
}

// MarkTaken marca la dosis de hoy como tomada. Taken es terminal: si ya estaba
// tomada se devuelve el entry existente sin tocar TakenAt.
func (s *Scheduler) MarkTaken(ctx context.Context, medicineID string, t medicines.TimeOfDay) (DoseEntry, error) {
	medicineID = strings.TrimSpace(medicineID)

	meds, err := s.meds.List(ctx)
	if err != nil {
		return DoseEntry{}, err
	}
	var med *medicines.Medicine
	for i := range meds {
		if meds[i].ID == medicineID && meds[i].HasTime(t) {
			med = &meds[i]
			break
		}
	}
	if med == nil {
		return DoseEntry{}, ErrUnknownDose
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	today := DateKey(now)

	log, err := s.loadLog(ctx)
	if err != nil {
		return DoseEntry{}, err
	}
	day := log[today]
	if day == nil {
		day = DayLog{}
		log[today] = day
	}

	key := KeyOf(medicineID, t)
	if cur, ok := day[key]; ok && cur.Status == StatusTaken {
		return cur, nil
	}

	at := now
	entry := DoseEntry{Status: StatusTaken, TakenAt: &at}
	day[key] = entry
	if err := store.SetJSON(ctx, s.store, LogStoreKey, log); err != nil {
		return DoseEntry{}, fmt.Errorf("adherence: save log: %w", err)
	}

	s.metrics.DoseTaken()
	s.record(ctx, activity.KindDoseTaken, fmt.Sprintf("%s %s", med.Name, t))
	return entry, nil
}

// PurgeMedicine borra las dosis de la medicina en todos los días. Pensado como
// medicines.DeleteHook.
func (s *Scheduler) PurgeMedicine(ctx context.Context, medicineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.loadLog(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, day := range log {
		for k := range day {
			if k.MedicineID() == medicineID {
				delete(day, k)
				removed++
			}
		}
	}
	for k := range s.notified {
		if k.medicineID == medicineID {
			delete(s.notified, k)
		}
	}
	if removed == 0 {
		return nil
	}

	if err := store.SetJSON(ctx, s.store, LogStoreKey, log); err != nil {
		return fmt.Errorf("adherence: save log: %w", err)
	}
	s.log.Info("dose log purged", map[string]any{"medicine_id": medicineID, "entries": removed})
	return nil
}

// Today reclasifica las dosis de hoy sin mutar nada.
func (s *Scheduler) Today(ctx context.Context) ([]DoseView, error) {
	meds, err := s.meds.List(ctx)
	if err != nil {
		return nil, err
	}
	log, err := s.loadLog(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	day := log[DateKey(now)]
	nowTOD := medicines.TimeOfDayOf(now)

	out := make([]DoseView, 0)
	for _, m := range meds {
		for _, t := range m.ScheduledTimes {
			entry := day[KeyOf(m.ID, t)]
			v := DoseView{
				MedicineID:   m.ID,
				MedicineName: m.Name,
				Time:         t,
				Status:       ClassifyDose(entry, t, nowTOD, s.grace),
			}
			switch v.Status {
			case StatusTaken:
				v.TakenAt = entry.TakenAt
			case StatusMissed:
				v.MissedAt = entry.MissedAt
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// Log devuelve el registro completo (todas las fechas).
func (s *Scheduler) Log(ctx context.Context) (DailyLog, error) {
	return s.loadLog(ctx)
}

func (s *Scheduler) loadLog(ctx context.Context) (DailyLog, error) {
	log := DailyLog{}
	if _, err := store.GetJSON(ctx, s.store, LogStoreKey, &log); err != nil {
		return nil, fmt.Errorf("adherence: load log: %w", err)
	}
	if log == nil {
		log = DailyLog{}
	}
	return log, nil
}

func (s *Scheduler) record(ctx context.Context, kind activity.Kind, msg string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, kind, msg); err != nil {
		s.log.Warn("activity record failed", map[string]any{"error": err, "kind": string(kind)})
	}
}

func merge(a, b map[string]any) map[string]any {
	out := maps.Clone(a)
	maps.Copy(out, b)
	return out
}
