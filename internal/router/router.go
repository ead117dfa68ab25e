package router

import (
	"context"
	"net/http"
	"time"

	"care-monitor/internal/adapters/realtime"
	"care-monitor/internal/domain/activity"
	"care-monitor/internal/domain/adherence"
	"care-monitor/internal/domain/contacts"
	"care-monitor/internal/domain/emergency"
	"care-monitor/internal/domain/incidents"
	"care-monitor/internal/domain/medicines"
	"care-monitor/internal/domain/profile"
	"care-monitor/internal/middleware"
	"care-monitor/internal/platform/logger"
	"care-monitor/internal/platform/metrics"
	"care-monitor/internal/ports/gateways"
	"care-monitor/internal/ports/store"

	_ "care-monitor/internal/docs"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Store es obligatorio (memory, postgres o redis).
	Store    store.Store
	Gateways gateways.Set

	// Clock opcional: reloj real si es nil.
	Clock   clock.Clock
	Logger  logger.Logger
	Metrics *metrics.Metrics

	TickInterval    time.Duration
	GraceWindow     time.Duration
	Rehearsal       bool
	LocationTimeout time.Duration
	HoldDuration    time.Duration
	IncidentLimit   int
}

// App es el router más los motores que main tiene que arrancar/parar.
type App struct {
	Handler      http.Handler
	Scheduler    *adherence.Scheduler
	Orchestrator *emergency.Orchestrator
}

func NewRouter(opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	kv := opts.Store

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Recover(opts.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", opts.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	activitySvc := activity.NewService(kv).WithClock(opts.Clock.Now)
	medsSvc := medicines.NewService(medicines.NewStoreRepository(kv)).WithClock(opts.Clock.Now)
	contactsSvc := contacts.NewService(kv)
	profileSvc := profile.NewService(kv)
	incidentStore := incidents.NewStore(kv, opts.Clock.Now).WithLimit(opts.IncidentLimit)

	sch := adherence.NewScheduler(kv, medsSvc, adherence.Options{
		Clock:        opts.Clock,
		TickInterval: opts.TickInterval,
		GraceWindow:  opts.GraceWindow,
		Notification: opts.Gateways.Notification,
		Speech:       opts.Gateways.Speech,
		Activity:     activitySvc,
		Metrics:      opts.Metrics,
		Logger:       opts.Logger,
	})

	orch := emergency.NewOrchestrator(kv, incidentStore, emergency.Options{
		Clock:           opts.Clock,
		Gateways:        opts.Gateways,
		Contacts:        contactsSvc,
		Profile:         profileSvc,
		Rehearsal:       opts.Rehearsal,
		LocationTimeout: opts.LocationTimeout,
		HoldDuration:    opts.HoldDuration,
		Activity:        activitySvc,
		Metrics:         opts.Metrics,
		Logger:          opts.Logger,
	})

	// Cascadas: borrar una medicina limpia su registro de dosis de todos los días.
	medsSvc.OnDelete(sch.PurgeMedicine)
	medsSvc.OnDelete(func(ctx context.Context, id string) error {
		return activitySvc.Record(ctx, activity.KindMedicineRemoved, id)
	})
	medsSvc.OnCreate(func(ctx context.Context, m medicines.Medicine) {
		if err := activitySvc.Record(ctx, activity.KindMedicineAdded, m.Name); err != nil {
			opts.Logger.Warn("activity record failed", map[string]any{"error": err})
		}
	})

	// Rutas por módulo
	medicines.RegisterRoutes(r, medsSvc)
	adherence.RegisterRoutes(r, sch)
	contacts.RegisterRoutes(r, contactsSvc)
	profile.RegisterRoutes(r, profileSvc)
	emergency.RegisterRoutes(r, orch)
	incidents.RegisterRoutes(r, incidentStore)
	activity.RegisterRoutes(r, activitySvc)

	realtime.NewHandler(kv, opts.Logger,
		medicines.StoreKey,
		adherence.LogStoreKey,
		contacts.StoreKey,
		profile.StoreKey,
		incidents.ListKey,
		incidents.CurrentKey,
		activity.StoreKey,
	).RegisterRoutes(r)

	return &App{
		Handler:      r,
		Scheduler:    sch,
		Orchestrator: orch,
	}
}
