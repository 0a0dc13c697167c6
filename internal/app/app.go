// Package app builds the coverage services from configuration and mounts
// them on a chi router. The HTTP server and the operator CLI share it.
package app

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mountly/coverage-backend/internal/auth"
	"github.com/mountly/coverage-backend/internal/availability"
	"github.com/mountly/coverage-backend/internal/config"
	"github.com/mountly/coverage-backend/internal/coverage"
	"github.com/mountly/coverage-backend/internal/middleware"
	"github.com/mountly/coverage-backend/internal/retry"
	"github.com/mountly/coverage-backend/internal/workers"
	"github.com/mountly/coverage-backend/internal/zcta"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"gorm.io/gorm"
)

type App struct {
	Config config.Config

	Boundaries   *zcta.Service
	Places       *zipcode.Lookup
	Validator    *zcta.Validator
	Workers      *workers.Repository
	Coverage     *coverage.Reconciler
	Availability *availability.Finder
}

// New wires every service. db may be nil for commands that only touch the
// boundary data; database-backed calls then fail.
func New(cfg config.Config, db *gorm.DB) *App {
	boundaries := zcta.NewService(zcta.NewSource(cfg.BoundarySource))
	places := zipcode.NewLookup(zipcode.NewClient(cfg.ZipLookupBaseURL, zipcode.WithRateLimit(cfg.ZipLookupRPS)))

	a := &App{Config: cfg, Boundaries: boundaries, Places: places}

	if db == nil {
		a.Validator = zcta.NewValidator(boundaries, places, nil)
		return a
	}

	repo := workers.NewRepository(db, boundaries)
	a.Workers = repo
	a.Validator = zcta.NewValidator(boundaries, places, repo)
	a.Coverage = coverage.NewReconciler(a.Validator, coverage.NewDBSource(repo), coverage.WithTTL(cfg.CoverageCacheTTL))
	repo.SetInvalidator(a.Coverage)

	policy := retry.Linear("availability", cfg.AvailabilityMaxRetries, cfg.AvailabilityRetryBaseDelay)
	a.Availability = availability.NewFinder(availability.NewGormStore(db), policy)
	return a
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

// Router mounts every feature. Database-backed routes are skipped when the
// App was built without a database.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(a.Config.AllowedOrigins...))

	r.Get("/", RootHandler)
	r.Mount("/zcta", zcta.SetupRoutes(a.Boundaries, a.Validator))

	if a.Workers == nil {
		r.Mount("/zipcodes", zipcode.SetupRoutes(a.Places, nil))
	} else {
		admin := middleware.RequireAdmin(auth.SessionInfo{}, auth.SessionInfo{})

		r.Mount("/zipcodes", zipcode.SetupRoutes(a.Places, admin))
		r.Mount("/auth", auth.SetupRoutes())
		r.Mount("/coverage", coverage.SetupRoutes(a.Coverage, admin))
		r.Mount("/availability", availability.SetupRoutes(a.Availability))
		r.Mount("/workers", workers.SetupRoutes(a.Workers, admin))
	}

	return r
}
