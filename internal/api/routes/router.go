package routes

import (
	"net/http"

	"github.com/zatekoja/Clinicreportanalytics/internal/api/handlers"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/middleware"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	reportHandler    *handlers.ReportHandler
	referralHandler  *handlers.ReferralHandler
	analyticsHandler *handlers.AnalyticsHandler
	taxonomyHandler  *handlers.TaxonomyHandler
	partnerHandler   *handlers.PartnerHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	reportHandler *handlers.ReportHandler,
	referralHandler *handlers.ReferralHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	taxonomyHandler *handlers.TaxonomyHandler,
	partnerHandler *handlers.PartnerHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		reportHandler:    reportHandler,
		referralHandler:  referralHandler,
		analyticsHandler: analyticsHandler,
		taxonomyHandler:  taxonomyHandler,
		partnerHandler:   partnerHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Report upload endpoints
	r.mux.HandleFunc("POST /api/reports/tracking", r.reportHandler.UploadTracking)
	r.mux.HandleFunc("POST /api/reports/referrals", r.referralHandler.RebuildReferrals)
	r.mux.HandleFunc("GET /api/sync-history", r.reportHandler.ListSyncHistory)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/performance", r.analyticsHandler.GetPerformance)

	// Taxonomy endpoints
	r.mux.HandleFunc("GET /api/appointment-types", r.taxonomyHandler.ListAppointmentTypes)

	// Partner registry endpoints
	if r.partnerHandler != nil {
		r.mux.HandleFunc("GET /api/partners", r.partnerHandler.ListPartners)
		r.mux.HandleFunc("GET /api/partners/{id}", r.partnerHandler.GetPartner)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
