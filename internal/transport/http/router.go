package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/labresults-api/internal/application/login"
	"github.com/labresults-api/internal/application/results"
	"github.com/labresults-api/internal/config"
	"github.com/labresults-api/internal/transport/http/handler"
	appmiddleware "github.com/labresults-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	loginSvc := login.NewService(login.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		Chat:             deps.Chat,
		SMSSender:        deps.SMSSender,
		CodeTTL:          cfg.CodeTTL,
	})
	resultsSvc := results.NewService(deps.ResultRepo, deps.AttachmentStore)

	// The webhook path is the only one for which a missing bot token is a
	// hard error; verification works regardless.
	var webhookSvc login.Service
	if deps.Chat != nil {
		webhookSvc = loginSvc
	}

	healthH := handler.NewHealthHandler()
	webhookH := handler.NewWebhookHandler(webhookSvc)
	verifyH := handler.NewVerifyHandler(loginSvc)
	resultsH := handler.NewResultsHandler(resultsSvc)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Post("/results", resultsH.Lookup)
		r.With(sensitiveRL.Limit).Post("/telegram/webhook", webhookH.Handle)
		r.With(sensitiveRL.Limit).Post("/verify-code", verifyH.Verify)

		// ── Bearer-phone routes ──────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.BearerPhone)

			r.Get("/results/me", resultsH.Me)
			r.Post("/results/me", resultsH.Me)
			r.Get("/results/me/attachments/*", resultsH.Attachment)
		})
	})

	return r
}
