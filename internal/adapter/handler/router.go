package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/core/services"
	"github.com/srgjo27/ticketflow/internal/platform/metrics"
)

type Services struct {
	Intents   *services.PaymentIntentService
	Purchases *services.PurchaseService
	Scans     *services.ScanService
	Tickets   *services.TicketService
}

type RouterConfig struct {
	Identity          ports.IdentityResolver
	ScanRatePerSecond float64
	ScanBurst         int
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	purchases := NewPurchaseHandler(svc.Intents, svc.Purchases)
	scans := NewScanHandler(svc.Scans)
	tickets := NewTicketHandler(svc.Tickets)
	limiter := newCallerLimiter(cfg.ScanRatePerSecond, cfg.ScanBurst)

	r.Route("/api", func(api chi.Router) {
		api.Use(authenticate(cfg.Identity))

		api.Post("/payments/intents", purchases.CreatePaymentIntent)
		api.Post("/purchases/confirm", purchases.ConfirmPurchase)

		api.With(limiter.middleware).Post("/scans", scans.ScanTicket)
		api.Get("/scans", scans.ScanHistory)

		api.Get("/tickets/{id}", tickets.GetTicket)
		api.Get("/tickets/{id}/qr.png", tickets.GetTicketQR)
	})

	return r
}
