// Command loadtest races concurrent buyers for a small event and concurrent
// scanners for one ticket against an in-process server, then checks that no
// seat was oversold and the ticket was admitted once.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/srgjo27/ticketflow/internal/adapter/auth"
	"github.com/srgjo27/ticketflow/internal/adapter/eventbus"
	"github.com/srgjo27/ticketflow/internal/adapter/handler"
	"github.com/srgjo27/ticketflow/internal/adapter/repository/memory"
	"github.com/srgjo27/ticketflow/internal/client"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/core/services"
	"github.com/srgjo27/ticketflow/internal/platform/logger"
)

const (
	jwtSecret = "loadtest-secret"
	eventID   = "loadtest-event"
	venueID   = "loadtest-venue"
	scannerID = "loadtest-scanner"
)

// instantProcessor reports every intent as captured so confirmation runs the
// full reconciliation path without a real payment service.
type instantProcessor struct {
	mu      sync.Mutex
	intents map[string]*domain.PaymentIntent
	refunds atomic.Int32
}

func (p *instantProcessor) CreateCustomer(_ context.Context, params ports.CustomerParams) (string, error) {
	return "cus_" + params.UserID, nil
}

func (p *instantProcessor) CreateIntent(_ context.Context, params ports.IntentParams) (*domain.PaymentIntent, error) {
	id := "pi_" + uuid.NewString()
	intent := &domain.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       domain.IntentSucceeded,
		Amount:       params.Amount,
		Currency:     params.Currency,
		Metadata:     params.Metadata,
	}

	p.mu.Lock()
	p.intents[id] = intent
	p.mu.Unlock()

	return intent, nil
}

func (p *instantProcessor) RetrieveIntent(_ context.Context, id string) (*domain.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	intent, ok := p.intents[id]
	if !ok {
		return nil, errors.New("no such payment intent")
	}
	cp := *intent

	return &cp, nil
}

func (p *instantProcessor) CreateRefund(_ context.Context, id string, _ domain.RefundReason) (string, error) {
	p.refunds.Add(1)
	return "re_" + id, nil
}

func main() {
	buyers := flag.Int("buyers", 50, "concurrent buyers")
	capacity := flag.Int("capacity", 5, "event capacity")
	scanners := flag.Int("scanners", 20, "concurrent scans of one ticket")
	flag.Parse()

	logger.Setup("warn", true)

	store := memory.NewStore(memory.WithMaxAttempts(*buyers + 5))
	store.SeedEvent(domain.Event{
		ID:         eventID,
		Name:       "Capacity Stress Test",
		VenueID:    venueID,
		Price:      decimal.RequireFromString("10.00"),
		MaxTickets: *capacity,
		StartTime:  time.Now(),
	})
	store.SeedUser(domain.UserProfile{UID: scannerID, Role: domain.RoleScanner, VenueID: venueID, Active: true})

	processor := &instantProcessor{intents: make(map[string]*domain.PaymentIntent)}
	resolver := auth.NewResolver(jwtSecret, "", store)
	signer := services.NewTicketSigner("loadtest-hash-secret")
	validator := services.NewInventoryValidator(store, nil)
	publisher := eventbus.NoopPublisher{}

	srv := httptest.NewServer(handler.NewRouter(handler.Services{
		Intents:   services.NewPaymentIntentService(store, store, processor, validator, "usd"),
		Purchases: services.NewPurchaseService(store, processor, validator, services.NewTicketIssuer(signer), nil, publisher),
		Scans:     services.NewScanService(store, store, resolver, signer, publisher, time.UTC),
		Tickets:   services.NewTicketService(store),
	}, handler.RouterConfig{Identity: resolver, ScanRatePerSecond: 1000, ScanBurst: *scanners}))
	defer srv.Close()

	ctx := context.Background()

	fmt.Println("═══════════════════════════════════════════")
	fmt.Println("  ticketflow: Concurrency Stress Test")
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("Buyers   : %d\nCapacity : %d\n\n", *buyers, *capacity)

	start := time.Now()
	outcomes, firstTicket := purchase(ctx, srv.URL, *buyers)
	fmt.Printf("Purchases finished in %s\n", time.Since(start))
	for reason, n := range outcomes {
		fmt.Printf("  %-24s %d\n", reason, n)
	}

	issued := len(store.Tickets(eventID))
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read event")
	}
	fmt.Printf("\nStore state  →  tickets=%d  ticketsSold=%d  refunds=%d\n", issued, event.TicketsSold, processor.refunds.Load())

	failed := false
	if issued > *capacity || event.TicketsSold != issued {
		fmt.Printf("❌  FAIL: oversold: %d tickets for %d seats\n", issued, *capacity)
		failed = true
	}

	if firstTicket != "" {
		admitted := scan(ctx, srv.URL, firstTicket, *scanners)
		fmt.Printf("\nScans of %s: %d admitted out of %d\n", firstTicket, admitted, *scanners)
		if admitted != 1 {
			fmt.Printf("❌  FAIL: expected exactly 1 admission, got %d\n", admitted)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("\n✅  PASS: no overselling, single admission")
}

func token(uid string) string {
	tok, err := auth.SignToken(jwtSecret, "", uid, uid+"@loadtest.local", domain.RoleUser, "", time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}

	return tok
}

func purchase(ctx context.Context, baseURL string, buyers int) (map[string]int, string) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	outcomes := make(map[string]int)
	firstTicket := ""

	record := func(key, ticketID string) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[key]++
		if firstTicket == "" && ticketID != "" {
			firstTicket = ticketID
		}
	}

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			c := client.New(baseURL, token(fmt.Sprintf("buyer-%03d", n)), client.WithConfirmRetry(3, 50*time.Millisecond))

			intent, err := c.CreatePaymentIntent(ctx, eventID)
			if err != nil {
				record(reasonOf(err), "")
				return
			}

			p, err := c.ConfirmPurchase(ctx, intent.PaymentIntentID)
			if err != nil {
				record(reasonOf(err), "")
				return
			}
			record("ISSUED", p.TicketID)
		}(i)
	}
	wg.Wait()

	return outcomes, firstTicket
}

func scan(ctx context.Context, baseURL, ticketID string, scanners int) int {
	var wg sync.WaitGroup
	var admitted atomic.Int32

	c := client.New(baseURL, token(scannerID))
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := c.ScanTicket(ctx, client.ScanInput{TicketID: ticketID})
			if err != nil {
				log.Warn().Err(err).Msg("scan failed")
				return
			}
			if res.Result == string(domain.ScanSuccess) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	return int(admitted.Load())
}

func reasonOf(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason
	}

	return "TRANSPORT_ERROR"
}
