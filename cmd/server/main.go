package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/sharetribe/web-template-sub009/cmd/server/config"
	"github.com/sharetribe/web-template-sub009/internal/checkout"
	"github.com/sharetribe/web-template-sub009/internal/httpapi"
	"github.com/sharetribe/web-template-sub009/internal/observability"
	"github.com/sharetribe/web-template-sub009/internal/process"
	"github.com/sharetribe/web-template-sub009/internal/realtime"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context) error {
	registry, err := process.BuildDefaultRegistry()
	if err != nil {
		return err
	}

	httpCfg, err := config.LoadHTTP()
	if err != nil {
		return err
	}
	sessCfg, err := config.LoadSession()
	if err != nil {
		return err
	}
	relCfg, err := config.LoadReliability()
	if err != nil {
		return err
	}

	sessions, cleanup := checkout.BuildSessionStore(ctx, sessCfg.DatabaseURL, sessCfg.RedisURL, sessCfg.TTL, log.Printf)
	defer cleanup()

	// The ledger and payment processor are external services; until their
	// integrations are configured the in-memory fakes stand in, which is
	// enough for local development against the full checkout flow.
	baseLedger := checkout.NewInMemoryLedgerClient()
	basePayments := checkout.NewInMemoryPaymentClient(baseLedger)
	log.Println("using in-memory ledger and payment clients")

	limiter := checkout.NewRateLimiter(relCfg.RateLimitInterval, relCfg.RateLimitBurst)
	breaker := checkout.NewCircuitBreaker(checkout.CircuitBreakerConfig{
		MaxFailures:  relCfg.BreakerMaxFailures,
		ResetTimeout: relCfg.BreakerResetTimeout,
	})
	fetchRetry := checkout.RetryPolicy{
		MaxAttempts: relCfg.FetchRetryAttempts,
		BaseDelay:   relCfg.FetchRetryBaseDelay,
		MaxDelay:    relCfg.FetchRetryMaxDelay,
	}
	ledger := checkout.NewReliableLedgerClient(baseLedger, limiter, breaker, fetchRetry)
	payments := checkout.NewReliablePaymentClient(basePayments, limiter, breaker)

	hub := realtime.NewHub()
	go hub.Run()

	metrics := observability.NewMetrics()

	sequencer := checkout.NewSequencer(registry, ledger, payments, sessions,
		checkout.WithNotifier(func(txID, transitionName, state string) {
			hub.BroadcastTransition(realtime.TransitionEvent{
				TransactionID: txID,
				Transition:    transitionName,
				State:         state,
			})
		}),
		checkout.WithStepObserver(func(step string) func(error) {
			span := metrics.StartStep(step)
			return span.End
		}),
	)

	router := chi.NewRouter()
	handler := &httpapi.Handler{
		Registry:  registry,
		Sequencer: sequencer,
		Sessions:  sessions,
		Metrics:   metrics,
	}
	handler.Register(router)
	router.Handle("/metrics", observability.Handler(metrics))
	router.Get("/ws", serveWS(hub))

	server := &http.Server{Addr: httpCfg.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server running on %s", httpCfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

var upgrader = websocket.Upgrader{
	// The web layer fronts this server; same-origin enforcement is its job.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func serveWS(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade: %v", err)
			return
		}
		hub.Register <- conn
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.Unregister <- conn
					return
				}
			}
		}()
	}
}
