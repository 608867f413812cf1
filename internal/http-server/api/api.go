package api

import (
	"WhatsGrapp/internal/config"
	"WhatsGrapp/internal/http-server/handlers/ai"
	chatHandlers "WhatsGrapp/internal/http-server/handlers/chat"
	"WhatsGrapp/internal/http-server/handlers/checkout"
	"WhatsGrapp/internal/http-server/handlers/errors"
	"WhatsGrapp/internal/http-server/handlers/key"
	"WhatsGrapp/internal/http-server/handlers/merchant"
	"WhatsGrapp/internal/http-server/handlers/product"
	"WhatsGrapp/internal/http-server/handlers/session"
	"WhatsGrapp/internal/http-server/handlers/whatsapp"
	"WhatsGrapp/internal/http-server/middleware/authenticate"
	"WhatsGrapp/internal/http-server/middleware/instrument"
	"WhatsGrapp/internal/http-server/middleware/timeout"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/metrics"
	"WhatsGrapp/internal/ws"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const (
	requestTimeout  = 30
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	chatHandlers.Core
	session.Core
	merchant.Core
	product.Core
	checkout.Core
	ai.Core
	key.Core
}

// New builds the router. bot and hub may be nil, then their routes are not mounted.
func New(conf *config.Config, log *slog.Logger, handler Handler, bot whatsapp.Bot, hub *ws.Hub) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(requestTimeout))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(instrument.Metrics)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok("ok"))
	})
	router.Handle("/metrics", metrics.Handler())

	if hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, handler, log, w, r)
		})
	}

	if bot != nil {
		router.Route("/webhook/whatsapp", func(r chi.Router) {
			r.Get("/", whatsapp.WebhookVerify(log, bot))
			r.Post("/", whatsapp.WebhookHandler(log, bot))
		})
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/chat", func(r chi.Router) {
			r.Post("/message", chatHandlers.SendMessage(log, handler))
			r.Get("/messages", chatHandlers.History(log, handler))
		})
		v1.Route("/sessions", func(r chi.Router) {
			r.Get("/stats", session.Stats(log, handler))
			r.Post("/cleanup", session.Cleanup(log, handler))
			r.Get("/{phone}", session.Get(log, handler))
			r.Delete("/{phone}", session.Reset(log, handler))
		})
		v1.Route("/merchants", func(r chi.Router) {
			r.Post("/", merchant.Create(log, handler))
			r.Get("/", merchant.List(log, handler))
			r.Get("/{id}", merchant.Get(log, handler))
			r.Get("/{id}/products", merchant.Products(log, handler))
		})
		v1.Route("/products", func(r chi.Router) {
			r.Post("/", product.Create(log, handler))
			r.Get("/{id}", product.Get(log, handler))
		})
		v1.Post("/checkout", checkout.Checkout(log, handler))
		v1.Get("/orders/{id}", checkout.Order(log, handler))
		v1.Post("/ai/chat", ai.Chat(log, handler))
		v1.Route("/key", func(r chi.Router) {
			r.Post("/new", key.Generate(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           router,
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("stopping api server")
	return s.httpServer.Shutdown(shutdownCtx)
}
