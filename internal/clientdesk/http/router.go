package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/clientdesk/api/clients" // Swagger docs
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/service"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
	"github.com/aussiebroadwan/clientdesk/pkg/httpx"
	"github.com/aussiebroadwan/clientdesk/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	ClientService *service.ClientService
}

// NewRouter builds a router with request logging and panic recovery. When
// allowedOrigins is non-empty, browser clients from those origins may call
// the API.
func NewRouter(buildVersion string, st store.Store, logger *slog.Logger, allowedOrigins []string) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	if len(allowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", slogx.RequestIDHeader},
			ExposedHeaders: []string{slogx.RequestIDHeader},
			MaxAge:         300,
		})
		r.middlewares = append(r.middlewares, c.Handler)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerClients("/clients")
	// The browser client shipped before this server addressed the API
	// under /api.
	r.registerClients("/api/clients")
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			clientdesk API
//	@version		0.1.0
//	@description	Create, list, search, update and delete client records.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/clientdesk
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerClients(prefix string) {
	h := &ClientsHandler{ClientService: r.ClientService}

	read := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.ReadLimit))
	}
	write := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.WriteLimit))
	}

	r.Mux.Handle("GET "+prefix, read(h.HandleList))
	r.Mux.Handle("GET "+prefix+"/{id}", read(h.HandleGet))
	r.Mux.Handle("POST "+prefix, write(h.HandleCreate))
	r.Mux.Handle("PUT "+prefix+"/{id}", write(h.HandleUpdate))
	r.Mux.Handle("DELETE "+prefix+"/{id}", write(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
