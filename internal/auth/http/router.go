package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/auth/service"
	"github.com/aussiebroadwan/gatekeep/internal/auth/store"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"

	_ "github.com/aussiebroadwan/gatekeep/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	tokens       *jwtx.Issuer
	limits       httpx.Limits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
}

func NewRouter(
	verifier jwtx.Verifier,
	tokens *jwtx.Issuer,
	limits httpx.Limits,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		tokens:       tokens,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatekeep Authentication Service API
//	@version		0.1.0
//	@description	Username and password authentication with optional TOTP two factor authentication.
//	@description
//	@description				Access tokens are HS256 signed JWTs and are not stored server side.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gatekeep
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// POST /auth/register - strict by IP (account creation)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimit(r.limits.Strict, httpx.ClientIP),
		),
	)

	// POST /auth/token - strict by IP + username (password guessing)
	r.Mux.Handle("POST /auth/token",
		httpx.Chain(http.HandlerFunc(h.HandleToken),
			httpx.RateLimit(r.limits.Strict, httpx.Composite(":", httpx.ClientIP, httpx.FormField("username"))),
		),
	)

	// POST /auth/token/2fa - strict by IP and by target user (code guessing).
	// The user_id bucket holds when the client rotates forwarding headers.
	r.Mux.Handle("POST /auth/token/2fa",
		httpx.Chain(http.HandlerFunc(h.HandleTokenTwoFactor),
			httpx.RateLimit(r.limits.Strict, httpx.ClientIP),
			httpx.RateLimit(r.limits.Strict, httpx.JSONField("user_id")),
		),
	)

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimit(r.limits.Lenient, httpx.Subject),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{AuthService: r.AuthService}

	// POST /auth/2fa/enable - moderate by user
	r.Mux.Handle("POST /auth/2fa/enable",
		httpx.Chain(http.HandlerFunc(h.HandleEnable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimit(r.limits.Moderate, httpx.Subject),
		),
	)

	// POST /auth/2fa/confirm - strict by user (code guessing)
	r.Mux.Handle("POST /auth/2fa/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimit(r.limits.Strict, httpx.Subject),
		),
	)
}

func (r *Router) registerSystem() {
	// Health probes - lenient by IP, monitors poll often
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimit(r.limits.Lenient, httpx.ClientIP),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.tokens, r.verifier),
			httpx.RateLimit(r.limits.Lenient, httpx.ClientIP),
		),
	)
}
