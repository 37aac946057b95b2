package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit allows Requests per Window, with up to Burst requests at once.
type Limit struct {
	Requests int           `env:"REQUESTS"`
	Window   time.Duration `env:"WINDOW"`
	Burst    int           `env:"BURST"`
}

// Limits groups the profiles used by the router. Strict guards credential
// checks, Moderate covers authenticated writes, Lenient is for health probes.
type Limits struct {
	Strict   Limit `envPrefix:"STRICT_"`
	Moderate Limit `envPrefix:"MODERATE_"`
	Lenient  Limit `envPrefix:"LENIENT_"`
}

// DefaultLimits returns the production profiles.
func DefaultLimits() Limits {
	return Limits{
		Strict:   Limit{Requests: 5, Window: time.Minute, Burst: 5},
		Moderate: Limit{Requests: 20, Window: time.Minute, Burst: 20},
		Lenient:  Limit{Requests: 100, Window: time.Minute, Burst: 100},
	}
}

func (l Limit) perSecond() rate.Limit {
	if l.Requests <= 0 || l.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

// KeyFunc groups requests into rate limit buckets. An empty key bypasses the
// limiter.
type KeyFunc func(*http.Request) string

// ClientIP returns the caller address, preferring the first X-Forwarded-For
// entry and then X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Subject keys on the authenticated token subject. It must run after
// AuthnMiddleware.
func Subject(r *http.Request) string {
	return SubjectFromContext(r.Context())
}

// FormField keys on a url-encoded form or query parameter.
func FormField(name string) KeyFunc {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.FormValue(name)
	}
}

// JSONField keys on a top-level field of a JSON object body. Names match
// case-insensitively and the last occurrence wins, which is how encoding/json
// fills the handler's struct from the same body. The body is restored for the
// handler.
func JSONField(name string) KeyFunc {
	return func(r *http.Request) string {
		if r.Body == nil || r.Body == http.NoBody {
			return ""
		}

		buf, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
		if err != nil || len(buf) > MaxBodyBytes {
			return ""
		}
		return jsonField(buf, name)
	}
}

type replayBody struct {
	io.Reader
	io.Closer
}

func jsonField(body []byte, name string) string {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ""
	}

	var key string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return ""
		}
		if k, _ := tok.(string); !strings.EqualFold(k, name) {
			continue
		}

		switch v := v.(type) {
		case string:
			key = v
		case json.Number:
			key = v.String()
		default:
			key = ""
		}
	}
	return key
}

// Composite joins the non-empty keys of fns with sep.
func Composite(sep string, fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter holds one token bucket per key. Buckets idle for longer than the
// window are swept lazily.
type Limiter struct {
	limit Limit
	key   KeyFunc
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewLimiter builds a Limiter for l keyed by key.
func NewLimiter(l Limit, key KeyFunc) *Limiter {
	return &Limiter{
		limit:     l,
		key:       key,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// Allow consumes a token for key. When refused it reports how long until the
// next token is available.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit.perSecond(), max(l.limit.Burst, 1))}
		l.visitors[key] = v
	}
	v.seen = now
	l.sweep(now)
	l.mu.Unlock()

	r := v.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, l.limit.Window
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// sweep drops idle buckets. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	idle := max(l.limit.Window, time.Minute)
	if now.Sub(l.lastSweep) < idle {
		return
	}
	l.lastSweep = now
	for k, v := range l.visitors {
		if now.Sub(v.seen) > idle {
			delete(l.visitors, k)
		}
	}
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.key(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.Allow(key)
			if !ok {
				retryAfter := max(int(wait.Round(time.Second).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit.Requests))
				w.Header().Set("X-RateLimit-Window", l.limit.Window.String())

				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"path", r.URL.Path,
					"retry_after", retryAfter,
				)
				WriteDetail(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit is shorthand for NewLimiter(l, key).Middleware().
func RateLimit(l Limit, key KeyFunc) Middleware {
	return NewLimiter(l, key).Middleware()
}
