package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"izakaya/middleware/ratelimit/application"
	"izakaya/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) string

// RejectFunc escreve a resposta de bloqueio. O padrão é http.Error com o texto
// do status.
type RejectFunc func(w http.ResponseWriter, r *http.Request, status int)

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	OnReject            RejectFunc
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

type windowInfo interface {
	Max() int
	Window() time.Duration
}

// windowUsage é opcional: com ele o middleware manda X-RateLimit-Remaining.
type windowUsage interface {
	windowInfo
	Len(domain.Key) int
}

const UnknownClient = "unknown"

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if ip := firstForwarded(r); ip != "" {
				return ip
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return UnknownClient
	}
}

// ForwardedKeyFunc identifica o cliente só pelos headers do proxy da frente:
// primeiro IP do X-Forwarded-For, depois X-Real-IP, senão "unknown".
//
// Todos os clientes sem header caem no mesmo bucket "unknown" (e, atrás de NAT,
// compartilham o mesmo limite).
func ForwardedKeyFunc() KeyFunc {
	return func(r *http.Request) string {
		if ip := firstForwarded(r); ip != "" {
			return ip
		}
		if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
			return v
		}
		return UnknownClient
	}
}

// firstForwarded pega o primeiro IP do X-Forwarded-For (cliente original).
func firstForwarded(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, _ *http.Request, status int) {
			http.Error(w, http.StatusText(status), status)
		}
	}

	svc := application.Service{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				switch info := opts.Store.(type) {
				case rateInfo:
					w.Header().Set("X-RateLimit-RPS", formatFloat(info.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(info.Burst()))
				case windowInfo:
					w.Header().Set("X-RateLimit-Limit", formatInt(info.Max()))
					w.Header().Set("X-RateLimit-Window", formatFloat(info.Window().Seconds()))
				}
			}

			dec := svc.Decide(r.Context(), domain.Key(key))
			if u, ok := opts.Store.(windowUsage); ok && opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Remaining", formatInt(max(0, u.Max()-u.Len(domain.Key(key)))))
			}
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}
			if !dec.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter.Seconds()))
				opts.OnReject(w, r, opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
