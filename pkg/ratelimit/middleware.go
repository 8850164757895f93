package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/agroyield/pkg/config"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

var ErrRateLimited = apperrors.New(apperrors.ErrCodeRateLimited, "Too many requests. Please try again later.")

// Middleware applies the per-IP limit to every request and offers stricter
// per-route limits for login and verification code issuance.
type Middleware struct {
	config     config.RateLimitConfig
	ipLimiter  *RateLimiter
	login      *RateLimiter
	codeIssuer *RateLimiter
}

func NewMiddleware(cfg config.RateLimitConfig, opts ...Option) *Middleware {
	return &Middleware{
		config:     cfg,
		ipLimiter:  NewRateLimiter(cfg.PerIPCapacity, cfg.PerIPRefillRate, opts...),
		login:      NewRateLimiter(cfg.LoginCapacity, cfg.LoginRefillRate, opts...),
		codeIssuer: NewRateLimiter(cfg.CodeIssueCapacity, cfg.CodeIssueRefillRate, opts...),
	}
}

// Handler enforces the per-IP limit.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.limit(m.ipLimiter, "ip", next)
}

// Login limits authentication attempts per IP.
func (m *Middleware) Login(next http.Handler) http.Handler {
	return m.limit(m.login, "login", next)
}

// CodeIssue limits the endpoints that send verification codes, per IP.
func (m *Middleware) CodeIssue(next http.Handler) http.Handler {
	return m.limit(m.codeIssuer, "code", next)
}

func (m *Middleware) limit(limiter *RateLimiter, limitType string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		ip := ClientIP(r)
		ok, wait := limiter.Allow(limitType + ":" + ip)
		if !ok {
			slog.Warn("Rate limit exceeded", "type", limitType, "ip", ip, "path", r.URL.Path, "method", r.Method)
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			apperrors.Render(w, r, ErrRateLimited.WithDetail("type", limitType))
			return
		}
		if m.config.IncludeHeaders {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Capacity()))
		}
		next.ServeHTTP(w, r)
	})
}

// RunPruner drops idle buckets every interval until ctx is done.
func (m *Middleware) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := m.ipLimiter.Prune() + m.login.Prune() + m.codeIssuer.Prune()
			if n > 0 {
				slog.Debug("Pruned idle rate limit buckets", "count", n)
			}
		}
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
