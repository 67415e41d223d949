package httpapi

import (
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter allows each client IP max requests per window, refilled
// continuously.
type RateLimiter struct {
	max    int
	window time.Duration
	every  rate.Limit
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns a limiter of limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow spends one token for key and reports whether it was available, plus
// the whole tokens left.
func (l *RateLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.every, l.max)}
		l.clients[key] = c
	}
	c.lastSeen = now

	allowed := c.limiter.AllowN(now, 1)
	remaining := int(c.limiter.TokensAt(now))
	return allowed, max(remaining, 0)
}

// sweep forgets clients idle for a full window; they would be back at a
// full bucket anyway.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.window {
			delete(l.clients, k)
		}
	}
}

// rateLimited rejects over-limit clients with 429 and sets the RateLimit-*
// headers on every response.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining := s.limiter.Allow(s.clientIP(r))
		w.Header().Set("RateLimit-Limit", strconv.Itoa(s.limiter.max))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(int(s.limiter.window.Seconds())))
		if !allowed {
			s.writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP walks back hops entries from the socket peer through
// X-Forwarded-For, right to left, and returns the address it lands on. With
// hops 0 the header is ignored, since any client can set it.
func clientIP(r *http.Request, hops int) string {
	addrs := []string{remoteHost(r.RemoteAddr)}
	if hops > 0 {
		for _, fwd := range r.Header.Values("X-Forwarded-For") {
			for _, hop := range strings.Split(fwd, ",") {
				if hop = strings.TrimSpace(hop); hop != "" {
					addrs = append(addrs, hop)
				}
			}
		}
		// addrs is peer followed by the header left to right; flip the
		// header part so index n is the nth hop back from the peer.
		slices.Reverse(addrs[1:])
	}
	return addrs[min(hops, len(addrs)-1)]
}

func (s *Server) clientIP(r *http.Request) string {
	return clientIP(r, s.cfg.Server.TrustProxy)
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
