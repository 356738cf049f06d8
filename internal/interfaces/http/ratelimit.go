package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
)

// ResetRateLimiter limita las solicitudes de reseteo por cliente (IP) dentro
// de una ventana fija. El reloj es inyectable para poder probar el límite sin
// esperas reales.
type ResetRateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time
	lastGC time.Time
}

// NewResetRateLimiter construye el limitador con max solicitudes por ventana.
func NewResetRateLimiter(max int, window time.Duration) *ResetRateLimiter {
	return &ResetRateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (para tests).
func (rl *ResetRateLimiter) WithClock(now func() time.Time) *ResetRateLimiter {
	rl.now = now
	return rl
}

// Allow registra un intento del cliente y decide si pasa.
func (rl *ResetRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	// Eviction de clientes inactivos para que el mapa no crezca sin límite.
	if now.Sub(rl.lastGC) > rl.window {
		for k, v := range rl.hits {
			if len(v) == 0 || v[len(v)-1].Before(cutoff) {
				delete(rl.hits, k)
			}
		}
		rl.lastGC = now
	}

	recent := rl.hits[client][:0]
	for _, t := range rl.hits[client] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= rl.max {
		rl.hits[client] = recent
		return false
	}
	rl.hits[client] = append(recent, now)
	return true
}

// Middleware devuelve el handler Fiber que aplica el límite por IP.
func (rl *ResetRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code: "TOO_MANY_REQUESTS", Message: "demasiadas solicitudes, intenta más tarde",
			})
		}
		return c.Next()
	}
}
