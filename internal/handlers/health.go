package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool and *database.RedisClients.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
	now   func() time.Time
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, now: time.Now}
}

type healthResponse struct {
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	Database  bool   `json:"database"`
	Redis     bool   `json:"redis"`
}

// Health always answers 200; the dependency flags are informational.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, healthResponse{
		OK:        true,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		Database:  reachable(ctx, h.db),
		Redis:     reachable(ctx, h.redis),
	})
}

func reachable(ctx context.Context, p Pinger) bool {
	return p != nil && p.Ping(ctx) == nil
}
