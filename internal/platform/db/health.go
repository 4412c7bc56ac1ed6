package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// Dependency is a named backing service checked alongside the database.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

// CheckDependencies pings each dependency and returns "ok" or the error text per name.
func CheckDependencies(ctx context.Context, deps []Dependency) (map[string]string, bool) {
	results := make(map[string]string, len(deps))
	healthy := true
	for _, d := range deps {
		if d.Ping == nil {
			continue
		}
		if err := d.Ping(ctx); err != nil {
			results[d.Name] = err.Error()
			healthy = false
			continue
		}
		results[d.Name] = "ok"
	}
	return results, healthy
}

// HealthHandler returns a handler for the backing-services health endpoint.
func HealthHandler(pool *pgxpool.Pool, deps ...Dependency) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		all := append([]Dependency{{Name: "postgres", Ping: pool.Ping}}, deps...)
		results, healthy := CheckDependencies(ctx, all)
		stats := GetPoolStats(pool)

		if !healthy {
			stats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"checks": results,
				"pool":   stats,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"checks": results,
			"pool":   stats,
		})
	}
}
