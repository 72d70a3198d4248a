package database

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Close đóng connection pool; gọi nhiều lần là no-op
func (db *PostgresDB) Close() {
	if db.Pool == nil {
		return
	}

	log.Info().Msg("[DATABASE] closing connection pool")
	db.Pool.Close()
	db.Pool = nil
}

// PoolStats là snapshot thống kê của pool, trả về trong /health
type PoolStats struct {
	TotalConns      int32         `json:"total_conns"`
	IdleConns       int32         `json:"idle_conns"`
	AcquiredConns   int32         `json:"acquired_conns"`
	MaxConns        int32         `json:"max_conns"`
	AvgAcquireDelay time.Duration `json:"avg_acquire_delay_ns"`
}

func (db *PostgresDB) Stats() *PoolStats {
	if db.Pool == nil {
		return &PoolStats{}
	}

	raw := db.Pool.Stat()
	stats := &PoolStats{
		TotalConns:    raw.TotalConns(),
		IdleConns:     raw.IdleConns(),
		AcquiredConns: raw.AcquiredConns(),
		MaxConns:      raw.MaxConns(),
	}
	if raw.AcquireCount() > 0 {
		stats.AvgAcquireDelay = raw.AcquireDuration() / time.Duration(raw.AcquireCount())
	}
	return stats
}
