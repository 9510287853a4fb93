package scheduler

import (
	"context"
	"time"
)

// EvictIdleTask is the name of the task that frees idle table seats
const EvictIdleTask = "evict-idle-tables"

// DefaultEvictionInterval is how often idle seats are checked when no interval is configured
const DefaultEvictionInterval = 5 * time.Minute

// Evictor is implemented by the table manager
type Evictor interface {
	EvictIdle(ctx context.Context) int
	Seats() int
}

// TableMaintenance runs housekeeping for the blackjack tables
type TableMaintenance struct {
	scheduler *Scheduler
	tables    Evictor
}

// NewTableMaintenance registers the table housekeeping tasks on the given scheduler
func NewTableMaintenance(scheduler *Scheduler, tables Evictor, interval time.Duration) *TableMaintenance {
	if interval <= 0 {
		interval = DefaultEvictionInterval
	}

	m := &TableMaintenance{
		scheduler: scheduler,
		tables:    tables,
	}
	scheduler.AddTask(EvictIdleTask, interval, m.evictIdle)
	return m
}

func (m *TableMaintenance) evictIdle(ctx context.Context) error {
	if n := m.tables.EvictIdle(ctx); n > 0 {
		m.scheduler.logger.Info("Freed %d idle seats, %d still occupied", n, m.tables.Seats())
	}
	return nil
}
