package manager

import (
	"context"
	"log/slog"
	"time"

	"github.com/velotype/go-socket-typerace/internal/constants"
)

// Reaper periodically reclaims stale rooms: finished longer than the
// retention window, or waiting with nobody in them. Both checks are
// safety nets behind the on-leave empty-room removal.
type Reaper struct {
	reg       *Registry
	interval  time.Duration
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
}

func NewReaper(reg *Registry, log *slog.Logger) *Reaper {
	return &Reaper{
		reg:       reg,
		interval:  constants.ReaperInterval,
		retention: constants.FinishedRetention,
		log:       log,
		now:       time.Now,
	}
}

// Run sweeps on a fixed period until ctx is cancelled.
func (rp *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(rp.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rp.Sweep(rp.now())
		}
	}
}

// Sweep applies the retention policy once.
func (rp *Reaper) Sweep(now time.Time) {
	for _, room := range rp.reg.Rooms() {
		snap, ok := room.Snapshot()
		if !ok {
			continue
		}
		switch {
		case snap.Status == constants.StatusFinished &&
			snap.EndTime != nil && now.Sub(*snap.EndTime) > rp.retention:
			rp.log.Info("reaping finished room", "room", snap.ID)
			rp.reg.Remove(snap.ID)
		case snap.Status == constants.StatusWaiting && len(snap.Players) == 0:
			rp.log.Info("reaping empty room", "room", snap.ID)
			rp.reg.Remove(snap.ID)
		}
	}
}
