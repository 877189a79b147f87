package jobs

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	NoShowSweepJob = "no_show_sweep"
	BackupJob      = "backup"
)

type NoShowSweeper interface {
	SweepNoShows(ctx context.Context) (int, error)
}

type Backuper interface {
	Run(ctx context.Context) error
}

// NoShowSweep marks overdue confirmed reservations as no-shows.
func NoShowSweep(sweeper NoShowSweeper, logger *zerolog.Logger) Func {
	return func(ctx context.Context) error {
		n, err := sweeper.SweepNoShows(ctx)
		if n > 0 && logger != nil {
			logger.Info().Int("marked", n).Msg("no-show sweep")
		}
		return err
	}
}

func Backup(b Backuper) Func {
	return b.Run
}
