package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	n     int
	err   error
	calls int
}

func (f *fakeSweeper) SweepNoShows(context.Context) (int, error) {
	f.calls++
	return f.n, f.err
}

type fakeBackup struct {
	calls int
}

func (f *fakeBackup) Run(context.Context) error {
	f.calls++
	return nil
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(time.UTC, nil)

	require.NoError(t, s.Register(NoShowSweepJob, "5 0 * * *", func(context.Context) error { return nil }))
	require.NoError(t, s.Register(BackupJob, "@daily", func(context.Context) error { return nil }))

	err := s.Register(NoShowSweepJob, "@hourly", func(context.Context) error { return nil })
	assert.Error(t, err)

	err = s.Register("broken", "every tuesday", func(context.Context) error { return nil })
	assert.Error(t, err)

	assert.ElementsMatch(t, []string{NoShowSweepJob, BackupJob}, s.Jobs())
}

func TestScheduler_Run(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	sweeper := &fakeSweeper{n: 2}
	backup := &fakeBackup{}

	require.NoError(t, s.Register(NoShowSweepJob, "@hourly", NoShowSweep(sweeper, nil)))
	require.NoError(t, s.Register(BackupJob, "@daily", Backup(backup)))

	require.NoError(t, s.Run(context.Background(), NoShowSweepJob))
	require.NoError(t, s.Run(context.Background(), BackupJob))
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 1, backup.calls)

	sweeper.err = errors.New("db closed")
	assert.EqualError(t, s.Run(context.Background(), NoShowSweepJob), "db closed")

	assert.Error(t, s.Run(context.Background(), "missing"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil, nil)
	require.NoError(t, s.Register(BackupJob, "@daily", func(context.Context) error { return nil }))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
	assert.Error(t, s.ctx.Err())
}
