package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type refresherFunc func(ctx context.Context) (service.RefreshSummary, error)

func (f refresherFunc) RefreshMetrics(ctx context.Context) (service.RefreshSummary, error) {
	return f(ctx)
}

func TestScheduler_AddRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(testLogger())

	err := s.Add("bad", "not a schedule", func(context.Context) error { return nil })

	assert.Error(t, err)
	assert.Zero(t, s.Jobs())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(testLogger())
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := NewScheduler(testLogger())
	started := make(chan struct{})
	var cancelled atomic.Bool
	run := s.wrap("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})

	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	<-started

	require.NoError(t, s.Stop(context.Background()))
	<-done
	assert.True(t, cancelled.Load())
}

func TestRegisterKeywordRefresh(t *testing.T) {
	t.Run("disabled without an API key", func(t *testing.T) {
		s := NewScheduler(testLogger())

		added, err := RegisterKeywordRefresh(s, config.KeywordsConfig{RefreshSchedule: "0 3 * * *"}, nil)

		require.NoError(t, err)
		assert.False(t, added)
		assert.Zero(t, s.Jobs())
	})

	t.Run("scheduled with an API key", func(t *testing.T) {
		s := NewScheduler(testLogger())
		cfg := config.KeywordsConfig{SemrushAPIKey: "key", RefreshSchedule: "0 3 * * *"}
		var calls atomic.Int32
		refresher := refresherFunc(func(context.Context) (service.RefreshSummary, error) {
			calls.Add(1)
			return service.RefreshSummary{Updated: 2}, nil
		})

		added, err := RegisterKeywordRefresh(s, cfg, refresher)

		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, 1, s.Jobs())

		s.cron.Entries()[0].Job.Run()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(testLogger())
		cfg := config.KeywordsConfig{SemrushAPIKey: "key", RefreshSchedule: "every night"}
		refresher := refresherFunc(func(context.Context) (service.RefreshSummary, error) {
			return service.RefreshSummary{}, errors.New("unreachable")
		})

		added, err := RegisterKeywordRefresh(s, cfg, refresher)

		assert.Error(t, err)
		assert.False(t, added)
	})
}
