package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundProcessManager(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())

	started := make(chan struct{})
	bpm.StartProcess("statistics", "refresh loop", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})
	<-started

	list := bpm.ListProcesses()
	require.Len(t, list, 1)
	assert.Equal(t, "statistics", list[0].Name)
	assert.Equal(t, "refresh loop", list[0].Description)

	require.NoError(t, bpm.Shutdown(time.Second))
	assert.Equal(t, 0, bpm.GetProcessCount())
}

func TestBackgroundProcessManagerForgetsFinishedProcesses(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())

	done := make(chan struct{})
	bpm.StartProcess("once", "", func(ctx context.Context) { close(done) })
	<-done

	assert.Eventually(t, func() bool { return bpm.GetProcessCount() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, bpm.Shutdown(time.Second))
}

func TestBackgroundProcessManagerRecoversPanics(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())
	bpm.StartProcess("boom", "", func(ctx context.Context) { panic("boom") })
	require.NoError(t, bpm.Shutdown(time.Second))
}

func TestBackgroundProcessManagerShutdownTimeout(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())
	release := make(chan struct{})
	bpm.StartProcess("stuck", "", func(ctx context.Context) { <-release })

	err := bpm.Shutdown(20 * time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}
