package utils

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mmomarket/marketd/ledger/logger"
)

// BackgroundProcessManager owns the daemon's long-running loops and stops
// them together on shutdown.
type BackgroundProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processes map[string]*ProcessInfo
	mu        sync.RWMutex
}

type ProcessInfo struct {
	Name        string
	Description string
	StartedAt   time.Time
	cancel      context.CancelFunc
}

func NewBackgroundProcessManager(parent context.Context) *BackgroundProcessManager {
	ctx, cancel := context.WithCancel(parent)
	return &BackgroundProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]*ProcessInfo),
	}
}

// StartProcess runs fn in its own goroutine. A process already registered
// under name is cancelled first.
func (bpm *BackgroundProcessManager) StartProcess(name, description string, fn func(ctx context.Context)) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if _, exists := bpm.processes[name]; exists {
		slog.Warn("Process already running, replacing it",
			slog.String("type", "sys"),
			slog.String("process", name))
		bpm.stopProcessLocked(name)
	}

	ctx, cancel := context.WithCancel(bpm.ctx)
	info := &ProcessInfo{
		Name:        name,
		Description: description,
		StartedAt:   time.Now(),
		cancel:      cancel,
	}
	bpm.processes[name] = info

	bpm.wg.Add(1)
	go func() {
		defer bpm.wg.Done()
		defer bpm.forget(name, info)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panicked",
					slog.String("type", "error"),
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		logger.LogSystem("Background process started",
			slog.String("process", name),
			slog.String("description", description))
		fn(ctx)
		logger.LogSystem("Background process ended", slog.String("process", name))
	}()
}

// forget drops a finished process unless it was replaced meanwhile.
func (bpm *BackgroundProcessManager) forget(name string, info *ProcessInfo) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	if bpm.processes[name] == info {
		info.cancel()
		delete(bpm.processes, name)
	}
}

func (bpm *BackgroundProcessManager) StopProcess(name string) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	bpm.stopProcessLocked(name)
}

func (bpm *BackgroundProcessManager) stopProcessLocked(name string) {
	if process, exists := bpm.processes[name]; exists {
		process.cancel()
		delete(bpm.processes, name)
	}
}

// Shutdown cancels every process and waits up to timeout for them to return.
func (bpm *BackgroundProcessManager) Shutdown(timeout time.Duration) error {
	logger.LogSystem("Stopping background processes", slog.Int("process_count", bpm.GetProcessCount()))
	bpm.cancel()

	done := make(chan struct{})
	go func() {
		bpm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		slog.Warn("Background processes did not stop in time",
			slog.String("type", "sys"),
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}

func (bpm *BackgroundProcessManager) GetProcessCount() int {
	bpm.mu.RLock()
	defer bpm.mu.RUnlock()
	return len(bpm.processes)
}

// ListProcesses returns the running processes sorted by name.
func (bpm *BackgroundProcessManager) ListProcesses() []ProcessInfo {
	bpm.mu.RLock()
	defer bpm.mu.RUnlock()

	processes := make([]ProcessInfo, 0, len(bpm.processes))
	for _, process := range bpm.processes {
		processes = append(processes, ProcessInfo{
			Name:        process.Name,
			Description: process.Description,
			StartedAt:   process.StartedAt,
		})
	}
	sort.Slice(processes, func(i, j int) bool { return processes[i].Name < processes[j].Name })
	return processes
}

func (bpm *BackgroundProcessManager) Context() context.Context {
	return bpm.ctx
}
