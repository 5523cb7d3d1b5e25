package scheduler

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Job is one refresh iteration. It owns its failures; the loop never sees them.
type Job func(ctx context.Context)

// Run calls job immediately and then again interval after each call
// returns, until ctx ends. Iterations never overlap.
func Run(ctx context.Context, interval time.Duration, job Job) {
	if ctx.Err() != nil {
		return
	}
	job(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			job(ctx)
			timer.Reset(interval)
		}
	}
}

type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
	refs   int
}

// Manager shares one refresh loop per key between every consumer holding it.
type Manager struct {
	mu    sync.Mutex
	loops map[string]*loop
	ctx   context.Context
	stop  context.CancelFunc
	log   log.FieldLogger
}

func NewManager(logger log.FieldLogger) *Manager {
	if logger == nil {
		logger = log.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		loops: make(map[string]*loop),
		ctx:   ctx,
		stop:  cancel,
		log:   logger.WithField("component", "scheduler"),
	}
}

// Acquire joins the loop for key, starting it when nobody holds it yet.
// started reports whether this call launched the loop; a consumer that
// joined a running loop gets no immediate iteration of its own.
// release must be called exactly once.
func (m *Manager) Acquire(key string, interval time.Duration, job Job) (release func(), started bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.loops[key]
	if !ok {
		ctx, cancel := context.WithCancel(m.ctx)
		l = &loop{cancel: cancel, done: make(chan struct{})}
		m.loops[key] = l
		started = true
		m.log.WithFields(log.Fields{"key": key, "interval": interval}).Info("refresh loop started")
		go func() {
			defer close(l.done)
			Run(ctx, interval, job)
		}()
	}
	l.refs++

	var once sync.Once
	release = func() {
		once.Do(func() { m.release(key, l) })
	}
	return release, started
}

func (m *Manager) release(key string, l *loop) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs > 0 {
		return
	}
	l.cancel()
	if m.loops[key] == l {
		delete(m.loops, key)
	}
	m.log.WithField("key", key).Info("refresh loop stopped")
}

// Active reports whether a loop is running for key.
func (m *Manager) Active(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loops[key]
	return ok
}

// Stop cancels every loop and waits for in-flight iterations to return.
func (m *Manager) Stop() {
	m.stop()
	m.mu.Lock()
	loops := make([]*loop, 0, len(m.loops))
	for k, l := range m.loops {
		loops = append(loops, l)
		delete(m.loops, k)
	}
	m.mu.Unlock()

	for _, l := range loops {
		<-l.done
	}
	m.log.Info("scheduler stopped")
}
