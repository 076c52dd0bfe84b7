package schedule

import (
	"sync"
	"time"
)

// Handle cancels a scheduled recurring task. Stopping twice is a no-op.
type Handle interface {
	Stop()
}

// Scheduler runs a task repeatedly at a fixed interval until the returned
// handle is stopped. The task itself decides whether a firing does work.
type Scheduler interface {
	Schedule(interval time.Duration, task func()) Handle
}

// TickerScheduler is the wall-clock Scheduler backed by time.Ticker.
type TickerScheduler struct{}

// NewTickerScheduler creates a wall-clock scheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

type tickerHandle struct {
	done chan struct{}
	once sync.Once
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Schedule fires task every interval until the handle is stopped.
func (s *TickerScheduler) Schedule(interval time.Duration, task func()) Handle {
	h := &tickerHandle{done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				task()
			}
		}
	}()

	return h
}

// Manual is a Scheduler driven explicitly by Tick, for deterministic tests.
type Manual struct {
	mu    sync.Mutex
	tasks map[int]func()
	next  int
}

// NewManual creates a manually driven scheduler.
func NewManual() *Manual {
	return &Manual{tasks: make(map[int]func())}
}

type manualHandle struct {
	m  *Manual
	id int
}

func (h *manualHandle) Stop() {
	h.m.mu.Lock()
	delete(h.m.tasks, h.id)
	h.m.mu.Unlock()
}

// Schedule registers the task; the interval is ignored because firings are
// driven by Tick.
func (m *Manual) Schedule(_ time.Duration, task func()) Handle {
	m.mu.Lock()
	id := m.next
	m.next++
	m.tasks[id] = task
	m.mu.Unlock()
	return &manualHandle{m: m, id: id}
}

// Tick fires every registered task once, synchronously.
func (m *Manual) Tick() {
	m.mu.Lock()
	tasks := make([]func(), 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	m.mu.Unlock()

	for _, t := range tasks {
		t()
	}
}

// Active reports how many tasks are currently registered.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
