package bot

import (
	"log"
	"sync"
	"time"
)

// Scheduler drives the reconciler on a fixed interval. Passes are
// single-flight: a tick that fires while a pass is still in progress is
// dropped, never queued.
type Scheduler struct {
	reconcile func()
	interval  time.Duration
	done      chan struct{}
	wg        sync.WaitGroup
	running   chan struct{}
}

// NewScheduler creates a scheduler that calls reconcile every interval.
func NewScheduler(reconcile func(), interval time.Duration) *Scheduler {
	return &Scheduler{
		reconcile: reconcile,
		interval:  interval,
		done:      make(chan struct{}),
		running:   make(chan struct{}, 1),
	}
}

// Start begins the reconcile ticker.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the ticker and waits for any in-flight pass to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) tick() {
	select {
	case s.running <- struct{}{}:
	default:
		log.Println("Previous reconcile pass still running, skipping tick")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.running }()
		s.reconcile()
	}()
}
