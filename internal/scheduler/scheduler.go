// Package scheduler drives the periodic idle-session sweep so long-running
// deployments do not accumulate dead conversations.
package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	schedule string
	sweep    func() int
}

func New(schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
	}
}

// SetSweepFunction installs the eviction callback; it returns how many
// sessions were removed.
func (s *Scheduler) SetSweepFunction(f func() int) {
	s.sweep = f
}

func (s *Scheduler) Start() error {
	if s.sweep == nil {
		log.Println("⚠️ Sweep function not set, scheduler will not evict sessions")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if n := s.sweep(); n > 0 {
			log.Printf("🧹 Evicted %d idle session(s)", n)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Session sweeper started with schedule %q", s.schedule)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	log.Println("📅 Session sweeper stopped")
}
