package monitoring

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/videoflow/videoflow-be/internal/services"
)

// StatsReporter periodically logs catalog totals together with host CPU and
// memory utilization. It only reads from the store.
type StatsReporter struct {
	videos   services.VideoServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewStatsReporter creates a reporter firing on the given cron expression.
func NewStatsReporter(videos services.VideoServiceProvider, spec string) (*StatsReporter, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid stats schedule %q: %w", spec, err)
	}
	return &StatsReporter{
		videos:   videos,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run blocks, reporting at each schedule activation until Stop is called.
func (sr *StatsReporter) Run() {
	log.Info().Msg("Starting background stats reporter...")

	// Report once immediately on start
	sr.report()

	timer := time.NewTimer(time.Until(sr.schedule.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-sr.done:
			log.Info().Msg("Stopping background stats reporter.")
			return
		case <-timer.C:
			sr.report()
			timer.Reset(time.Until(sr.schedule.Next(time.Now())))
		}
	}
}

// Stop halts the reporter.
func (sr *StatsReporter) Stop() {
	sr.done <- true
}

func (sr *StatsReporter) report() {
	stats, err := sr.videos.Stats()
	if err != nil {
		log.Error().Err(err).Msg("StatsReporter: failed to query catalog totals")
		return
	}

	event := log.Info().
		Int64("videos", stats.Videos).
		Int64("views", stats.Views).
		Int64("likes", stats.Likes)

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		event = event.Float64("host_cpu_pct", percents[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		event = event.Float64("host_mem_pct", vm.UsedPercent)
	}

	event.Msg("Catalog stats")
}
