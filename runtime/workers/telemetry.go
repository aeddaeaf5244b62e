package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker samples the server's own process on a fixed interval
// and logs resource usage next to the live connection count. The sampled
// process handle is resolved once; losing it ends the worker cleanly.
type TelemetryWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	liveSessions   func() int
}

func NewTelemetryWorker(log *slog.Logger, metricInterval time.Duration, liveSessions func() int) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		metricInterval: metricInterval,
		liveSessions:   liveSessions,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Error("Error while retrieving own process", "err", err)
		return nil
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			cpu, err := self.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := self.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			w.log.Info("Telemetry sample",
				"cpu", cpu,
				"ram", ram,
				"sessions", w.liveSessions(),
			)
		}
	}
}
