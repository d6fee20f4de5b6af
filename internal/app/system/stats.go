package system

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a point-in-time snapshot of the server process, exposed
// through the status endpoint.
type ProcessStats struct {
	PID           int32     `json:"pid"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryRSS     uint64    `json:"memory_rss_bytes"`
	MemoryVMS     uint64    `json:"memory_vms_bytes"`
	Goroutines    int       `json:"goroutines"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

var startedAt = time.Now().UTC()

// CollectProcessStats gathers CPU and memory usage for the current process.
func CollectProcessStats() (ProcessStats, error) {
	stats := ProcessStats{
		PID:           int32(os.Getpid()),
		Goroutines:    runtime.NumGoroutine(),
		StartedAt:     startedAt,
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
	}

	proc, err := process.NewProcess(stats.PID)
	if err != nil {
		return stats, err
	}

	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.MemoryRSS = mem.RSS
		stats.MemoryVMS = mem.VMS
	}

	return stats, nil
}
