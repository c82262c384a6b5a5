package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandler exposes host status for the dashboard.
type SystemHandler struct{}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// SystemStatus is the response shape of the status endpoint.
type SystemStatus struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemUsedMB     uint64  `json:"memUsedMb"`
	MemTotalMB    uint64  `json:"memTotalMb"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
}

// Status reports current host CPU, memory and uptime.
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := SystemStatus{}

	if percents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemUsedMB = vm.Used / 1024 / 1024
		status.MemTotalMB = vm.Total / 1024 / 1024
	} else {
		log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	if uptime, err := host.Uptime(); err == nil {
		status.UptimeSeconds = uptime
	}

	writeJSON(w, http.StatusOK, status)
}
