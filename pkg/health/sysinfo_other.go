//go:build !linux

package health

import (
	"context"
	"runtime"
)

// SystemMemoryCheck checks system-wide memory usage.
// Outside Linux it reports Go runtime stats and always passes.
type SystemMemoryCheck struct {
	MaxUsagePercent float64
}

func (c *SystemMemoryCheck) Check(ctx context.Context) CheckResult {
	result := CheckResult{Metadata: make(map[string]any)}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	result.Metadata["heap_alloc_bytes"] = m.HeapAlloc
	result.Metadata["heap_sys_bytes"] = m.HeapSys
	result.Metadata["sys_bytes"] = m.Sys
	result.Metadata["platform"] = runtime.GOOS

	result.Status = StatusHealthy
	result.Message = "runtime heap only on " + runtime.GOOS
	return result
}
