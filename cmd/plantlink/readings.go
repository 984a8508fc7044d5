package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Reading is one telemetry value keyed by its document field name.
type Reading struct {
	Key   string
	Value float64
}

// readHostMetrics gathers the node's own health readings from /proc:
// load average, memory usage, and uptime. These ride along with sensor
// data so the node itself can be monitored through the same channel.
func readHostMetrics() ([]Reading, error) {
	loadData, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return nil, fmt.Errorf("reading loadavg: %w", err)
	}
	load, err := parseLoadAvg(loadData)
	if err != nil {
		return nil, err
	}

	memData, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return nil, fmt.Errorf("reading meminfo: %w", err)
	}
	memUsed, err := parseMemUsedPercent(memData)
	if err != nil {
		return nil, err
	}

	uptimeData, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return nil, fmt.Errorf("reading uptime: %w", err)
	}
	uptime, err := parseUptime(uptimeData)
	if err != nil {
		return nil, err
	}

	return []Reading{
		{Key: "load1", Value: load},
		{Key: "mem_used_pct", Value: memUsed},
		{Key: "uptime_s", Value: uptime},
	}, nil
}

// parseLoadAvg extracts the 1-minute load average, the first field of
// /proc/loadavg.
func parseLoadAvg(data []byte) (float64, error) {
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("parsing loadavg: empty file")
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing loadavg %q: %w", fields[0], err)
	}
	return load, nil
}

// parseMemUsedPercent computes used-memory percentage from the MemTotal
// and MemAvailable lines of /proc/meminfo, rounded to one decimal.
func parseMemUsedPercent(data []byte) (float64, error) {
	var total, available float64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = value
		case "MemAvailable:":
			available = value
		}
	}
	if total <= 0 {
		return 0, fmt.Errorf("parsing meminfo: MemTotal missing")
	}
	pct := (total - available) / total * 100
	return math.Round(pct*10) / 10, nil
}

// parseUptime extracts whole seconds of uptime, the first field of
// /proc/uptime.
func parseUptime(data []byte) (float64, error) {
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("parsing uptime: empty file")
	}
	uptime, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing uptime %q: %w", fields[0], err)
	}
	return math.Floor(uptime), nil
}
