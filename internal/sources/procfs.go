package sources

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gridsens/gridsens/internal/errors"
)

// cpuTimes is one cpu line from /proc/stat, reduced to the two numbers
// the usage calculation needs. Values are cumulative jiffies since boot.
type cpuTimes struct {
	total int64
	idle  int64
}

// parseCPUTimes extracts the aggregate cpu line and the per-core lines
// from /proc/stat. Idle time counts both idle and iowait.
func parseCPUTimes(procStat string) (cpuTimes, []cpuTimes, error) {
	var agg cpuTimes
	var cores []cpuTimes
	sawAgg := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return cpuTimes{}, nil, fmt.Errorf("short cpu line: %s", line)
		}

		var t cpuTimes
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return cpuTimes{}, nil, fmt.Errorf("cpu field %d: %w", i, err)
			}
			t.total += val
			// idle is field 4, iowait is field 5
			if i == 4 || i == 5 {
				t.idle += val
			}
		}

		if fields[0] == "cpu" {
			agg = t
			sawAgg = true
		} else {
			cores = append(cores, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return cpuTimes{}, nil, err
	}
	if !sawAgg {
		return cpuTimes{}, nil, fmt.Errorf("no aggregate cpu line found")
	}
	return agg, cores, nil
}

// usagePercent computes busy time over an interval from two cumulative
// samples. A zero prev sample yields usage since boot, which is what the
// first fetch of a panel shows.
func usagePercent(prev, cur cpuTimes) float64 {
	dt := cur.total - prev.total
	if dt <= 0 {
		return 0
	}
	busy := dt - (cur.idle - prev.idle)
	pct := float64(busy) / float64(dt) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// memInfo is /proc/meminfo reduced to the totals the memory source
// reports. All values are bytes.
type memInfo struct {
	total     int64
	used      int64
	available int64
}

// parseMemInfo reads the handful of /proc/meminfo keys that matter.
// Used memory excludes buffers and page cache, matching what free(1)
// calls "used".
func parseMemInfo(procMeminfo string) (memInfo, error) {
	var total, free, available, buffers, cached int64
	found := 0

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		// Values in /proc/meminfo are in kB
		bytes := val * 1024

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			total = bytes
			found++
		case "MemFree":
			free = bytes
			found++
		case "MemAvailable":
			available = bytes
			found++
		case "Buffers":
			buffers = bytes
			found++
		case "Cached":
			cached = bytes
			found++
		}
	}
	if err := scanner.Err(); err != nil {
		return memInfo{}, err
	}
	if found < 3 || total <= 0 {
		return memInfo{}, fmt.Errorf("insufficient memory info")
	}

	return memInfo{
		total:     total,
		used:      total - free - buffers - cached,
		available: available,
	}, nil
}

// parseLoadAvg reads the three load averages from /proc/loadavg.
func parseLoadAvg(procLoadavg string) ([3]float64, error) {
	var load [3]float64
	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return load, fmt.Errorf("short loadavg line: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// readSystemFile reads a kernel-exposed file. A missing file means the
// system does not provide this data at all, which is permanent: polling
// stops until the panel is pointed at a different source. Any other
// read failure is worth retrying.
func readSystemFile(path, what string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.WrapWithCode(err, errors.ErrFetchPermanent,
				what+" is not available on this system",
				"This source reads "+path+", which only exists on Linux")
		}
		return "", errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Cannot read "+path, "")
	}
	return string(data), nil
}
