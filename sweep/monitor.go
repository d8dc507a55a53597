package sweep

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/cpu"
)

// MonitorCPUUsage prints CPU utilization every interval until done is
// closed. Intended to run as a goroutine alongside a large parallel sweep.
func MonitorCPUUsage(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			percentage, err := cpu.Percent(time.Second, false)
			if err == nil && len(percentage) > 0 {
				fmt.Printf("\nCPU Usage: %.2f%%\n", percentage[0])
			}
		}
	}
}
