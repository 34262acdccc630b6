package ui

import (
	"fmt"
	"sync/atomic"
	"time"
)

type Stats struct {
	TotalChapters atomic.Int64
	TotalPages    atomic.Int64
	SkippedSlots  atomic.Int64
	Spreads       atomic.Int64
	TotalBytes    atomic.Int64
	Documents     atomic.Int64
}

func (s *Stats) Print(elapsed time.Duration) {
	fmt.Println()
	fmt.Println("Run Summary:")
	fmt.Printf("Chapters:  %d\n", s.TotalChapters.Load())
	fmt.Printf("Pages:     %d\n", s.TotalPages.Load())
	fmt.Printf("Spreads:   %d\n", s.Spreads.Load())
	if n := s.SkippedSlots.Load(); n > 0 {
		fmt.Printf("Skipped:   %d\n", n)
	}
	fmt.Printf("Data:      %s\n", Human(s.TotalBytes.Load()))
	fmt.Printf("Documents: %d\n", s.Documents.Load())
	fmt.Printf("Time:      %s\n", elapsed.Round(time.Second))
}

// Human formats a byte count with binary units.
func Human(n int64) string {
	const unit = 1 << 10
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 2; v /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
