package msg

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar draws a single-line bar for a known number of generated units
// (libraries plus applications).
type ProgressBar struct {
	Label      string
	Total      int64
	Current    int64
	Indent     int
	Start      time.Time
	W          io.Writer
	lastPrint  time.Time
	throbIndex int
}

var throbbers = []rune{'|', '/', '-', '\\'}

func NewProgressBar(label string, total int64, indent int, w io.Writer) *ProgressBar {
	return &ProgressBar{
		Label:     label,
		Total:     total,
		Indent:    indent,
		Start:     time.Now(),
		W:         w,
		lastPrint: time.Now(),
	}
}

// Add advances the bar by n units, redrawing at most every 40ms.
func (pb *ProgressBar) Add(n int64) {
	pb.Current += n
	if time.Since(pb.lastPrint) > 40*time.Millisecond {
		pb.print(false)
		pb.lastPrint = time.Now()
	}
}

func (pb *ProgressBar) print(finish bool) {
	width := 40
	percent := float64(pb.Current) / float64(max(pb.Total, 1))
	if finish {
		percent = 1
	}

	filled := min(int(percent*float64(width)), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("-", width-filled)

	throb := throbbers[pb.throbIndex%len(throbbers)]
	pb.throbIndex++
	if finish {
		throb = ' '
	}

	fmt.Fprintf(pb.W, "\r%s%s %6.f%% [%s] %d/%d %c",
		strings.Repeat(" ", pb.Indent),
		pb.Label,
		percent*100,
		bar,
		pb.Current,
		pb.Total,
		throb,
	)
}

// Finish draws the completed bar and the elapsed time.
func (pb *ProgressBar) Finish() {
	pb.print(true)
	fmt.Fprintf(pb.W, " %s\n", time.Since(pb.Start).Round(time.Millisecond))
}
