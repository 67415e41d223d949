package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// BarRenderer draws a two-line progress display (status + bar) on a TTY,
// or prints timestamped single lines otherwise.
type BarRenderer struct {
	out       io.Writer
	start     time.Time
	isTTY     bool
	width     int
	lastEvent Event
	lines     int // lines currently on screen, for TTY overwrite
}

// NewBarRenderer creates a renderer that writes to out, detecting TTY mode
// and terminal width.
func NewBarRenderer(out *os.File) *BarRenderer {
	tty := IsTerminal(out)
	width := 80
	if tty {
		if w, _, err := term.GetSize(out.Fd()); err == nil && w > 0 {
			width = w
		}
	}
	return newBarRenderer(out, tty, width)
}

func newBarRenderer(out io.Writer, tty bool, width int) *BarRenderer {
	return &BarRenderer{
		out:   out,
		start: time.Now(),
		isTTY: tty,
		width: width,
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Handle processes a progress event. It satisfies Callback.
func (r *BarRenderer) Handle(e Event) {
	e.Elapsed = time.Since(r.start)
	r.lastEvent = e

	if r.isTTY {
		r.renderTTY(e)
	} else {
		r.renderPlain(e)
	}
}

// Finish clears the progress display and prints a summary line.
func (r *BarRenderer) Finish() {
	e := r.lastEvent
	if r.isTTY && r.lines > 0 {
		r.clearLines()
	}

	if e.Error != nil {
		fmt.Fprintf(r.out, "  Error: %v\n", e.Error)
		return
	}
	fmt.Fprintf(r.out, "  Transformed %d of %d messages (%s)\n", e.Done, e.Total, formatElapsed(time.Since(r.start)))
}

func (r *BarRenderer) renderTTY(e Event) {
	if r.lines > 0 {
		r.clearLines()
	}

	msg := fmt.Sprintf("  %s", truncate(e.Message, r.width-2))
	bar := renderBar(e.Percent(), r.barWidth())
	line2 := fmt.Sprintf("  %s %3d%%  %s", bar, int(e.Percent()*100), formatElapsed(e.Elapsed))

	fmt.Fprintf(r.out, "%s\n%s", msg, line2)
	r.lines = 2
}

func (r *BarRenderer) renderPlain(e Event) {
	fmt.Fprintf(r.out, "[%s] %d/%d %s\n", formatElapsed(e.Elapsed), e.Done, e.Total, e.Message)
}

func (r *BarRenderer) clearLines() {
	for i := 0; i < r.lines; i++ {
		if i == 0 {
			fmt.Fprint(r.out, "\r\033[2K")
		} else {
			fmt.Fprint(r.out, "\033[A\033[2K")
		}
	}
	fmt.Fprint(r.out, "\r")
	r.lines = 0
}

// barWidth leaves room for the brackets, percent and elapsed time.
func (r *BarRenderer) barWidth() int {
	return min(60, max(20, r.width-16))
}

// renderBar draws a [####....] bar of the given width.
func renderBar(pct float64, width int) string {
	pct = min(1, max(0, pct))
	filled := min(width, int(pct*float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatElapsed formats a duration as M:SS.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
