package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
)

// PrintLogo renders the colored gantt logo to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	bars.Fprintln(w, "   |  ####..................  |")
	bars.Fprintln(w, "   |  ....######............  |")
	bars.Fprintln(w, "   |  ..........########....  |")
	frame.Fprintln(w, "   |==========================|")
	brand.Fprintln(w, "   |  G  A  N  T  T           |")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Calendar-aware project scheduling\n", Dim("📅"))
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task name to a palette index.
func taskColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskPrefix returns a colored [task] prefix string.
// Each task name gets a distinct color from the palette.
func TaskPrefix(name string) string {
	c := taskColors[taskColorIndex(name)]
	return Dim("[") + c(name) + Dim("]")
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return Green("✓")
	case "in_progress":
		return Cyan("●")
	case "paused":
		return Yellow("~")
	case "cancelled":
		return Dim("⊘")
	default:
		return Dim("◌")
	}
}
