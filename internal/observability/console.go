package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
	colorBlue  = "\033[34m"
)

// termMu synchronizes all terminal output so a status line write can
// never be interrupted by a log write.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// TermWriter is a mutex-guarded io.Writer for log output, suitable
// for log.SetOutput().
type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

func NewTermWriter() *termWriter {
	return &termWriter{}
}

// PrintBanner prints the startup banner.
func PrintBanner() {
	termMu.Lock()
	defer termMu.Unlock()

	width := termWidth()
	rule := strings.Repeat("─", min(width, 72))
	fmt.Println(colorCyan + rule + colorReset)
	fmt.Println(colorBold + "  BL531 Beamline Agent" + colorReset)
	fmt.Println("  Bluesky Queue Server + Tiled catalog control plane")
	fmt.Println(colorCyan + rule + colorReset)
}

// PrintLiveStatus prints a one-line status summary (state, active plan, uptime).
func PrintLiveStatus() {
	state, plan, hb := GetStatus()

	termMu.Lock()
	defer termMu.Unlock()

	uptime := time.Since(startTime).Round(time.Second)
	line := fmt.Sprintf("%s[%s]%s plan=%s uptime=%s heartbeat=%s",
		colorBlue, state, colorReset, orDash(plan), uptime,
		hb.Format("15:04:05"))
	fmt.Fprintln(os.Stderr, line)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
