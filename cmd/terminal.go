package cmd

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

const (
	fallbackTermWidth  = 120
	resizePollInterval = 250 * time.Millisecond
)

// Terminal hooks, replaced in tests.
var (
	stdinIsPiped = func() bool {
		stat, err := os.Stdin.Stat()
		return err == nil && stat.Mode()&os.ModeCharDevice == 0
	}
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	openTTY          = openControllingTerminal
	termGetSize      = term.GetSize
	newResizeTicker  = func() resizeTicker { return timeTicker{time.NewTicker(resizePollInterval)} }
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

// detectTerminalSize reports the size of the first standard stream attached
// to a terminal. Without one the width comes from $COLUMNS and the height
// is unknown (0).
func detectTerminalSize() (width, height int) {
	for _, f := range []*os.File{os.Stdout, os.Stderr, os.Stdin} {
		w, h, err := termGetSize(int(f.Fd()))
		if err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	width = fallbackTermWidth
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		width = n
	}
	return width, 0
}

// ttyDevices names the controlling terminal devices for keys and drawing.
func ttyDevices(goos string) (in, out string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// tty is the controlling terminal, reopened when stdin carries the records.
type tty struct {
	in, out *os.File
}

func (t tty) Close() {
	_ = t.in.Close()
	if t.out != t.in {
		_ = t.out.Close()
	}
}

func openControllingTerminal() (tty, error) {
	inName, outName := ttyDevices(runtime.GOOS)
	in, err := os.OpenFile(inName, os.O_RDWR, 0)
	if err != nil {
		return tty{}, err
	}
	if outName == inName {
		return tty{in: in, out: in}, nil
	}
	out, err := os.OpenFile(outName, os.O_RDWR, 0)
	if err != nil {
		_ = in.Close()
		return tty{}, err
	}
	return tty{in: in, out: out}, nil
}

// programOptions attaches the program to the controlling terminal when the
// records arrive on stdin. The returned func releases the terminal.
func programOptions() ([]tea.ProgramOption, func()) {
	if !stdinIsPiped() {
		return nil, func() {}
	}
	t, err := openTTY()
	if err != nil {
		// No controlling terminal (CI): keys and resizes are not available.
		return nil, func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		func(p *tea.Program) {
			go pollResize(ctx, t.out, func(msg tea.WindowSizeMsg) { p.Send(msg) })
		},
	}
	return opts, func() {
		cancel()
		t.Close()
	}
}

// pollResize sends the size of out whenever it changes. Resize signals do
// not reach a reopened tty, so the size is polled.
func pollResize(ctx context.Context, out *os.File, send func(tea.WindowSizeMsg)) {
	ticker := newResizeTicker()
	defer ticker.Stop()

	var last tea.WindowSizeMsg
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
		w, h, err := termGetSize(int(out.Fd()))
		if err != nil {
			continue
		}
		if cur := (tea.WindowSizeMsg{Width: w, Height: h}); cur != last {
			last = cur
			send(cur)
		}
	}
}
