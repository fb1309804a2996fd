// Package main provides UI utilities for the Lead Engine CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// UI provides user-friendly output utilities.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	progress *mpb.Progress
	noColor  bool
	jsonMode bool
}

// NewUI creates a new UI instance.
func NewUI(out, errOut io.Writer, jsonMode, noColor bool) *UI {
	return &UI{
		out:      out,
		errOut:   errOut,
		noColor:  noColor,
		jsonMode: jsonMode,
	}
}

// Close waits for running progress bars.
func (ui *UI) Close() {
	if ui.progress == nil {
		return
	}
	// Bars cannot render when piped and Wait may hang.
	if IsTerminal() {
		ui.progress.Wait()
	} else {
		ui.progress.Shutdown()
	}
	ui.progress = nil
}

func (ui *UI) printf(attr color.Attribute, w io.Writer, symbol, format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if ui.noColor {
		fmt.Fprintf(w, "%s %s\n", symbol, msg)
		return
	}
	color.New(attr).Fprintf(w, "%s %s\n", symbol, msg)
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	ui.printf(color.FgGreen, ui.out, "✓", format, args...)
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	ui.printf(color.FgRed, ui.errOut, "✗", format, args...)
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	ui.printf(color.FgYellow, ui.out, "⚠", format, args...)
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	ui.printf(color.FgCyan, ui.out, "ℹ", format, args...)
}

// Step prints a step message.
func (ui *UI) Step(format string, args ...interface{}) {
	ui.printf(color.FgBlue, ui.out, "→", format, args...)
}

// JSON writes v as indented JSON. It prints in JSON mode only.
func (ui *UI) JSON(v interface{}) error {
	if !ui.jsonMode {
		return nil
	}
	enc := json.NewEncoder(ui.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ProgressBar creates a row counter bar whose total is set as rows are discovered.
func (ui *UI) ProgressBar(name string) *mpb.Bar {
	if ui.jsonMode {
		return nil
	}
	if ui.progress == nil {
		ui.progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(ui.errOut))
	}

	return ui.progress.AddBar(0,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DSyncSpaceR}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.OnComplete(
				decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 12}),
				" done",
			),
		),
	)
}

// ByteCounter returns a writer that displays the bytes written to it, and the function
// that ends the display. In JSON mode the writer discards.
func (ui *UI) ByteCounter(description string) (io.Writer, func()) {
	if ui.jsonMode {
		return io.Discard, func() {}
	}
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(ui.errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(ui.errOut, "\n")
		}),
	)
	return bar, func() { _ = bar.Finish() }
}

// Spinner starts a spinner for indeterminate work. The returned stop function is safe
// to call when no spinner was started.
func (ui *UI) Spinner(message string) (stop func()) {
	if ui.jsonMode || !IsTerminal() {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = ui.errOut
	s.Start()
	return s.Stop
}

// Table prints a formatted table.
func (ui *UI) Table(headers []string, rows [][]string) {
	if ui.jsonMode || len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len([]rune(header))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	border := func(left, mid, right, fill string) {
		var b strings.Builder
		b.WriteString(left)
		for i, width := range widths {
			b.WriteString(strings.Repeat(fill, width+2))
			if i < len(widths)-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		ui.frame(b.String())
	}
	line := func(cells []string, sep string) {
		var b strings.Builder
		b.WriteString(sep)
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, " %-*s %s", widths[i], cell, sep)
		}
		fmt.Fprintln(ui.out, b.String())
	}

	if ui.noColor {
		border("+", "+", "+", "-")
		line(headers, "|")
		border("+", "+", "+", "-")
		for _, row := range rows {
			line(row, "|")
		}
		border("+", "+", "+", "-")
		return
	}

	border("┌", "┬", "┐", "─")
	line(headers, "│")
	border("├", "┼", "┤", "─")
	for _, row := range rows {
		line(row, "│")
	}
	border("└", "┴", "┘", "─")
}

func (ui *UI) frame(s string) {
	if ui.noColor {
		fmt.Fprintln(ui.out, s)
		return
	}
	color.New(color.FgCyan, color.Bold).Fprintln(ui.out, s)
}

// Section prints a section header.
func (ui *UI) Section(title string) {
	if ui.jsonMode {
		return
	}
	fmt.Fprintln(ui.out)
	if ui.noColor {
		fmt.Fprintf(ui.out, "━━━ %s ━━━\n", strings.ToUpper(title))
	} else {
		color.New(color.FgMagenta, color.Bold).Fprintf(ui.out, "━━━ %s ━━━\n", strings.ToUpper(title))
	}
	fmt.Fprintln(ui.out)
}

// KeyValue prints a key-value pair.
func (ui *UI) KeyValue(key string, value interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Fprintf(ui.out, "  %s: %v\n", key, value)
	} else {
		color.New(color.FgYellow).Fprintf(ui.out, "  %s: ", key)
		fmt.Fprintf(ui.out, "%v\n", value)
	}
}

// Newline prints a newline.
func (ui *UI) Newline() {
	if !ui.jsonMode {
		fmt.Fprintln(ui.out)
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// FormatBytes formats bytes in a human-readable way.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// truncate shortens s to max runes for table cells.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// IsTerminal checks if stdout is a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
