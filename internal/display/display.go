// Package display is the presentation layer: it drives the aggregator
// on a sampling interval and renders running totals and deltas, either
// interactively on a raw terminal or as a line-per-interval log.
package display

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/kvmwatch/kvmwatch/internal/output"
	"github.com/kvmwatch/kvmwatch/pkg/stats"
)

// bareFieldsPattern hides synthetic sub-reason fields; the drilldown
// key toggles it off.
const bareFieldsPattern = `^[^(]*$`

const defaultInterval = 1 * time.Second

type Display struct {
	*Options
}

func New(opts ...Option) (*Display, error) {
	display := &Display{
		Options: &Options{
			interval: defaultInterval,
			logger:   log.Nop(),
		},
	}
	for _, opt := range opts {
		opt(display)
	}
	if display.aggregator == nil {
		return nil, ErrNoAggregator
	}
	// The interval feeds time.NewTicker, which panics on non-positive
	// durations.
	if display.interval <= 0 {
		return nil, ErrBadInterval
	}

	return display, nil
}

// effectivePattern composes the user-supplied pattern with the
// drilldown toggle: without drilldown and without a user pattern only
// bare fields are shown.
func (d *Display) effectivePattern() string {
	if d.pattern != "" || d.drilldown {
		return d.pattern
	}

	return bareFieldsPattern
}

// ApplyFilter pushes the current effective pattern to the aggregator.
func (d *Display) ApplyFilter() error {
	return d.aggregator.SetFilterPattern(d.effectivePattern())
}

// Once prints a single sample and returns.
func (d *Display) Once() error {
	if err := d.ApplyFilter(); err != nil {
		return err
	}

	return d.printSample("\n")
}

// Log prints one sample per interval until the context is cancelled.
func (d *Display) Log(ctx context.Context) error {
	if err := d.ApplyFilter(); err != nil {
		return err
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.printSample("\n"); err != nil {
				return err
			}
		}
	}
}

// Interactive runs the full-screen loop on a raw terminal. The only
// suspension point is the bounded wait for either the next tick or a
// keystroke.
func (d *Display) Interactive(ctx context.Context) error {
	if err := d.ApplyFilter(); err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "failed to switch terminal to raw mode")
	}
	defer term.Restore(fd, state)

	keys := make(chan byte, 8)
	go readKeys(keys)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	if err := d.refresh(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.refresh(); err != nil {
				return err
			}
		case key, ok := <-keys:
			if !ok {
				// stdin closed; keep refreshing on the ticker.
				keys = nil

				continue
			}
			quit, err := d.handleKey(key, keys)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (d *Display) handleKey(key byte, keys <-chan byte) (bool, error) {
	switch key {
	case 'q', 0x03: // ctrl-c
		return true, nil
	case ' ', '\r':
		return false, d.refresh()
	case 'x':
		d.drilldown = !d.drilldown
		if err := d.ApplyFilter(); err != nil {
			return false, err
		}

		return false, d.refresh()
	case 'f':
		if err := d.promptFilter(keys); err != nil {
			return false, err
		}

		return false, d.refresh()
	}

	return false, nil
}

// promptFilter reads a new filter regex, echoing keystrokes itself
// since the terminal stays in raw mode. A pattern that does not compile
// is rejected and the previous filter retained; any other filter-apply
// failure is a backend error and propagates to terminate the loop.
func (d *Display) promptFilter(keys <-chan byte) error {
	fmt.Print("\r\nfilter regex (empty for all fields): ")

	var line []byte
prompt:
	for key := range keys {
		switch key {
		case '\r', '\n':
			break prompt
		case 0x03, 0x1b: // ctrl-c, esc: cancel
			return nil
		case 0x7f, '\b':
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}
		default:
			line = append(line, key)
			fmt.Print(string(rune(key)))
		}
	}

	previous := d.pattern
	d.pattern = strings.TrimSpace(string(line))
	if err := d.ApplyFilter(); err != nil {
		d.pattern = previous
		if !errors.Is(err, stats.ErrBadFilterPattern) {
			return err
		}
		d.logger.Warn().Err(err).Msg("filter pattern rejected")
	}

	return nil
}

func (d *Display) refresh() error {
	// Raw mode: home the cursor and wipe the screen before rendering.
	fmt.Print("\033[2J\033[H")

	return d.printSample("\r\n")
}

func (d *Display) printSample(eol string) error {
	samples, err := d.aggregator.Sample()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	// Busiest fields first, stable order for equal deltas.
	sort.Slice(names, func(i, j int) bool {
		si, sj := samples[names[i]], samples[names[j]]
		if si.Delta != sj.Delta {
			return si.Delta > sj.Delta
		}

		return names[i] < names[j]
	})

	width := output.Width()
	header := fmt.Sprintf("%-40s %14s %12s", "event", "total", "current")
	if filter := d.aggregator.FilterPattern(); filter != "" && filter != bareFieldsPattern {
		header += "   filter: " + filter
	}
	fmt.Print(output.Truncate(header, width), eol)

	for _, name := range names {
		sample := samples[name]
		current := "-"
		if sample.HasDelta {
			current = fmt.Sprintf("%d", sample.Delta)
		}
		line := fmt.Sprintf("%-40s %14d %12s", name, sample.Value, current)
		fmt.Print(output.Truncate(line, width), eol)
	}

	return nil
}

// readKeys feeds single keystrokes from stdin until it closes.
func readKeys(keys chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			close(keys)

			return
		}
		if n == 1 {
			keys <- buf[0]
		}
	}
}
