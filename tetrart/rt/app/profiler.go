package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler collects scope timings and counters across rendered frames.
// Scopes keeps the latest duration, Totals the sum over every frame.
type Profiler struct {
	Scopes     map[string]time.Duration
	Totals     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
	Frames     int

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		Totals:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	if _, seen := p.Totals[name]; !seen {
		p.Order = append(p.Order, name)
		p.Totals[name] = 0
	}
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.StartTimes[name]
	if !ok {
		return
	}
	d := p.now().Sub(start)
	p.Scopes[name] = d
	p.Totals[name] += d
	delete(p.StartTimes, name)
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// EndFrame closes one frame of measurements.
func (p *Profiler) EndFrame() { p.Frames++ }

// Reset clears the latest timings; totals and ordering survive.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

func (p *Profiler) Average(name string) time.Duration {
	if p.Frames == 0 {
		return p.Scopes[name]
	}
	return p.Totals[name] / time.Duration(p.Frames)
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }

func (p *Profiler) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Timings over %d frames:\n", p.Frames)
	for _, name := range p.Order {
		fmt.Fprintf(&sb, "  %-15s: %.2f ms (avg %.2f ms)\n", name, ms(p.Scopes[name]), ms(p.Average(name)))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.Counts[k])
	}
	return sb.String()
}
