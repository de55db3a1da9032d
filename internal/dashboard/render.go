package dashboard

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/rcpu/internal/sampler"
)

// DefaultBarWidth is the gauge width in characters.
const DefaultBarWidth = 20

// Footer is the instruction line under the gauges.
const Footer = "Press 'q' to exit"

// Gauge characters.
const (
	gaugeOn  = "#"
	gaugeOff = " "
)

// lineBreak ends every frame line. Raw mode disables output post-processing,
// so a bare "\n" would not return the cursor to column 0.
const lineBreak = "\r\n"

// labels maps metric kinds to gauge labels.
var labels = map[sampler.Kind]string{
	sampler.KindCPU:  "CPU",
	sampler.KindRAM:  "RAM",
	sampler.KindDisk: "DISK",
}

// gaugeCounts splits width into filled and empty cells for percent.
// Percent above 100 renders as 100 and negative widths as 0.
func gaugeCounts(percent uint8, width int) (filled, empty int) {
	if width <= 0 {
		return 0, 0
	}
	if percent > 100 {
		percent = 100
	}
	filled = int(percent) * width / 100
	return filled, width - filled
}

// RenderGauge renders "LABEL: [####      ] 42%".
func RenderGauge(label string, percent uint8, width int) string {
	filled, empty := gaugeCounts(percent, width)
	return fmt.Sprintf("%s: [%s%s] %d%%",
		label,
		strings.Repeat(gaugeOn, filled),
		strings.Repeat(gaugeOff, empty),
		percent,
	)
}

// GaugeLine is one rendered gauge and the metric it shows.
type GaugeLine struct {
	Kind sampler.Kind
	Text string
}

// Frame is one complete dashboard screen.
type Frame struct {
	Gauges []GaugeLine
	Footer string
}

// BuildFrame renders a gauge per metric in dashboard order. Kinds missing from
// values render as 0%.
func BuildFrame(values map[sampler.Kind]uint8, width int) Frame {
	f := Frame{Footer: Footer}
	for _, kind := range sampler.Kinds {
		f.Gauges = append(f.Gauges, GaugeLine{
			Kind: kind,
			Text: RenderGauge(labels[kind], values[kind], width),
		})
	}
	return f
}

// Render colors each gauge and joins the frame into terminal output,
// with a blank line above the footer.
func (f Frame) Render(s Styles) string {
	var b strings.Builder
	for _, g := range f.Gauges {
		b.WriteString(s.For(g.Kind).Render(g.Text))
		b.WriteString(lineBreak)
	}
	b.WriteString(lineBreak)
	b.WriteString(s.Footer.Render(f.Footer))
	return b.String()
}
