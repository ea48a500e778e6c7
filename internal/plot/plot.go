// Package plot renders membership curves and aggregated layers as a
// standalone HTML page with an inline SVG chart.
package plot

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/fuzzy/pkg/fuzzy/config"
	"github.com/cognicore/fuzzy/pkg/fuzzy/layer"
	"github.com/cognicore/fuzzy/pkg/fuzzy/membership"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

// Chart geometry in SVG user units
const (
	Width  = 640
	Height = 320
	Margin = 40
)

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22"}

// Series is one curve on a figure
type Series struct {
	Name   string
	Points []membership.Point
	Fill   bool
}

// Marker is a labelled vertical line
type Marker struct {
	Label string
	X     float64
}

// Figure is everything drawn on one chart
type Figure struct {
	Title   string
	Domain  layer.Range
	Series  []Series
	Markers []Marker
}

// VariableFigure samples every granule of an input variable
func VariableFigure(in *config.Input, samplings int) Figure {
	if samplings <= 0 {
		samplings = layer.DefaultSamplings
	}
	fig := Figure{Title: in.Name, Domain: in.Domain}
	for i, f := range in.Functions {
		fig.Series = append(fig.Series, Series{
			Name:   in.Labels[i],
			Points: membership.Sample(f, in.Domain.Min, in.Domain.Max, samplings),
		})
	}
	return fig
}

// LayerFigure draws the granules of a layer, the clipped aggregate for the
// given inputs and a marker at its centre of mass.
func LayerFigure(l *layer.Layer, in operator.Inputs, samplings int) (Figure, error) {
	if samplings <= 0 {
		samplings = layer.DefaultSamplings
	}
	d := l.Domain()
	fig := Figure{Title: l.Name(), Domain: d}
	for i, g := range l.Granules() {
		name := g.Label
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fig.Series = append(fig.Series, Series{
			Name:   name,
			Points: membership.Sample(g.Function, d.Min, d.Max, samplings),
		})
	}

	agg, cutOffs, err := l.Aggregate(in, samplings)
	if err != nil {
		return Figure{}, err
	}
	fig.Series = append(fig.Series, Series{Name: "aggregate", Points: agg, Fill: true})

	c := l.CenterOfMass(agg, cutOffs)
	fig.Markers = append(fig.Markers, Marker{
		Label: "x = " + strconv.FormatFloat(c.X, 'f', 3, 64),
		X:     c.X,
	})
	return fig, nil
}

// Render writes fig as an HTML document
func Render(w io.Writer, fig Figure) error {
	if err := fig.Domain.Validate(); err != nil {
		return err
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element("html", nil)
	doc.AppendChild(root)

	head := element("head", nil)
	head.AppendChild(element("meta", attrs("charset", "utf-8")))
	head.AppendChild(withText(element("title", nil), fig.Title))
	root.AppendChild(head)

	body := element("body", nil)
	body.AppendChild(withText(element("h1", nil), fig.Title))
	body.AppendChild(fig.svg())
	root.AppendChild(body)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render %q: %w", fig.Title, err)
	}
	return nil
}

func (fig Figure) svg() *html.Node {
	svg := element("svg", attrs(
		"xmlns", "http://www.w3.org/2000/svg",
		"width", itoa(Width),
		"height", itoa(Height),
		"viewBox", fmt.Sprintf("0 0 %d %d", Width, Height),
	))

	// axes
	svg.AppendChild(element("line", attrs(
		"x1", itoa(Margin), "y1", itoa(Height-Margin),
		"x2", itoa(Width-Margin), "y2", itoa(Height-Margin),
		"stroke", "#000",
	)))
	svg.AppendChild(element("line", attrs(
		"x1", itoa(Margin), "y1", itoa(Margin),
		"x2", itoa(Margin), "y2", itoa(Height-Margin),
		"stroke", "#000",
	)))
	svg.AppendChild(fig.label(Margin, Height-Margin+16, "middle", ftoa(fig.Domain.Min)))
	svg.AppendChild(fig.label(Width-Margin, Height-Margin+16, "middle", ftoa(fig.Domain.Max)))
	svg.AppendChild(fig.label(Margin-6, Height-Margin+4, "end", "0"))
	svg.AppendChild(fig.label(Margin-6, Margin+4, "end", "1"))

	for i, s := range fig.Series {
		color := palette[i%len(palette)]
		svg.AppendChild(fig.curve(s, color))
		svg.AppendChild(fig.label(Width-Margin+4, Margin+14*float64(i), "start", s.Name, "fill", color))
	}

	for _, m := range fig.Markers {
		x := fig.px(m.X)
		svg.AppendChild(element("line", attrs(
			"x1", ftoa(x), "y1", itoa(Margin),
			"x2", ftoa(x), "y2", itoa(Height-Margin),
			"stroke", "#000", "stroke-dasharray", "4 2",
		)))
		svg.AppendChild(fig.label(x, Margin-6, "middle", m.Label))
	}
	return svg
}

func (fig Figure) curve(s Series, color string) *html.Node {
	var b strings.Builder
	write := func(x, y float64) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(ftoa(x))
		b.WriteByte(',')
		b.WriteString(ftoa(y))
	}

	if s.Fill && len(s.Points) > 0 {
		write(fig.px(s.Points[0].X), fig.py(0))
	}
	for _, p := range s.Points {
		write(fig.px(p.X), fig.py(p.Y))
	}
	if s.Fill && len(s.Points) > 0 {
		write(fig.px(s.Points[len(s.Points)-1].X), fig.py(0))
		return element("polygon", attrs(
			"data-series", s.Name,
			"points", b.String(),
			"fill", color, "fill-opacity", "0.3", "stroke", color,
		))
	}
	return element("polyline", attrs(
		"data-series", s.Name,
		"points", b.String(),
		"fill", "none", "stroke", color,
	))
}

func (fig Figure) label(x, y float64, anchor, text string, extra ...string) *html.Node {
	a := attrs("x", ftoa(x), "y", ftoa(y), "text-anchor", anchor, "font-size", "11")
	a = append(a, attrs(extra...)...)
	return withText(element("text", a), text)
}

// px maps a domain value onto the horizontal axis, clamping infinities
func (fig Figure) px(x float64) float64 {
	x = math.Max(fig.Domain.Min, math.Min(fig.Domain.Max, x))
	return Margin + (x-fig.Domain.Min)/fig.Domain.Width()*(Width-2*Margin)
}

func (fig Figure) py(y float64) float64 {
	return Height - Margin - y*(Height-2*Margin)
}

func element(tag string, a []html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: a}
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
