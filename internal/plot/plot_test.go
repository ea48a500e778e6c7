package plot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/cognicore/fuzzy/pkg/fuzzy/config"
	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
	"github.com/cognicore/fuzzy/pkg/fuzzy/layer"
	"github.com/cognicore/fuzzy/pkg/fuzzy/membership"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

const system = `name: plot
inputs:
  - name: load
    range: [0, 10]
    granularity: 2
layers:
  - name: out
    range: [0, 10]
    granules:
      - label: down
        triangular: [0, 2, 5]
        when: {var: load, is: low}
      - label: up
        triangular: [5, 8, 10]
        when: {var: load, is: high}
`

func build(t *testing.T) *config.Model {
	t.Helper()
	sys, err := config.ParseSystem([]byte(system))
	require.NoError(t, err)
	m, err := sys.Build()
	require.NoError(t, err)
	return m
}

// collect walks the parsed document and returns every element with the tag
func collect(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func render(t *testing.T, fig Figure) *html.Node {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, fig))
	doc, err := html.Parse(&buf)
	require.NoError(t, err)
	return doc
}

func TestVariableFigure(t *testing.T) {
	m := build(t)
	in, ok := m.Input("load")
	require.True(t, ok)

	fig := VariableFigure(in, 11)
	require.Len(t, fig.Series, 2)
	assert.Equal(t, "low", fig.Series[0].Name)
	assert.Len(t, fig.Series[0].Points, 11)

	doc := render(t, fig)
	lines := collect(doc, "polyline")
	require.Len(t, lines, 2)
	assert.Equal(t, "high", attr(lines[1], "data-series"))

	points := strings.Fields(attr(lines[0], "points"))
	assert.Len(t, points, 11)
	assert.Equal(t, "40,40", points[0])
	assert.Equal(t, "600,280", points[10])

	titles := collect(doc, "title")
	require.Len(t, titles, 1)
	assert.Equal(t, "load", titles[0].FirstChild.Data)
}

func TestLayerFigure(t *testing.T) {
	m := build(t)
	l, ok := m.Layer("out")
	require.True(t, ok)

	fig, err := LayerFigure(l, operator.Inputs{"load": 2}, 50)
	require.NoError(t, err)
	require.Len(t, fig.Series, 3)
	assert.True(t, fig.Series[2].Fill)
	require.Len(t, fig.Markers, 1)

	doc := render(t, fig)
	assert.Len(t, collect(doc, "polyline"), 2)
	require.Len(t, collect(doc, "polygon"), 1)

	_, err = LayerFigure(l, operator.Inputs{}, 50)
	assert.ErrorIs(t, err, internalerr.ErrMissingInput)
}

type countingPredicate struct {
	calls int
	value float64
}

func (p *countingPredicate) EvaluateInputs(operator.Inputs) (float64, error) {
	p.calls++
	return p.value, nil
}

func TestLayerFigureEvaluatesPredicatesOnce(t *testing.T) {
	f, err := membership.NewTriangular(0, 5, 10)
	require.NoError(t, err)
	pred := &countingPredicate{value: 0.5}

	l, err := layer.FromGranules([]layer.Granule{{Label: "mid", Function: f, Predicate: pred}}, layer.Range{Min: 0, Max: 10})
	require.NoError(t, err)

	fig, err := LayerFigure(l, nil, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, pred.calls)

	c, err := l.EstimateCenterOfMass(nil, 20)
	require.NoError(t, err)
	require.Len(t, fig.Markers, 1)
	assert.Equal(t, c.X, fig.Markers[0].X)
}

func TestRenderEscapesTitle(t *testing.T) {
	f, err := membership.NewTriangular(0, 1, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Figure{
		Title:  "<speed>",
		Domain: layer.Range{Min: 0, Max: 2},
		Series: []Series{{Name: "t", Points: membership.Sample(f, 0, 2, 3)}},
	}))
	assert.Contains(t, buf.String(), "&lt;speed&gt;")
	assert.NotContains(t, buf.String(), "<speed>")
}

func TestRenderRejectsEmptyDomain(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Figure{Domain: layer.Range{Min: 1, Max: 1}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidDomain)
}
