// Package treeviz draws fitted decision trees as images and DOT graphs.
package treeviz

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"nurseryml/internal/models"
)

// Node is a placed tree node. Leaves sit on consecutive integer x positions
// in traversal order, inner nodes are centred over their children, and y is
// minus the depth.
type Node struct {
	X, Y   float64
	Label  string
	Leaf   bool
	Parent int // -1 for the root
	Edge   string
}

type Layout struct {
	Nodes  []Node
	Leaves int
	Depth  int
}

// NewLayout places every node of the fitted tree dt.
func NewLayout(dt *models.DecisionTree) (*Layout, error) {
	if dt.Root == nil {
		return nil, models.ErrNotTrained
	}
	l := &Layout{}
	l.place(dt, dt.Root, 0, -1, "")
	return l, nil
}

func (l *Layout) place(dt *models.DecisionTree, n *models.TreeNode, depth, parent int, edge string) int {
	me := len(l.Nodes)
	l.Nodes = append(l.Nodes, Node{Y: -float64(depth), Label: dt.NodeLabel(n), Leaf: n.Leaf, Parent: parent, Edge: edge})
	l.Depth = max(l.Depth, depth)
	if n.Leaf {
		l.Nodes[me].X = float64(l.Leaves)
		l.Leaves++
		return me
	}
	var sum float64
	for i, c := range n.Children {
		child := l.place(dt, c, depth+1, me, dt.EdgeLabel(n, i))
		sum += l.Nodes[child].X
	}
	l.Nodes[me].X = sum / float64(len(n.Children))
	return me
}

// Plot builds the diagram of l under title.
func (l *Layout) Plot(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = -0.75, float64(l.Leaves)-0.25
	p.Y.Min, p.Y.Max = -float64(l.Depth)-0.5, 0.5

	var inner, leaves plotter.XYs
	nodeLabels := plotter.XYLabels{}
	edgeLabels := plotter.XYLabels{}
	for _, n := range l.Nodes {
		pt := plotter.XY{X: n.X, Y: n.Y}
		if n.Leaf {
			leaves = append(leaves, pt)
		} else {
			inner = append(inner, pt)
		}
		nodeLabels.XYs = append(nodeLabels.XYs, pt)
		nodeLabels.Labels = append(nodeLabels.Labels, n.Label)
		if n.Parent < 0 {
			continue
		}
		par := l.Nodes[n.Parent]
		edge, err := plotter.NewLine(plotter.XYs{{X: par.X, Y: par.Y}, pt})
		if err != nil {
			return nil, err
		}
		edge.Color = color.Gray{Y: 120}
		p.Add(edge)
		edgeLabels.XYs = append(edgeLabels.XYs, plotter.XY{X: (par.X + n.X) / 2, Y: (par.Y + n.Y) / 2})
		edgeLabels.Labels = append(edgeLabels.Labels, n.Edge)
	}
	for _, g := range []struct {
		pts   plotter.XYs
		shape draw.GlyphDrawer
		fill  color.Color
	}{
		{inner, draw.CircleGlyph{}, color.RGBA{R: 70, G: 110, B: 190, A: 255}},
		{leaves, draw.BoxGlyph{}, color.RGBA{R: 120, G: 180, B: 90, A: 255}},
	} {
		if len(g.pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(g.pts)
		if err != nil {
			return nil, err
		}
		s.Shape = g.shape
		s.Color = g.fill
		s.Radius = vg.Points(5)
		p.Add(s)
	}
	for _, lb := range []struct {
		xy  plotter.XYLabels
		off vg.Point
	}{
		{nodeLabels, vg.Point{Y: vg.Points(8)}},
		{edgeLabels, vg.Point{}},
	} {
		if len(lb.xy.XYs) == 0 {
			continue
		}
		labels, err := plotter.NewLabels(lb.xy)
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
		}
		labels.Offset = lb.off
		p.Add(labels)
	}
	return p, nil
}

// Save renders dt to path; the format follows the extension (png, svg, pdf,
// eps, jpg, tif). The canvas grows with the number of leaves and the depth.
func Save(dt *models.DecisionTree, title, path string) error {
	l, err := NewLayout(dt)
	if err != nil {
		return err
	}
	p, err := l.Plot(title)
	if err != nil {
		return err
	}
	w := vg.Length(max(8, float64(l.Leaves)*1.4)) * vg.Inch
	h := vg.Length(max(4, float64(l.Depth+1)*1.2)) * vg.Inch
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(w, h, path)
}

// WriteDOT writes the Graphviz form of dt to path.
func WriteDOT(dt *models.DecisionTree, path string) error {
	if dt.Root == nil {
		return models.ErrNotTrained
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(dt.Graph()), 0o644)
}

// Render writes the image to path and the DOT graph next to it.
func Render(dt *models.DecisionTree, title, path string) (dot string, err error) {
	if filepath.Ext(path) == "" {
		return "", errors.New("tree image path needs an extension such as .png")
	}
	if err := Save(dt, title, path); err != nil {
		return "", err
	}
	dot = strings.TrimSuffix(path, filepath.Ext(path)) + ".dot"
	return dot, WriteDOT(dt, dot)
}
