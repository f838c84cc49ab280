package models

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"nurseryml/internal/data"
)

type Criterion int

const (
	// GainRatio is C4.5's split measure.
	GainRatio Criterion = iota
	// InfoGain is plain information gain, used by random trees.
	InfoGain
)

// TreeNode is a decision tree node. Numeric splits have two children, the
// first taking values <= Threshold; nominal splits have one child per label.
type TreeNode struct {
	Leaf      bool
	Attribute int
	Threshold float64
	Children  []*TreeNode
	Dist      []float64
	Class     int
}

func (n *TreeNode) weight() float64 { return floats.Sum(n.Dist) }

type DecisionTree struct {
	Confidence  float64
	MinLeaf     int
	Unpruned    bool
	MaxDepth    int
	MaxFeatures int
	Criterion   Criterion
	Seed        int64
	Root        *TreeNode
	Schema      *data.Instances
}

// NewDecisionTree returns a pruned C4.5 tree with confidence 0.25 and at
// least two instances per leaf.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{Confidence: 0.25, MinLeaf: 2}
}

// NewRandomTree returns an unpruned information-gain tree considering k
// random attributes per node.
func NewRandomTree(k, maxDepth int, seed int64) *DecisionTree {
	return &DecisionTree{MinLeaf: 1, Unpruned: true, MaxDepth: maxDepth, MaxFeatures: k, Criterion: InfoGain, Seed: seed}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Header() *data.Instances { return dt.Schema }

func (dt *DecisionTree) Untrained() Classifier {
	c := *dt
	c.Root, c.Schema = nil, nil
	return &c
}

func (dt *DecisionTree) Fit(train *data.Instances) error {
	if err := checkTrainable(train); err != nil {
		return err
	}
	if !dt.Unpruned && (dt.Confidence <= 0 || dt.Confidence > 0.5) {
		return fmt.Errorf("pruning confidence %g outside (0, 0.5]", dt.Confidence)
	}
	if dt.MinLeaf <= 0 {
		dt.MinLeaf = 1
	}
	train = knownRows(train)
	idx := make([]int, train.NumInstances())
	for i := range idx {
		idx[i] = i
	}
	b := &treeBuilder{dt: dt, in: train, nc: train.NumClasses(), rng: rand.New(rand.NewSource(dt.Seed))}
	root := b.build(idx, 0)
	if !dt.Unpruned {
		dt.prune(root)
	}
	dt.Root = root
	dt.Schema = train.Header()
	return nil
}

func (dt *DecisionTree) Distribution(x []float64) ([]float64, error) {
	if err := checkRow(dt.Schema, x); err != nil {
		return nil, err
	}
	if dt.Root == nil {
		return nil, ErrNotTrained
	}
	d := dt.Root.distribution(x, dt.Schema.Attributes)
	if d == nil {
		return make([]float64, dt.Schema.NumClasses()), nil
	}
	return d, nil
}

func (n *TreeNode) distribution(x []float64, attrs []*data.Attribute) []float64 {
	if n.Leaf {
		if n.weight() == 0 {
			return nil
		}
		return normalize(n.Dist)
	}
	v := x[n.Attribute]
	branch := -1
	if !data.IsMissing(v) {
		if attrs[n.Attribute].Type == data.Numeric {
			branch = 1
			if v <= n.Threshold {
				branch = 0
			}
		} else if k := int(v); k >= 0 && k < len(n.Children) {
			branch = k
		}
	}
	if branch < 0 {
		out := make([]float64, len(n.Dist))
		total := 0.0
		for _, c := range n.Children {
			w := c.weight()
			if w == 0 {
				continue
			}
			if d := c.distribution(x, attrs); d != nil {
				floats.AddScaled(out, w, d)
				total += w
			}
		}
		if total == 0 {
			return normalize(n.Dist)
		}
		floats.Scale(1/total, out)
		return out
	}
	if d := n.Children[branch].distribution(x, attrs); d != nil {
		return d
	}
	return normalize(n.Dist)
}

type treeBuilder struct {
	dt  *DecisionTree
	in  *data.Instances
	nc  int
	rng *rand.Rand
}

type split struct {
	attr      int
	threshold float64
	gain      float64
	ratio     float64
	parts     [][]int
}

func (b *treeBuilder) classDist(idx []int) []float64 {
	d := make([]float64, b.nc)
	for _, r := range idx {
		d[b.in.ClassValue(r)]++
	}
	return d
}

func (b *treeBuilder) build(idx []int, depth int) *TreeNode {
	dist := b.classDist(idx)
	node := &TreeNode{Dist: dist, Class: floats.MaxIdx(dist)}
	total := float64(len(idx))
	if total < 2*float64(b.dt.MinLeaf) || dist[node.Class] == total || (b.dt.MaxDepth > 0 && depth >= b.dt.MaxDepth) {
		node.Leaf = true
		return node
	}
	s := b.bestSplit(idx, dist)
	if s == nil {
		node.Leaf = true
		return node
	}
	node.Attribute = s.attr
	node.Threshold = s.threshold
	node.Children = make([]*TreeNode, len(s.parts))
	for i, p := range s.parts {
		if len(p) == 0 {
			node.Children[i] = &TreeNode{Leaf: true, Dist: make([]float64, b.nc), Class: node.Class}
			continue
		}
		node.Children[i] = b.build(p, depth+1)
	}
	if !b.dt.Unpruned && trainingErrors(node) >= total-dist[node.Class]-1e-3 {
		makeLeaf(node)
	}
	return node
}

func (b *treeBuilder) predictors() []int {
	out := make([]int, 0, b.in.NumAttributes()-1)
	for j := range b.in.Attributes {
		if j != b.in.ClassIndex && b.in.Attributes[j].Type != data.String {
			out = append(out, j)
		}
	}
	return out
}

func (b *treeBuilder) bestSplit(idx []int, dist []float64) *split {
	attrs := b.predictors()
	k := b.dt.MaxFeatures
	if k > 0 && k < len(attrs) {
		b.rng.Shuffle(len(attrs), func(i, j int) { attrs[i], attrs[j] = attrs[j], attrs[i] })
	} else {
		k = len(attrs)
	}

	if b.dt.Criterion == InfoGain {
		var best *split
		for i, a := range attrs {
			if i >= k && best != nil {
				break
			}
			s := b.evaluate(a, idx, dist)
			if s != nil && (best == nil || s.gain > best.gain) {
				best = s
			}
		}
		return best
	}

	var valid []*split
	sum := 0.0
	for _, a := range attrs[:k] {
		if s := b.evaluate(a, idx, dist); s != nil {
			valid = append(valid, s)
			sum += s.gain
		}
	}
	if len(valid) == 0 {
		return nil
	}
	avg := sum / float64(len(valid))
	var best *split
	for _, s := range valid {
		if s.gain >= avg-1e-3 && s.ratio > 0 && (best == nil || s.ratio > best.ratio) {
			best = s
		}
	}
	return best
}

func (b *treeBuilder) evaluate(attr int, idx []int, dist []float64) *split {
	if b.in.Attributes[attr].Type == data.Numeric {
		return b.evaluateNumeric(attr, idx)
	}
	return b.evaluateNominal(attr, idx)
}

func (b *treeBuilder) evaluateNominal(attr int, idx []int) *split {
	nv := b.in.Attributes[attr].NumValues()
	if nv < 2 {
		return nil
	}
	parts := make([][]int, nv)
	counts := make([][]float64, nv)
	for i := range counts {
		counts[i] = make([]float64, b.nc)
	}
	var missing []int
	for _, r := range idx {
		v := b.in.Rows[r][attr]
		if data.IsMissing(v) {
			missing = append(missing, r)
			continue
		}
		k := int(v)
		parts[k] = append(parts[k], r)
		counts[k][b.in.ClassValue(r)]++
	}
	total := float64(len(idx))
	known := total - float64(len(missing))
	if known == 0 {
		return nil
	}
	bigEnough := 0
	sizes := make([]float64, nv)
	knownDist := make([]float64, b.nc)
	after := 0.0
	for k := range parts {
		sizes[k] = float64(len(parts[k]))
		if len(parts[k]) >= b.dt.MinLeaf {
			bigEnough++
		}
		floats.Add(knownDist, counts[k])
		after += sizes[k] / known * entropy(counts[k])
	}
	if bigEnough < 2 {
		return nil
	}
	gain := (entropy(knownDist) - after) * known / total
	if gain <= 1e-10 {
		return nil
	}
	s := &split{attr: attr, gain: gain, parts: parts}
	s.ratio = gain / entropy(append(sizes, float64(len(missing))))
	b.assignMissing(s, missing)
	return s
}

func (b *treeBuilder) evaluateNumeric(attr int, idx []int) *split {
	var missing []int
	sorted := make([]int, 0, len(idx))
	for _, r := range idx {
		if data.IsMissing(b.in.Rows[r][attr]) {
			missing = append(missing, r)
		} else {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) < 2 {
		return nil
	}
	val := func(i int) float64 { return b.in.Rows[sorted[i]][attr] }
	sort.SliceStable(sorted, func(i, j int) bool { return b.in.Rows[sorted[i]][attr] < b.in.Rows[sorted[j]][attr] })

	total := float64(len(idx))
	known := float64(len(sorted))
	minSplit := float64(b.dt.MinLeaf)
	if b.dt.Criterion == GainRatio {
		minSplit = math.Min(math.Max(0.1*known/float64(b.nc), float64(b.dt.MinLeaf)), 25)
	}
	right := b.classDist(sorted)
	left := make([]float64, b.nc)
	base := entropy(right)
	bestGain, bestAt, candidates := -1.0, -1, 0
	for i := 0; i < len(sorted)-1; i++ {
		c := b.in.ClassValue(sorted[i])
		left[c]++
		right[c]--
		if val(i) >= val(i+1) {
			continue
		}
		nl := float64(i + 1)
		if nl < minSplit || known-nl < minSplit {
			continue
		}
		candidates++
		g := base - nl/known*entropy(left) - (known-nl)/known*entropy(right)
		if g > bestGain {
			bestGain, bestAt = g, i
		}
	}
	if bestAt < 0 {
		return nil
	}
	gain := bestGain * known / total
	if b.dt.Criterion == GainRatio {
		gain -= math.Log2(float64(candidates)) / total
	}
	if gain <= 1e-10 {
		return nil
	}
	parts := [][]int{
		append([]int(nil), sorted[:bestAt+1]...),
		append([]int(nil), sorted[bestAt+1:]...),
	}
	s := &split{attr: attr, threshold: val(bestAt), gain: gain, parts: parts}
	s.ratio = gain / entropy([]float64{float64(len(parts[0])), float64(len(parts[1])), float64(len(missing))})
	b.assignMissing(s, missing)
	return s
}

// assignMissing sends rows with an unknown split value down the largest branch.
func (b *treeBuilder) assignMissing(s *split, missing []int) {
	if len(missing) == 0 {
		return
	}
	big := 0
	for k := range s.parts {
		if len(s.parts[k]) > len(s.parts[big]) {
			big = k
		}
	}
	s.parts[big] = append(s.parts[big], missing...)
}

func entropy(counts []float64) float64 {
	total := floats.Sum(counts)
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

func trainingErrors(n *TreeNode) float64 {
	if n.Leaf {
		return n.weight() - n.Dist[n.Class]
	}
	e := 0.0
	for _, c := range n.Children {
		e += trainingErrors(c)
	}
	return e
}

func makeLeaf(n *TreeNode) {
	n.Leaf = true
	n.Children = nil
	n.Class = floats.MaxIdx(n.Dist)
}

// prune replaces subtrees whose pessimistic error estimate is not better than
// that of a single leaf, bottom up.
func (dt *DecisionTree) prune(n *TreeNode) {
	if n.Leaf {
		return
	}
	for _, c := range n.Children {
		dt.prune(c)
	}
	if leafEstimate(n.Dist, dt.Confidence) <= dt.subtreeEstimate(n)+0.1 {
		makeLeaf(n)
	}
}

func (dt *DecisionTree) subtreeEstimate(n *TreeNode) float64 {
	if n.Leaf {
		return leafEstimate(n.Dist, dt.Confidence)
	}
	e := 0.0
	for _, c := range n.Children {
		e += dt.subtreeEstimate(c)
	}
	return e
}

func leafEstimate(dist []float64, cf float64) float64 {
	total := floats.Sum(dist)
	if total == 0 {
		return 0
	}
	e := total - floats.Max(dist)
	return e + addErrs(total, e, cf)
}

func (dt *DecisionTree) NumLeaves() int { return countNodes(dt.Root, true) }

func (dt *DecisionTree) NumNodes() int { return countNodes(dt.Root, false) }

func countNodes(n *TreeNode, leavesOnly bool) int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return 1
	}
	c := 0
	if !leavesOnly {
		c = 1
	}
	for _, ch := range n.Children {
		c += countNodes(ch, leavesOnly)
	}
	return c
}

// NodeLabel is the attribute name of an inner node or the class summary of a leaf.
func (dt *DecisionTree) NodeLabel(n *TreeNode) string {
	if !n.Leaf {
		return dt.Schema.Attributes[n.Attribute].Name
	}
	total := n.weight()
	errs := total - n.Dist[n.Class]
	label := dt.Schema.ClassLabel(n.Class)
	if errs > 0 {
		return fmt.Sprintf("%s (%.1f/%.1f)", label, total, errs)
	}
	return fmt.Sprintf("%s (%.1f)", label, total)
}

// EdgeLabel describes the test leading from n to its i-th child.
func (dt *DecisionTree) EdgeLabel(n *TreeNode, i int) string {
	a := dt.Schema.Attributes[n.Attribute]
	if a.Type == data.Numeric {
		thr := strconv.FormatFloat(n.Threshold, 'f', -1, 64)
		if i == 0 {
			return "<= " + thr
		}
		return "> " + thr
	}
	return "= " + a.Values[i]
}

func (dt *DecisionTree) title() string {
	switch {
	case dt.Criterion == InfoGain:
		return "RandomTree"
	case dt.Unpruned:
		return "J48 unpruned tree"
	}
	return "J48 pruned tree"
}

func (dt *DecisionTree) String() string {
	if dt.Root == nil {
		return "No model built yet."
	}
	var b strings.Builder
	t, rule := dt.title(), strings.Repeat("-", 18)
	if dt.Criterion == InfoGain {
		rule = strings.Repeat("=", len(t))
	}
	b.WriteString(t + "\n" + rule + "\n")
	if dt.Root.Leaf {
		b.WriteString("\n: " + dt.NodeLabel(dt.Root))
	} else {
		dt.dump(&b, dt.Root, 0)
	}
	fmt.Fprintf(&b, "\n\nNumber of Leaves  : \t%d\n\nSize of the tree : \t%d\n", dt.NumLeaves(), dt.NumNodes())
	return b.String()
}

func (dt *DecisionTree) dump(b *strings.Builder, n *TreeNode, depth int) {
	name := dt.Schema.Attributes[n.Attribute].Name
	for i, c := range n.Children {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("|   ", depth))
		b.WriteString(name + " " + dt.EdgeLabel(n, i))
		if c.Leaf {
			b.WriteString(": " + dt.NodeLabel(c))
		} else {
			dt.dump(b, c, depth+1)
		}
	}
}

// Graph returns the tree in Graphviz DOT format.
func (dt *DecisionTree) Graph() string {
	var b strings.Builder
	b.WriteString("digraph DecisionTree {\n")
	if dt.Root != nil {
		id := 0
		dt.graph(&b, dt.Root, &id)
	}
	b.WriteString("}\n")
	return b.String()
}

func (dt *DecisionTree) graph(b *strings.Builder, n *TreeNode, id *int) int {
	me := *id
	*id++
	if n.Leaf {
		fmt.Fprintf(b, "N%d [label=%q shape=box style=filled ]\n", me, dt.NodeLabel(n))
		return me
	}
	fmt.Fprintf(b, "N%d [label=%q ]\n", me, dt.NodeLabel(n))
	for i, c := range n.Children {
		child := dt.graph(b, c, id)
		fmt.Fprintf(b, "N%d->N%d [label=%q]\n", me, child, dt.EdgeLabel(n, i))
	}
	return me
}
