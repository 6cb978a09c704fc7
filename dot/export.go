// Package dot renders a search tree as Graphviz dot, descended from the
// original implementation's tree_visualization.py add_dot/display pair.
package dot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/vireo/branchsearch/state"
	"github.com/vireo/branchsearch/tree"
)

// nodeLabel renders a node's id, depth, value, over tag and best line, the
// same fields as the python dot_description (node_minmax_evaluation.py).
func nodeLabel(n *tree.AlgorithmNode) string {
	value := "?"
	if n.Evaluation.HasMinmaxValue() {
		value = fmt.Sprintf("%.3f", n.Evaluation.MinmaxValueWhite)
	}
	over := n.Evaluation.OverEvent.String()
	best := bestLine(n)
	return fmt.Sprintf("\"id=%d depth=%d value=%s over=%s best=%s\"", n.Node.ID, n.Node.Depth, value, over, best)
}

// bestLine renders n's best branch sequence as branch names, or "-" when
// no best line has been established yet.
func bestLine(n *tree.AlgorithmNode) string {
	seq := n.Evaluation.BestBranchSequence
	if len(seq) == 0 {
		return "-"
	}
	names := make([]string, len(seq))
	for i, k := range seq {
		names[i] = n.Node.State.BranchName(k)
	}
	return strings.Join(names, ">")
}

func addNode(g *gographviz.Graph, n *tree.AlgorithmNode) error {
	return g.AddNode("G", strconv.FormatInt(n.Node.ID, 10), map[string]string{"label": nodeLabel(n)})
}

// addDot walks the tree depth-first, adding every reachable node and edge.
// A visited set keeps a heavily-transposed DAG from being walked more than
// once per shared node.
func addDot(g *gographviz.Graph, n *tree.AlgorithmNode, visited map[int64]bool) error {
	if visited[n.Node.ID] {
		return nil
	}
	visited[n.Node.ID] = true

	if err := addNode(g, n); err != nil {
		return err
	}

	for branch, child := range n.Node.BranchesChildren {
		if child == nil {
			continue
		}
		if err := addNode(g, child); err != nil {
			return err
		}
		edgeLabel := n.Node.State.BranchName(branch)
		attrs := map[string]string{"label": strconv.Quote(edgeLabel)}
		if err := g.AddEdge(strconv.FormatInt(n.Node.ID, 10), strconv.FormatInt(child.Node.ID, 10), true, attrs); err != nil {
			return err
		}
		if err := addDot(g, child, visited); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the dot-language text of the whole tree rooted at t.Root.
func Render(t *tree.Tree) (string, error) {
	g := gographviz.NewGraph()
	g.SetName("G")
	g.SetDir(true)

	if err := addDot(g, t.Root, make(map[int64]bool)); err != nil {
		return "", err
	}
	return g.String(), nil
}

// RenderBranch renders root and each of its opened children, with each edge
// labelled by the branch name and the recommender's probability for that branch -- mirrors
// display_special's per-edge policy annotation.
func RenderBranch(root *tree.AlgorithmNode, policy map[state.BranchKey]float64) (string, error) {
	g := gographviz.NewGraph()
	g.SetName("G")
	g.SetDir(true)

	if err := addNode(g, root); err != nil {
		return "", err
	}
	for branch, child := range root.Node.BranchesChildren {
		if child == nil {
			continue
		}
		if err := addNode(g, child); err != nil {
			return "", err
		}
		label := fmt.Sprintf("%s (p=%.3f)", root.Node.State.BranchName(branch), policy[branch])
		attrs := map[string]string{"label": strconv.Quote(label)}
		if err := g.AddEdge(strconv.FormatInt(root.Node.ID, 10), strconv.FormatInt(child.Node.ID, 10), true, attrs); err != nil {
			return "", err
		}
	}
	return g.String(), nil
}
