package searcher

import (
	"fmt"
	"io"
	"strings"
)

const (
	branchConnector = "├─ "
	lastConnector   = "└─ "
	branchIndent    = "│  "
	lastIndent      = "   "
)

// FormatTreeNode renders node and its subtree, one line per node, each line
// starting with prefix. Directories are shown with a trailing "/".
func FormatTreeNode(node *TreeNode, prefix string, isLast bool) string {
	var b strings.Builder
	formatNode(&b, node, prefix, isLast)
	return b.String()
}

func formatNode(b *strings.Builder, node *TreeNode, prefix string, isLast bool) {
	connector, indent := branchConnector, branchIndent
	if isLast {
		connector, indent = lastConnector, lastIndent
	}

	name := node.Name
	if !node.IsLeaf() {
		name += "/"
	}
	b.WriteString(prefix + connector + name + "\n")

	childPrefix := prefix + indent
	for i, child := range node.Children {
		formatNode(b, child, childPrefix, i == len(node.Children)-1)
	}
}

// PrintTree writes the root label followed by the formatted children.
func PrintTree(w io.Writer, root *TreeNode) {
	fmt.Fprintln(w, root.Name)
	for i, child := range root.Children {
		fmt.Fprint(w, FormatTreeNode(child, "", i == len(root.Children)-1))
	}
}
