package searcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"file_search_go/models"
)

// TreeNode is one directory or file in a result tree. Nodes without children
// are files.
type TreeNode struct {
	Name     string
	Path     string
	Children []*TreeNode
}

// NewTreeNode creates a node without children.
func NewTreeNode(name, path string) *TreeNode {
	return &TreeNode{Name: name, Path: path}
}

// IsLeaf reports whether the node is a file.
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// SortChildren orders every level of the tree by name, ignoring case.
func (n *TreeNode) SortChildren() {
	n.sortChildren(cases.Lower(language.Und))
}

func (n *TreeNode) sortChildren(lower cases.Caser) {
	slices.SortStableFunc(n.Children, func(a, b *TreeNode) int {
		return strings.Compare(lower.String(a.Name), lower.String(b.Name))
	})
	for _, child := range n.Children {
		child.sortChildren(lower)
	}
}

// BuildTree arranges results under their deepest common directory. The root
// is labeled "rootLabel (common path)"; with no results it is an empty node
// labeled rootLabel.
func BuildTree(results []models.SearchResult, rootLabel string) *TreeNode {
	if len(results) == 0 {
		return NewTreeNode(rootLabel, "")
	}

	common := findCommonPrefix(results)
	root := NewTreeNode(fmt.Sprintf("%s (%s)", rootLabel, common), common)

	for _, r := range results {
		insertPath(root, r.Path)
	}

	root.SortChildren()
	return root
}

// findCommonPrefix returns the deepest directory containing every result.
func findCommonPrefix(results []models.SearchResult) string {
	common := filepath.Dir(results[0].Path)
	for _, r := range results[1:] {
		common = commonPath(common, filepath.Dir(r.Path))
		if isTopLevel(common) {
			break
		}
	}
	return common
}

func isTopLevel(p string) bool {
	return p == "" || p == "." || p == string(filepath.Separator) || p == filepath.VolumeName(p)+string(filepath.Separator)
}

// commonPath compares a and b component by component and returns the shared
// leading part, or "." when nothing is shared.
func commonPath(a, b string) string {
	ca, cb := splitPath(a), splitPath(b)
	n := 0
	for n < len(ca) && n < len(cb) && ca[n] == cb[n] {
		n++
	}
	if n == 0 {
		return "."
	}
	return joinPath(ca[:n])
}

// splitPath breaks p into components. An absolute path starts with its root
// ("/" or a volume root) as the first component; "." components are dropped.
func splitPath(p string) []string {
	var parts []string
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		parts = append(parts, vol+string(filepath.Separator))
	} else if vol != "" {
		parts = append(parts, vol)
	}
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return filepath.Join(parts...)
}

// stripPrefix returns the components of target below prefix, or false when
// target is not under prefix.
func stripPrefix(target, prefix string) ([]string, bool) {
	tc, pc := splitPath(target), splitPath(prefix)
	if len(pc) > len(tc) {
		return nil, false
	}
	for i := range pc {
		if tc[i] != pc[i] {
			return nil, false
		}
	}
	return tc[len(pc):], true
}

// insertPath adds target below root, reusing nodes keyed by their path.
func insertPath(root *TreeNode, target string) {
	relative, ok := stripPrefix(target, root.Path)
	if !ok {
		insertFullPath(root, target)
		return
	}

	current := root
	for _, part := range relative {
		childPath := filepath.Join(current.Path, part)
		current = childOrNew(current, part, childPath, func(c *TreeNode) bool { return c.Path == childPath })
	}
}

// insertFullPath adds every component of target below root, matching
// existing children by name.
func insertFullPath(root *TreeNode, target string) {
	current := root
	for _, part := range splitPath(target) {
		childPath := part
		if current.Path != "" {
			childPath = filepath.Join(current.Path, part)
		}
		current = childOrNew(current, part, childPath, func(c *TreeNode) bool { return c.Name == part })
	}
}

func childOrNew(parent *TreeNode, name, path string, match func(*TreeNode) bool) *TreeNode {
	if i := slices.IndexFunc(parent.Children, match); i >= 0 {
		return parent.Children[i]
	}
	child := NewTreeNode(name, path)
	parent.Children = append(parent.Children, child)
	return child
}

// Leaves returns every file node of the tree in display order.
func (n *TreeNode) Leaves() []*TreeNode {
	if n.IsLeaf() {
		return []*TreeNode{n}
	}
	var leaves []*TreeNode
	for _, child := range n.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}
