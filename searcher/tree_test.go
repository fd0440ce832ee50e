package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file_search_go/models"
)

func child(t *testing.T, node *TreeNode, name string) *TreeNode {
	t.Helper()
	for _, c := range node.Children {
		if c.Name == name {
			return c
		}
	}
	require.FailNow(t, "child not found", "%s has no child %q", node.Name, name)
	return nil
}

func TestBuildTree(t *testing.T) {
	results := []models.SearchResult{
		{Path: "/data/photos/2023/summer.jpg", Name: "summer.jpg"},
		{Path: "/data/photos/2023/winter.jpg", Name: "winter.jpg"},
		{Path: "/data/documents/report.pdf", Name: "report.pdf"},
	}

	tree := BuildTree(results, "Search results")

	assert.Equal(t, "Search results (/data)", tree.Name)
	assert.Equal(t, "/data", tree.Path)

	photos := child(t, tree, "photos")
	require.Len(t, photos.Children, 1)
	year := child(t, photos, "2023")
	assert.Equal(t, "/data/photos/2023", year.Path)
	require.Len(t, year.Children, 2)
	for _, leaf := range year.Children {
		assert.True(t, leaf.IsLeaf())
	}
	assert.Equal(t, "summer.jpg", year.Children[0].Name)
	assert.Equal(t, "winter.jpg", year.Children[1].Name)

	// children sorted ignoring case
	assert.Equal(t, "documents", tree.Children[0].Name)
	assert.Equal(t, "photos", tree.Children[1].Name)
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(nil, "Search results")

	assert.Equal(t, "Search results", tree.Name)
	assert.Equal(t, "", tree.Path)
	assert.True(t, tree.IsLeaf())
}

func TestBuildTree_SingleResult(t *testing.T) {
	tree := BuildTree([]models.SearchResult{{Path: "/home/u/a.txt", Name: "a.txt"}}, "r")

	assert.Equal(t, "r (/home/u)", tree.Name)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "a.txt", tree.Children[0].Name)
	assert.Equal(t, "/home/u/a.txt", tree.Children[0].Path)
}

func TestBuildTree_NoSharedDirectory(t *testing.T) {
	tree := BuildTree([]models.SearchResult{
		{Path: "/srv/a.txt", Name: "a.txt"},
		{Path: "/home/b.txt", Name: "b.txt"},
	}, "r")

	assert.Equal(t, "r (/)", tree.Name)
	assert.Equal(t, []string{"home", "srv"}, []string{tree.Children[0].Name, tree.Children[1].Name})
}

func TestBuildTree_CaseInsensitiveOrder(t *testing.T) {
	tree := BuildTree([]models.SearchResult{
		{Path: "/d/beta.txt"},
		{Path: "/d/Alpha.txt"},
		{Path: "/d/gamma.txt"},
	}, "r")

	var names []string
	for _, c := range tree.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alpha.txt", "beta.txt", "gamma.txt"}, names)
}

func TestInsertFullPath_Fallback(t *testing.T) {
	root := NewTreeNode("r", "/other")
	insertPath(root, "/data/x.txt")
	insertPath(root, "/data/y.txt")

	require.Len(t, root.Children, 1)
	top := root.Children[0]
	assert.Equal(t, "/", top.Name)
	data := child(t, top, "data")
	assert.Len(t, data.Children, 2)
}

func TestLeaves(t *testing.T) {
	tree := BuildTree([]models.SearchResult{
		{Path: "/data/photos/2023/summer.jpg"},
		{Path: "/data/documents/report.pdf"},
	}, "r")

	var got []string
	for _, leaf := range tree.Leaves() {
		got = append(got, leaf.Path)
	}
	assert.Equal(t, []string{"/data/documents/report.pdf", "/data/photos/2023/summer.jpg"}, got)
}
