package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"file_search_go/models"
)

func TestRemapRoot(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		newRoot string
		want    string
	}{
		{"drive letter", `Z:\photos\2023\summer.jpg`, `D:`, `D:\photos\2023\summer.jpg`},
		{"first unix component", "/mnt/photos/a.jpg", "/media", "/media/photos/a.jpg"},
		{"relative path", "share/photos/a.jpg", "/srv", "/srv/photos/a.jpg"},
		{"single component", "/a.jpg", "/x", "/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemapRoot([]models.SearchResult{{Path: tt.path, Name: "n"}}, tt.newRoot)
			assert.Equal(t, tt.want, got[0].Path)
			assert.Equal(t, "n", got[0].Name)
		})
	}
}

func TestRemapRoot_EmptyRootIsNoop(t *testing.T) {
	in := []models.SearchResult{{Path: "/a/b", Name: "b"}}
	assert.Equal(t, in, RemapRoot(in, ""))
}
