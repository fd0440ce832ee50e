package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSearchKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"photo; video, music", []string{"photo", "video", "music"}},
		{"photo video music", []string{"photo", "video", "music"}},
		{"photo；video，music", []string{"photo", "video", "music"}},
		{"photo\tvideo", []string{"photo", "video"}},
		{"  photo ;; ,video  ", []string{"photo", "video"}},
		{"photo photo", []string{"photo", "photo"}},
		{"", []string{}},
		{" ; , ", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSearchKeywords(tt.input), "input %q", tt.input)
	}
}
