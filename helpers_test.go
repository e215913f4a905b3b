package mdblog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.24: What's New?  ", "go-1-24-what-s-new"},
		{"---", ""},
		{"Kyoto, in Autumn!", "kyoto-in-autumn"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Slugify(tt.input), "Slugify(%q)", tt.input)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://blog.test", nil, "https://blog.test"},
		{"https://blog.test/", nil, "https://blog.test"},
		{"https://blog.test", []string{"post", "hello"}, "https://blog.test/post/hello"},
		{"https://blog.test/sub", []string{"tags"}, "https://blog.test/sub/tags"},
		{"https://blog.test", []string{"category", "travel"}, "https://blog.test/category/travel"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, BuildURL(tt.base, tt.segments...), "BuildURL(%q, %v)", tt.base, tt.segments)
	}
}

func TestFilterEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, FilterEmpty([]string{" a ", "", "  ", "b"}))
	assert.Nil(t, FilterEmpty(nil))
}
