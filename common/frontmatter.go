package common

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the front matter keys the photo post template fills in.
// Other keys of the template are accepted and ignored.
type Frontmatter struct {
	Layout    string `yaml:"layout,omitempty"`
	Title     string `yaml:"title"`
	PhotosDir string `yaml:"photos_dir"`
}

var delimiter = []byte("---")

// ParseFrontmatter splits a post into its YAML front matter and body. The
// front matter is enclosed by lines holding only "---".
func ParseFrontmatter(data []byte) (*Frontmatter, string, error) {
	lines := bytes.SplitAfter(data, []byte("\n"))

	open := -1
	for i, line := range lines {
		if isDelimiter(line) {
			open = i
			break
		}
		if len(bytes.TrimSpace(line)) != 0 {
			return nil, "", fmt.Errorf("invalid frontmatter: content before opening ---")
		}
	}
	if open < 0 {
		return nil, "", fmt.Errorf("invalid frontmatter: missing --- delimiters")
	}

	for i := open + 1; i < len(lines); i++ {
		if !isDelimiter(lines[i]) {
			continue
		}
		var fm Frontmatter
		if err := yaml.Unmarshal(bytes.Join(lines[open+1:i], nil), &fm); err != nil {
			return nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		return &fm, string(bytes.TrimSpace(bytes.Join(lines[i+1:], nil))), nil
	}

	return nil, "", fmt.Errorf("invalid frontmatter: missing closing ---")
}

func isDelimiter(line []byte) bool {
	return bytes.Equal(bytes.TrimRight(line, " \t\r\n"), delimiter)
}
