package common

import (
	"testing"
)

func TestParseFrontmatter(t *testing.T) {
	content := `---
layout: post
title: "july-fourth"
photos_dir: "2021-07-04-july-fourth"
tags: [travel]
---

Fireworks over the bay.

{% include post_image_full.html
   filename="a.jpg"
   title=""
   caption="" %}
`

	fm, body, err := ParseFrontmatter([]byte(content))
	if err != nil {
		t.Fatalf("ParseFrontmatter failed: %v", err)
	}

	if fm.Layout != "post" {
		t.Errorf("Expected layout 'post', got '%s'", fm.Layout)
	}
	if fm.Title != "july-fourth" {
		t.Errorf("Expected title 'july-fourth', got '%s'", fm.Title)
	}
	if fm.PhotosDir != "2021-07-04-july-fourth" {
		t.Errorf("Expected photos_dir '2021-07-04-july-fourth', got '%s'", fm.PhotosDir)
	}
	if body[:len("Fireworks")] != "Fireworks" {
		t.Errorf("Unexpected body start: %q", body)
	}
}

func TestParseFrontmatterErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no delimiters", "title: x\n"},
		{"one delimiter", "---\ntitle: x\n"},
		{"delimiter inside a line only", "---\ntitle: a---b\n"},
		{"text before front matter", "hello\n---\ntitle: x\n---\n"},
		{"broken yaml", "---\ntitle: \"x\n  - [\n---\nbody\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseFrontmatter([]byte(tt.content)); err == nil {
				t.Errorf("Expected error for %q", tt.content)
			}
		})
	}
}

func TestParseFrontmatterDashesInValues(t *testing.T) {
	content := "---\nlayout: post\ntitle: \"a---b\"\nphotos_dir: \"2021-07-04-a---b\"\n---\n\nBefore --- after\n---\n"

	fm, body, err := ParseFrontmatter([]byte(content))
	if err != nil {
		t.Fatalf("ParseFrontmatter failed: %v", err)
	}
	if fm.Title != "a---b" {
		t.Errorf("Expected title 'a---b', got '%s'", fm.Title)
	}
	if fm.PhotosDir != "2021-07-04-a---b" {
		t.Errorf("Expected photos_dir '2021-07-04-a---b', got '%s'", fm.PhotosDir)
	}
	if body != "Before --- after\n---" {
		t.Errorf("Unexpected body %q", body)
	}
}
