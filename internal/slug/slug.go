// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slugs for project names. Slugs name
// the deploy prefix, the public share page and export file names.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// Fallback is used when a name contains nothing slug-worthy.
const Fallback = "project"

// maxAttempts bounds the numeric suffix search in Unique.
const maxAttempts = 100

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique returns a slug for name that exists reports as free. When the base
// slug is taken, numeric suffixes are tried in order: "landing-2",
// "landing-3" and so on.
func Unique(name string, exists func(string) (bool, error)) (string, error) {
	base := Generate(name)
	if base == "" {
		base = Fallback
	}
	candidate := base
	for i := 2; i <= maxAttempts+1; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}

// FileName joins a project slug and an artifact file name for downloads:
// FileName("landing", "index.html") is "landing-index.html".
func FileName(projectSlug, file string) string {
	if projectSlug == "" {
		projectSlug = Fallback
	}
	return projectSlug + "-" + file
}
