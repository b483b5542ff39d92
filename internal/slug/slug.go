// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-safe lookup keys from titles and names.
// A slug is the human-readable alternate key to the opaque row UUID.
package slug

import (
	"regexp"
	"strings"
)

// maxLen caps slug length so derived keys stay usable in URLs even for
// very long titles.
const maxLen = 200

var (
	// stripChars matches anything that isn't a lowercase letter, digit,
	// space, or hyphen.
	stripChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	// repeatedHyphens collapses runs of hyphens left by stripped words.
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Make derives a slug from the given title or name.
// Example: "Hello, World! Again" → "hello-world-again"
func Make(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = stripChars.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, " ", "-")
	out = repeatedHyphens.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if len(out) > maxLen {
		out = strings.Trim(out[:maxLen], "-")
	}
	return out
}
