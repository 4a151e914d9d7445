package ui

import (
	"path/filepath"
	"strings"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateName shortens a file name from the middle and keeps a short
// extension visible, so "quarterly-report-final.pdf" fits 14 columns as "quar…final.pdf".
func truncateName(name string, limit int) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if limit <= 0 || len(runes) <= limit {
		return name
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	const ellipsis = "…"
	ext := []rune(filepath.Ext(name))
	if len(ext) >= 10 || len(ext) >= limit/2 {
		ext = nil
	}
	base := runes[:len(runes)-len(ext)]
	keep := limit - len(ext) - 1
	if keep <= 0 {
		return string(runes[:limit])
	}
	prefix := keep / 2
	suffix := keep - prefix
	return string(base[:prefix]) + ellipsis + string(base[len(base)-suffix:]) + string(ext)
}
