package draft

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// slugRegex matches characters that should be replaced with hyphens
	slugRegex = regexp.MustCompile(`[^a-z0-9]+`)
	// multiHyphenRegex matches multiple consecutive hyphens
	multiHyphenRegex = regexp.MustCompile(`-+`)
)

const maxSlugLen = 50

// Slugify converts a workflow name into a file-name-safe slug.
//
// Examples:
//
//	"Pod Delete Drill" -> "pod-delete-drill"
//	"Kafka: broker #2!" -> "kafka-broker-2"
func Slugify(name string) string {
	if name == "" {
		return ""
	}

	result := cases.Lower(language.Und).String(strings.TrimSpace(name))
	result = slugRegex.ReplaceAllString(result, "-")
	result = multiHyphenRegex.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxSlugLen {
		// Cut at the last hyphen before the limit to avoid splitting a word
		cutoff := maxSlugLen
		if idx := strings.LastIndex(result[:cutoff], "-"); idx > 0 {
			cutoff = idx
		}
		result = result[:cutoff]
	}

	return result
}

// UniqueSlug slugifies name and adds a numeric suffix until it does not
// collide with existing.
func UniqueSlug(name string, existing []string) string {
	base := Slugify(name)
	if base == "" {
		base = "workflow"
	}

	slug := base
	for i := 1; i <= 100; i++ {
		if !slices.Contains(existing, slug) {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano())
}
