package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// featureIDRegex matches lowercase slugs such as "btrfs-raids" or "k8-cluster".
var featureIDRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateFeatureID validates a feature identifier.
//
// Feature IDs are stable slugs used in URLs, cache keys and cross
// references, so the rules are strict:
//   - Not empty
//   - Maximum length of 64 characters
//   - Lowercase letters, digits and single dashes only
func ValidateFeatureID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFeatureID, "feature id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidFeatureID, "feature id too long (max 64 characters): %q", id)
	}
	if !featureIDRegex.MatchString(id) {
		return New(ErrCodeInvalidFeatureID, "feature id must be a lowercase slug: %q", id)
	}
	return nil
}

// ValidateHref validates a documentation link target.
// Site-relative paths ("/architecture", "/features#logs") and absolute
// http(s) URLs are accepted. Anything else, including javascript: URLs
// and protocol-relative "//host" links, is rejected.
func ValidateHref(href string) error {
	if href == "" {
		return New(ErrCodeInvalidLink, "link href cannot be empty")
	}
	for _, r := range href {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidLink, "link href contains invalid characters: %q", href)
		}
	}
	switch {
	case strings.HasPrefix(href, "//"):
		return New(ErrCodeInvalidLink, "link href cannot be protocol-relative: %q", href)
	case strings.HasPrefix(href, "/"):
		return nil
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return nil
	}
	return New(ErrCodeInvalidLink, "link href must be a site path or http(s) URL: %q", href)
}

// colorRegex matches #RGB and #RRGGBB hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a hex color used for layer grouping.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid hex color: %q", color)
	}
	return nil
}

// maxQueryText bounds free-text search input accepted at API boundaries.
const maxQueryText = 256

// ValidateQueryText validates free-text search input.
// Empty text is valid and means "no text filter".
func ValidateQueryText(text string) error {
	if len(text) > maxQueryText {
		return New(ErrCodeInvalidInput, "search text too long (max %d characters)", maxQueryText)
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search text contains control characters")
		}
	}
	return nil
}

// ValidateName validates a catalog name used as a storage key.
// It rejects names that could be used for path traversal.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidPath, "name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPath, "name contains invalid characters: %q", pattern)
		}
	}
	return nil
}
