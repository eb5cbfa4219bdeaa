package errors

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/image/colornames"
)

// maxNameLength bounds node names and element IDs. Names end up in SVG
// attributes, event keys and notifier channels.
const maxNameLength = 256

// ValidateNodeName checks that a tree node name is usable as an identity key.
//
// Rules:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTree, "node name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidTree, "node name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTree, "node name %q contains control characters", name)
		}
	}
	return nil
}

// elementIDRegex matches identifiers that are safe inside event keys,
// URL paths and Redis channel names.
var elementIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateElementID validates the widget element identifier used to
// namespace outbound events.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "element id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidConfig, "element id too long (max %d characters)", maxNameLength)
	}
	if !elementIDRegex.MatchString(id) {
		return New(ErrCodeInvalidConfig, "invalid element id: %q", id)
	}
	return nil
}

// hexColorRegex matches #rgb, #rgba, #rrggbb and #rrggbbaa.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a CSS color value. Hex notation, the SVG color
// keywords and "transparent" are accepted. Functional notations and
// unknown keywords are rejected because the PNG and terminal renderers
// cannot draw them.
func ValidateColor(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidConfig, "%s cannot be empty", field)
	}
	v := strings.TrimSpace(value)
	if hexColorRegex.MatchString(v) {
		return nil
	}
	kw := strings.ToLower(v)
	if _, ok := colornames.Map[kw]; ok || kw == "transparent" {
		return nil
	}
	return New(ErrCodeInvalidConfig, "%s: unsupported color %q (use #rrggbb or an SVG color keyword)", field, value)
}

// ValidatePath validates an output or input file path supplied on the
// command line.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
