package errors

import (
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateVariableName validates the name of a model variable.
//
// Names end up in LaTeX output, DOT files and cache keys, so the rules are
// conservative:
//   - No empty or blank names
//   - No control characters
//   - No surrounding whitespace
//   - Maximum length of 256 characters
func ValidateVariableName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "variable name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "variable name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "variable name %q contains control characters", name)
		}
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "variable name %q has surrounding whitespace", name)
	}
	if strings.ContainsAny(name, "\"\\") {
		return New(ErrCodeInvalidInput, "variable name %q contains quotes or backslashes", name)
	}
	return nil
}

// ValidateLabel validates one label of a variable's domain.
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}
	if len(label) > maxNameLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxNameLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label %q contains control characters", label)
		}
	}
	return nil
}

// ValidatePath validates a model file path relative to a served directory.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
