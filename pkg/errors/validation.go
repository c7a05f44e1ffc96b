package errors

import (
	"strings"
	"unicode"
)

// MaxNameBytes is the largest UTF-8 encoded region name the binary layout can
// carry; its length prefix is a uint16.
const MaxNameBytes = 65535

// ValidateRegionName checks that a region name fits the binary layout.
//
// The limit is measured in encoded bytes, not characters: a name of 30000
// three-byte characters is rejected. Empty names are allowed here; the
// source loader rejects them separately because it keys pixels by name.
func ValidateRegionName(name string) error {
	if len(name) > MaxNameBytes {
		return New(ErrCodeInvalidRegion, "region name is %d bytes (max %d)", len(name), MaxNameBytes)
	}
	if strings.ContainsRune(name, '\x00') {
		return New(ErrCodeInvalidRegion, "region name contains a null byte")
	}
	return nil
}

// ValidateDimensions checks that a region has a positive width and height.
func ValidateDimensions(name string, width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidRegion, "region %q has non-positive size %dx%d", name, width, height)
	}
	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	return nil
}

// ValidatePath validates a layer image path referenced from a manifest.
// It prevents manifests from reaching outside their own directory.
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
