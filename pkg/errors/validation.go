package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxNameLength   = 214 // npm limit
	maxSpecLength   = 256
	maxBundleLength = 500
)

var (
	// npmNameRe matches npm-style names, scoped or not.
	npmNameRe = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

	// apiKeyRe matches API keys: a major ("7") or "0.minor" ("0.3").
	apiKeyRe = regexp.MustCompile(`^(0\.\d+|[1-9]\d*)$`)
)

func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// ValidateNpmPackageName checks a registry package name such as
// "@youwol/http-clients" or "lodash". Names are lowercase and never contain
// traversal sequences, so they are safe to embed in registry URLs and cache
// keys.
func ValidateNpmPackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxNameLength:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxNameLength)
	case hasControl(name):
		return New(ErrCodeInvalidPackage, "package name contains control characters")
	case strings.Contains(name, ".."), strings.Contains(name, "//"), strings.Contains(name, "\\"):
		return New(ErrCodeInvalidPackage, "package name contains a path sequence: %q", name)
	case strings.ToLower(name) != name:
		return New(ErrCodeInvalidPackage, "package names must be lowercase: %q", name)
	case !npmNameRe.MatchString(name):
		return New(ErrCodeInvalidPackage, "invalid package name: %q", name)
	}
	return nil
}

// ValidateLibraryKey checks a library key of the form "name#apiKey", as
// listed by clients for already loaded libraries.
func ValidateLibraryKey(key string) error {
	i := strings.LastIndexByte(key, '#')
	if i < 0 {
		return New(ErrCodeInvalidInput, "library key %q has no API key (want name#apiKey)", key)
	}
	if err := ValidateNpmPackageName(key[:i]); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "library key %q", key)
	}
	if !apiKeyRe.MatchString(key[i+1:]) {
		return New(ErrCodeInvalidInput, "library key %q: invalid API key %q", key, key[i+1:])
	}
	return nil
}

// ValidateVersionSpec rejects empty or obviously malformed version specs.
// Range syntax itself is checked by the selector.
func ValidateVersionSpec(spec string) error {
	switch {
	case strings.TrimSpace(spec) == "":
		return New(ErrCodeInvalidVersion, "version spec cannot be empty")
	case len(spec) > maxSpecLength:
		return New(ErrCodeInvalidVersion, "version spec too long (max %d characters)", maxSpecLength)
	case hasControl(spec):
		return New(ErrCodeInvalidVersion, "version spec contains control characters")
	}
	return nil
}

// ValidatePath checks the bundle path of a package, relative to the package
// root on the CDN. Bundle URLs are built by joining it to the package base,
// so it may neither escape that base nor carry a query or fragment.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "bundle path cannot be empty")
	case len(path) > maxBundleLength:
		return New(ErrCodeInvalidPath, "bundle path too long (max %d characters)", maxBundleLength)
	case hasControl(path):
		return New(ErrCodeInvalidPath, "bundle path contains control characters")
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "bundle path must be relative: %q", path)
	case strings.Contains(path, "\\"):
		return New(ErrCodeInvalidPath, "bundle path cannot contain backslashes: %q", path)
	case strings.ContainsAny(path, "?#"):
		return New(ErrCodeInvalidPath, "bundle path cannot carry a query or fragment: %q", path)
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "bundle path leaves the package: %q", path)
		}
	}
	return nil
}

// ValidateURL checks that a registry URL uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "URL must use http or https scheme: %q", rawURL)
	}
	return nil
}
