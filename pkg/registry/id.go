package registry

import (
	"encoding/base64"
	"fmt"
)

// EncodeID returns the URL-safe package id of name.
func EncodeID(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(name))
}

// DecodeID returns the package name encoded in id.
func DecodeID(id string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("invalid package id %q: %w", id, err)
	}
	return string(b), nil
}

// URL returns the path a client fetches m's bundle from: "<id>/<version>/<bundle>".
func URL(m *Metadata) string {
	return EncodeID(m.Name) + "/" + m.Version + "/" + m.Bundle
}
