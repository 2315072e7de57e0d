package form

import "strings"

// Location is the output location typed by the user.
type Location struct {
	Directory string
	Name      string
}

// SanitizeDirectory strips parent references and leading separators.
func SanitizeDirectory(dir string) string {
	dir = strings.ReplaceAll(strings.TrimSpace(dir), "..", "")
	return strings.TrimLeft(dir, `/\`)
}

// SanitizeName trims the run name, turns spaces into underscores and drops
// parent references.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return strings.ReplaceAll(name, "..", "")
}

// Join composes the sanitized location. The name must not be empty after
// sanitizing; the directory may be.
func (l Location) Join(sep string) (string, bool) {
	name := SanitizeName(l.Name)
	if name == "" {
		return "", false
	}
	dir := strings.TrimRight(SanitizeDirectory(l.Directory), `/\`)
	if dir == "" {
		return name, true
	}
	return dir + sep + name, true
}
