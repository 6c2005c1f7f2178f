package filepathext

import "path/filepath"

// SmartJoin joins two paths, but only if the second is not already an
// absolute path.
func SmartJoin(a, b string) string {
	if filepath.IsAbs(b) {
		return b
	}
	return filepath.Join(a, b)
}

// Resolve resolves rel against base and normalises the result. An absolute
// rel passes through untouched except for normalisation. Separators of
// either platform are accepted on input; the output uses the host
// convention.
func Resolve(base, rel string) string {
	return filepath.Clean(SmartJoin(base, filepath.FromSlash(rel)))
}
