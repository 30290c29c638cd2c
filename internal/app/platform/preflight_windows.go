//go:build windows

package platform

// effectiveUid returns -1 as windows has no uid concept.
func effectiveUid() int {
	return -1
}
