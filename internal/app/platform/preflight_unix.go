//go:build !windows

package platform

import "golang.org/x/sys/unix"

func effectiveUid() int {
	return unix.Geteuid()
}
