package fs

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// osFS exposes the native filesystem, unrooted, as a billy.Filesystem, so
// that relative and absolute paths given on the command line resolve as
// they would with the os package.
type osFS struct {
	osfs.ChrootOS
}

func (f *osFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (f *osFS) Root() string {
	return ""
}

// OS returns the native filesystem.
func OS() billy.Filesystem {
	return &osFS{}
}
