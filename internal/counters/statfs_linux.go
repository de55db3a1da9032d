//go:build linux

package counters

import (
	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/rcpu/internal/errors"
)

// statDisk uses the fundamental block size, falling back to the preferred
// block size on filesystems that leave f_frsize unset.
func statDisk(path string) (DiskBlocks, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return DiskBlocks{}, errors.WrapWithCode(err, errors.ErrIO,
			"statfs failed for "+path,
			"Check that the disk path exists")
	}

	blockSize := uint64(st.Frsize)
	if blockSize == 0 {
		blockSize = uint64(st.Bsize)
	}
	return DiskBlocks{
		Free:  uint64(st.Bfree) * blockSize,
		Total: uint64(st.Blocks) * blockSize,
	}, nil
}
