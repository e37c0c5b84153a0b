package attr

import "golang.org/x/sys/unix"

// The kernel refuses user xattr values above 64 KiB (XATTR_SIZE_MAX in
// linux/limits.h) regardless of filesystem, so every discovered ceiling is
// clamped to it.
const kernelCeiling = 64 * 1024

// filesystemLimit probes the filesystem holding path for its per-attribute
// value ceiling. Filesystems we cannot identify get a conservative
// one-block figure rather than a hard-coded universal number.
func filesystemLimit(path string) int {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return defaultLimit
	}

	switch st.Type {
	case unix.EXT4_SUPER_MAGIC:
		// ext2/3/4 share the magic; the value must fit in one block
		// alongside the entry header.
		if bs := int(st.Bsize); bs > xattrEntryOverhead {
			return min(bs-xattrEntryOverhead, kernelCeiling)
		}
		return defaultLimit
	case unix.XFS_SUPER_MAGIC, unix.TMPFS_MAGIC:
		return kernelCeiling
	case unix.BTRFS_SUPER_MAGIC:
		// Limited by nodesize; 16k nodes are the mkfs default.
		return 16*1024 - xattrEntryOverhead
	case unix.MSDOS_SUPER_MAGIC:
		// FAT family carries no attributes at all; the port reports
		// Unsupported before a limit matters.
		return 0
	default:
		return defaultLimit
	}
}
