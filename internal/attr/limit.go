package attr

const (
	// Space an attribute entry's name and header consume inside a
	// filesystem block, deducted from block-bound ceilings.
	xattrEntryOverhead = 100

	// Conservative ceiling used when the filesystem cannot be probed:
	// one 4k block minus the entry overhead.
	defaultLimit = 4096 - xattrEntryOverhead
)
