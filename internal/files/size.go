package files

import "strconv"

// Size renders a byte count as B, KB or MB. KB and MB always carry one
// decimal, rounded half up.
func Size(n uint64) string {
	switch {
	case n < 1024:
		return strconv.FormatUint(n, 10) + " B"
	case n < 1024*1024:
		return tenths(n, 1024) + " KB"
	default:
		return tenths(n, 1024*1024) + " MB"
	}
}

func tenths(n, unit uint64) string {
	t := (n*10 + unit/2) / unit
	return strconv.FormatUint(t/10, 10) + "." + strconv.FormatUint(t%10, 10)
}

// EmptyText is shown in place of an empty list.
const EmptyText = "No files uploaded"
