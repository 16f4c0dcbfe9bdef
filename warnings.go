package echogrid

import "fmt"

// WarningCategory tags a recoverable condition. Processing continues with
// documented defaults after any of these.
type WarningCategory int

const (
	// WarnHeaderMismatch is emitted when an export's header content
	// changed from the previous worksheet, or the Clean and Raw exports
	// disagree on their column set.
	WarnHeaderMismatch WarningCategory = iota
	// WarnMissingRawData is emitted when a (interval, layer) key present
	// in the Clean export is absent from the Raw export. The raw sample
	// count and unfiltered Sv default to zero for that cell.
	WarnMissingRawData
	// WarnMissingRejectData is emitted when a key present in the Clean
	// export is absent from the rejection-count export. The reject sample
	// count defaults to zero for that cell.
	WarnMissingRejectData
	// WarnIntervalGap is emitted when a worksheet's first interval leaves
	// a gap after the previous worksheet's last interval.
	WarnIntervalGap
)

// String returns the category tag used in logs.
func (c WarningCategory) String() string {
	switch c {
	case WarnHeaderMismatch:
		return "header_mismatch"
	case WarnMissingRawData:
		return "missing_raw_data"
	case WarnMissingRejectData:
		return "missing_reject_data"
	case WarnIntervalGap:
		return "interval_gap"
	default:
		return "unknown"
	}
}

// Warning is a recoverable condition observed during a merge run.
type Warning struct {
	Category WarningCategory
	File     string
	Channel  string
	Message  string
}

// String formats the warning for human consumption.
func (w Warning) String() string {
	s := fmt.Sprintf("[%s] %s", w.Category, w.Message)
	if w.File != "" {
		s += " (file: " + w.File
		if w.Channel != "" {
			s += ", channel: " + w.Channel
		}
		s += ")"
	}
	return s
}
