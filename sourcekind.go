package echogrid

// SourceKind identifies one of the six per-channel export tables a
// worksheet produces.
type SourceKind int

const (
	// SourceClean is the filtered (cleaned) Sv export. It drives the join.
	SourceClean SourceKind = iota
	// SourceRaw is the unfiltered reference Sv export.
	SourceRaw
	// SourceRejectCount is the sample-rejection count export.
	SourceRejectCount
	// SourceSignalNoise is the signal-to-noise ratio export.
	SourceSignalNoise
	// SourceBackground is the background-noise export, resolved per
	// interval only, not per layer.
	SourceBackground
	// SourceMotionCorrection is the transducer-motion correction export.
	SourceMotionCorrection

	sourceKindCount = int(SourceMotionCorrection) + 1
)

// String returns the template key for the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceClean:
		return "clean"
	case SourceRaw:
		return "raw"
	case SourceRejectCount:
		return "reject"
	case SourceSignalNoise:
		return "signal_noise"
	case SourceBackground:
		return "background"
	case SourceMotionCorrection:
		return "motion_correction"
	default:
		return "unknown"
	}
}

// mandatory reports whether the export file must exist for every channel.
// The optional kinds merge as no-data when their file or key is absent.
func (k SourceKind) mandatory() bool {
	switch k {
	case SourceClean, SourceRaw, SourceRejectCount:
		return true
	default:
		return false
	}
}

// sourceKinds lists all kinds in processing order.
var sourceKinds = []SourceKind{
	SourceClean,
	SourceRaw,
	SourceRejectCount,
	SourceSignalNoise,
	SourceBackground,
	SourceMotionCorrection,
}
