package echogrid

// Report summarizes one merge run for logging and operator review.
type Report struct {
	// FilesProcessed is the number of worksheets ingested.
	FilesProcessed int
	// ChannelsProcessed counts (worksheet, channel) combinations merged.
	ChannelsProcessed int
	// RowsDecoded counts decoded Clean rows across all sources.
	RowsDecoded int
	// CellsWritten counts grid cells that survived the join filters.
	CellsWritten int
	// CellsDropped counts cells excluded by the percent-good or
	// max-depth filters.
	CellsDropped int
	// MeanSv is the mean linear backscatter of the finalized grid.
	// NaN until Finalize runs or when no cell survived.
	MeanSv float64
	// WarningCounts tallies warnings by category.
	WarningCounts map[WarningCategory]int
}
