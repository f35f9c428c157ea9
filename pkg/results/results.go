package results

type Reason string

const (
	// ReasonUnknown is default reason. Occurrences of this reason in the logs
	// indicate a bug, a failure to identify the reason for an error somewhere.
	ReasonUnknown Reason = "unknown"

	// ReasonMalformedInput is used when a runner file does not match the
	// expected shape: it cannot be decoded or a required field is missing.
	ReasonMalformedInput Reason = "malformed_input"
	// ReasonDegenerateRunner is used when a runner has no records at all, or
	// no mainline records, so its failure ratio is undefined.
	ReasonDegenerateRunner Reason = "degenerate_runner"
	// ReasonEmptyDataset is used when there is nothing to analyze: the source
	// holds no usable files or no healthy runner reported mainline results.
	ReasonEmptyDataset Reason = "empty_dataset"
	// ReasonLoadingSource is used when the result source cannot be listed or read.
	ReasonLoadingSource Reason = "loading_source"
	// ReasonWritingOutput is used when an output file cannot be written.
	ReasonWritingOutput Reason = "writing_output"
)
