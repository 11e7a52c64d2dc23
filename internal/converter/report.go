package converter

import "log/slog"

// Stage names the pipeline step a per-file failure happened in.
type Stage string

const (
	StageCompress Stage = "compress"
	StagePage     Stage = "page"
)

// FileFailure describes a single file that was skipped or left uncompressed.
type FileFailure struct {
	Path  string
	Stage Stage
	Err   error
}

// Report collects per-file failures of a job that still completed.
type Report struct {
	Failures []FileFailure
}

func (r *Report) add(path string, stage Stage, err error) {
	slog.Warn("File failed, continuing", "path", path, "stage", stage, "error", err)
	r.Failures = append(r.Failures, FileFailure{Path: path, Stage: stage, Err: err})
}

// OK reports whether every file went through without trouble.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}
