package pipeline

import "fmt"

// Stage names a fatal step of the pipeline
type Stage string

const (
	StageInput      Stage = "input validation"
	StageDownload   Stage = "download"
	StageExtract    Stage = "audio extraction"
	StageTranscribe Stage = "transcription"
	StagePattern    Stage = "pattern"
)

// StageError is returned by Run when a fatal stage fails
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
