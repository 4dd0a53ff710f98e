package ingest

import "fmt"

// Pipeline stage names, used in stage metrics and failure messages.
const (
	StageFetch = "fetch"
	StageClean = "clean"
	StageChunk = "chunk"
	StageEmbed = "embed"
	StageStore = "store"
)

// StageError attributes a pipeline failure to the stage that produced it.
// Its message is what ends up on the document's error_message column.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
