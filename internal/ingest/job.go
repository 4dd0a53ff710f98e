package ingest

import (
	"encoding/json"
	"fmt"
)

// Job is the queue payload for one ingestion run. The document row already
// exists when the job is published; the worker claims it by id.
type Job struct {
	DocID string `json:"doc_id"`
	URL   string `json:"url"`
}

func (j Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

func DecodeJob(body []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return Job{}, fmt.Errorf("malformed job payload: %w", err)
	}
	if job.DocID == "" || job.URL == "" {
		return Job{}, fmt.Errorf("job payload missing doc_id or url")
	}
	return job, nil
}
