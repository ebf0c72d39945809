package models

import (
	"fmt"
	"strings"
)

// AskRequest is a free-text question for the pipeline.
type AskRequest struct {
	Query string `json:"query"`
	// DocumentID restricts retrieval to one stored document when set.
	DocumentID string `json:"document_id,omitempty"`
}

// Validate trims the query and rejects blank input.
func (q *AskRequest) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
