package models

// AskResponse is the outcome of retrieval plus chat completion.
type AskResponse struct {
	Query string `json:"query"`
	// Context is the retrieved window; empty when no keyword matched.
	Context   string `json:"context"`
	Answer    string `json:"answer"`
	QueryTime int64  `json:"query_time_ms"`
}

// RetrieveResponse is the outcome of retrieval alone.
type RetrieveResponse struct {
	Query   string `json:"query"`
	Context string `json:"context"`
	Found   bool   `json:"found"`
}
