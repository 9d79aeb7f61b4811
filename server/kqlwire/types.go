package kqlwire

// QueryRequest carries one KQL query to the service.
type QueryRequest struct {
	ID         string            `json:"id"`
	Database   string            `json:"database,omitempty"`
	Query      string            `json:"query"`
	Properties map[string]string `json:"properties,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// QueryResponse is the primary result table for a request ID, or an error.
type QueryResponse struct {
	ID      string   `json:"id"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
	Error   string   `json:"error,omitempty"`
}
