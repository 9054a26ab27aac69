package models

// SolveResponse is returned by the solve and diagram endpoints. Diagrams is
// aligned with the markers in Solution: a failed diagram is null.
type SolveResponse struct {
	Success        bool            `json:"success"`
	RequestID      string          `json:"request_id"`
	Solution       string          `json:"solution"`
	Diagrams       []*DiagramEntry `json:"diagrams"`
	FailedDiagrams int             `json:"failed_diagrams"`
}

// DiagramEntry is one rendered diagram.
type DiagramEntry struct {
	Ordinal     int      `json:"ordinal"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	Forces      []string `json:"forces"`
	Placeholder bool     `json:"placeholder,omitempty"`
	Image       string   `json:"image"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	APIConfigured bool   `json:"api_configured"`
}
