package bundle

import "time"

// Entry is one rendered column summary stored in a bundle.
type Entry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Path        string    `json:"path,omitempty"`
	Field       string    `json:"field,omitempty"`
	Query       string    `json:"query,omitempty"`
	Category    string    `json:"category"`
	NExamples   int       `json:"n_examples"`
	Description string    `json:"description,omitempty"`
	Summary     string    `json:"summary"`
	Tokens      int       `json:"tokens"`
	AddedAt     time.Time `json:"added_at"`
}

// Label names the column an entry describes: its field, else its query.
func (e *Entry) Label() string {
	if e.Field != "" {
		return e.Field
	}
	return e.Query
}
