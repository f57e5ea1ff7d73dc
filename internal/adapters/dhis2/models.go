package dhis2

import (
	"encoding/json"
	"strings"
)

// ImportCount tallies what DHIS2 did with the submitted values
type ImportCount struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Ignored  int `json:"ignored"`
	Deleted  int `json:"deleted"`
}

// Conflict is one rejected value
type Conflict struct {
	Object string `json:"object"`
	Value  string `json:"value"`
}

// ImportSummary is the outcome of a data value set import
type ImportSummary struct {
	Status      string      `json:"status"`
	Description string      `json:"description,omitempty"`
	ImportCount ImportCount `json:"importCount"`
	Conflicts   []Conflict  `json:"conflicts,omitempty"`
}

// OK reports a SUCCESS or WARNING import
func (s *ImportSummary) OK() bool {
	st := strings.ToUpper(s.Status)
	return st == "SUCCESS" || st == "OK" || st == "WARNING"
}

// webMessage wraps the summary on DHIS2 2.36 and later
type webMessage struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

// decodeSummary accepts both the bare summary of older servers and the
// web message envelope of newer ones
func decodeSummary(body []byte) (*ImportSummary, error) {
	var wm webMessage
	if err := json.Unmarshal(body, &wm); err != nil {
		return nil, err
	}
	if len(wm.Response) > 0 && string(wm.Response) != "null" {
		var s ImportSummary
		if err := json.Unmarshal(wm.Response, &s); err != nil {
			return nil, err
		}
		if s.Description == "" {
			s.Description = wm.Message
		}
		return &s, nil
	}
	var s ImportSummary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
