package deploy

import (
	"fmt"
	"strconv"
)

// EventType is the constant event_type emitted for every payload
const EventType = "deployment_finished"

// Inputs holds the raw facts about a single deployment job, as supplied by the CI caller
type Inputs struct {
	Environment  string
	IsProduction string // coerced with ParseBool
	Status       string
	Repo         string // owner/name
	RunID        string
	RunAttempt   string
	RunNumber    string
	Workflow     string
	Job          string
	Actor        string
	RefName      string
	SHA          string
	RunStartedAt string
	CompletedAt  string
	RunURL       string
}

// DeploymentEvent is the flat record printed for downstream ingestion.
// Field order here is the order of keys in the JSON output.
type DeploymentEvent struct {
	EventType                 string   `json:"event_type"`
	Repo                      string   `json:"repo"`
	Environment               string   `json:"environment"`
	IsProduction              bool     `json:"is_production"`
	Status                    string   `json:"status"`
	RunID                     string   `json:"run_id"`
	RunAttempt                string   `json:"run_attempt"`
	RunNumber                 string   `json:"run_number"`
	Workflow                  string   `json:"workflow"`
	Job                       string   `json:"job"`
	Actor                     string   `json:"actor"`
	RefName                   string   `json:"ref_name"`
	SHA                       string   `json:"sha"`
	RunStartedAt              string   `json:"run_started_at"`
	CompletedAt               string   `json:"completed_at"`
	RunURL                    string   `json:"run_url"`
	CommitTimestamp           string   `json:"commit_timestamp"` // empty when the lookup failed
	DeploymentDurationSeconds Duration `json:"deployment_duration_seconds"`
	LeadTimeSecondsFromCommit Duration `json:"lead_time_seconds_from_commit"`
	ChangeFailureCandidate    bool     `json:"change_failure_candidate"`
}

// Duration is a non-negative whole number of seconds, or absent.
// An absent Duration encodes as "" so the key is never dropped.
type Duration struct {
	Seconds int64
	Valid   bool
}

// Seconds returns a present Duration
func Seconds(n int64) Duration {
	return Duration{Seconds: n, Valid: true}
}

func (d Duration) String() string {
	if !d.Valid {
		return ""
	}
	return strconv.FormatInt(d.Seconds, 10)
}

// MarshalJSON encodes a present duration as a JSON integer and an absent one as ""
func (d Duration) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte(`""`), nil
	}
	return strconv.AppendInt(nil, d.Seconds, 10), nil
}

// UnmarshalJSON accepts either an integer or the empty string
func (d *Duration) UnmarshalJSON(data []byte) error {
	if string(data) == `""` || string(data) == "null" {
		*d = Duration{}
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: %w", data, err)
	}
	*d = Seconds(n)
	return nil
}
