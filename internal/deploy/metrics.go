package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// CommitResolver looks up the committer timestamp of a commit.
// Implementations return "" when the timestamp cannot be determined.
type CommitResolver interface {
	CommitTimestamp(ctx context.Context, repo, sha string) string
}

// DurationBetween returns the whole seconds from start to end.
// It is absent if either timestamp is empty or malformed, and zero if end is before start.
func DurationBetween(start, end string) Duration {
	d, _ := elapsed(start, end)
	return d
}

func elapsed(start, end string) (Duration, error) {
	startTime, err := ParseTimestamp(start)
	if err != nil {
		return Duration{}, err
	}
	endTime, err := ParseTimestamp(end)
	if err != nil {
		return Duration{}, err
	}

	// Whole seconds, truncated toward zero. Unix arithmetic avoids time.Duration overflow.
	secs := endTime.Unix() - startTime.Unix()
	if endTime.Nanosecond() < startTime.Nanosecond() {
		secs--
	}
	if secs < 0 {
		secs = 0
	}
	return Seconds(secs), nil
}

// IsChangeFailureCandidate reports whether a deployment with this status may be a failed change.
// Only the exact status "success" is not a candidate.
func IsChangeFailureCandidate(status string) bool {
	return status != "success"
}

// ParseBool treats "1", "true", "yes" and "y" (any case) as true and everything else as false
func ParseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// BuildEvent assembles the deployment event for a single CI job.
// Enrichment failures never fail the build; they surface as absent fields.
func BuildEvent(ctx context.Context, resolver CommitResolver, in Inputs, logger *zap.SugaredLogger) DeploymentEvent {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	commitTimestamp := resolver.CommitTimestamp(ctx, in.Repo, in.SHA)

	deploymentDuration, err := elapsed(in.RunStartedAt, in.CompletedAt)
	logMalformed(logger, "deployment_duration_seconds", err)

	leadTime, err := elapsed(commitTimestamp, in.CompletedAt)
	logMalformed(logger, "lead_time_seconds_from_commit", err)

	return DeploymentEvent{
		EventType:                 EventType,
		Repo:                      in.Repo,
		Environment:               in.Environment,
		IsProduction:              ParseBool(in.IsProduction),
		Status:                    in.Status,
		RunID:                     in.RunID,
		RunAttempt:                in.RunAttempt,
		RunNumber:                 in.RunNumber,
		Workflow:                  in.Workflow,
		Job:                       in.Job,
		Actor:                     in.Actor,
		RefName:                   in.RefName,
		SHA:                       in.SHA,
		RunStartedAt:              in.RunStartedAt,
		CompletedAt:               in.CompletedAt,
		RunURL:                    in.RunURL,
		CommitTimestamp:           commitTimestamp,
		DeploymentDurationSeconds: deploymentDuration,
		LeadTimeSecondsFromCommit: leadTime,
		ChangeFailureCandidate:    IsChangeFailureCandidate(in.Status),
	}
}

// logMalformed warns about unparseable timestamps. Missing ones are expected and not logged.
func logMalformed(logger *zap.SugaredLogger, field string, err error) {
	var malformed *MalformedTimestampError
	if errors.As(err, &malformed) {
		logger.Warnw("Leaving field empty", "field", field, "error", err)
	}
}

// WritePayload writes the event as 2-space indented JSON followed by a newline
func WritePayload(w io.Writer, event DeploymentEvent) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	return nil
}
