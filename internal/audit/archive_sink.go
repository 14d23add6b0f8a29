package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/luthortech/aiops-assistant/internal/storage"
)

// ArchiveSink writes each entry as an individual JSON document through
// a FileProvider, keyed by event ID. With an S3-backed provider this
// gives a durable per-event archive alongside the local NDJSON log.
type ArchiveSink struct {
	provider storage.FileProvider
}

// NewArchiveSink creates an archive sink on the given provider.
func NewArchiveSink(provider storage.FileProvider) *ArchiveSink {
	return &ArchiveSink{provider: provider}
}

// Append writes the entry as a pretty-printed JSON document named
// after its event ID.
func (s *ArchiveSink) Append(ctx context.Context, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	path := entry.EventID.String() + ".json"
	if err := s.provider.Write(ctx, path, data); err != nil {
		return fmt.Errorf("failed to archive audit entry %s: %w", path, err)
	}
	return nil
}

// MultiSink fans an entry out to several sinks. Every sink sees the
// entry even when an earlier one fails; failures are aggregated.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that appends to all given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Append writes the entry to every sink and aggregates any errors.
func (s *MultiSink) Append(ctx context.Context, entry Entry) error {
	var result *multierror.Error
	for _, sink := range s.sinks {
		if err := sink.Append(ctx, entry); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
