package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthortech/aiops-assistant/internal/storage"
)

func testEntry(intent string) Entry {
	entry := NewEntry()
	entry.Intent = intent
	entry.RedactedInput = "list [REDACTED_EMAIL] accounts"
	entry.PlanSummary = intent + "/sql_plan"
	entry.Status = "ok"
	entry.RedactionCounts = map[string]int{"email": 1, "phone": 0, "ssn": 0}
	return entry
}

func TestNewEntry(t *testing.T) {
	entry := NewEntry()
	assert.Equal(t, EntryIDPrefix, entry.EventID.Prefix)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestFileSinkAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "log.ndjson")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	require.NoError(t, sink.Append(ctx, testEntry("QUERY")))
	require.NoError(t, sink.Append(ctx, testEntry("EXPLAIN")))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	var intents []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "each line is standalone JSON")
		intents = append(intents, entry.Intent)
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{"QUERY", "EXPLAIN"}, intents)
}

func TestFileSinkAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.ndjson")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(context.Background(), testEntry("QUERY")))
	require.NoError(t, sink.Close())

	sink, err = NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(context.Background(), testEntry("VALIDATE")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "QUERY")
	assert.Contains(t, string(data), "VALIDATE")
}

func TestFileSinkConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.ndjson")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Append(context.Background(), testEntry("QUERY"))
		}()
	}
	wg.Wait()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "no interleaved lines")
		lines++
	}
	assert.Equal(t, 20, lines)
}

func TestArchiveSinkWritesPerEventDocuments(t *testing.T) {
	provider := storage.NewLocalFileProvider(t.TempDir())
	sink := NewArchiveSink(provider)
	ctx := context.Background()

	entry := testEntry("SUMMARIZE")
	require.NoError(t, sink.Append(ctx, entry))

	data, err := provider.Read(ctx, entry.EventID.String()+".json")
	require.NoError(t, err)

	var decoded Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry.EventID.String(), decoded.EventID.String())
	assert.Equal(t, "SUMMARIZE", decoded.Intent)
}

type failingSink struct{}

func (failingSink) Append(context.Context, Entry) error {
	return errors.New("sink unavailable")
}

func TestMultiSinkReachesAllSinks(t *testing.T) {
	a := NewMemorySink()
	b := NewMemorySink()
	multi := NewMultiSink(a, failingSink{}, b)

	err := multi.Append(context.Background(), testEntry("QUERY"))

	assert.Error(t, err, "fan-out reports sink failures")
	assert.Len(t, a.Entries(), 1)
	assert.Len(t, b.Entries(), 1, "later sinks still see the entry")
}

func TestMultiSinkNoErrors(t *testing.T) {
	a := NewMemorySink()
	multi := NewMultiSink(a)
	assert.NoError(t, multi.Append(context.Background(), testEntry("QUERY")))
}

func TestMemorySinkEntriesIsACopy(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Append(context.Background(), testEntry("QUERY")))

	entries := sink.Entries()
	entries[0].Intent = "mutated"

	assert.Equal(t, "QUERY", sink.Entries()[0].Intent)
}
