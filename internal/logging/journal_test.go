package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	journal, err := NewJournal("batch", WithWriter(buf))
	require.NoError(t, err)

	require.NoError(t, journal.Emit(Event{
		Type:      EventTransformCompleted,
		Transform: "base64",
		Payloads:  3,
		Output:    "tests/json_base64.txt",
	}))

	var decoded Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "batch", decoded.Component)
	assert.Equal(t, EventTransformCompleted, decoded.Type)
	assert.Equal(t, "base64", decoded.Transform)
	assert.Equal(t, 3, decoded.Payloads)
	assert.False(t, decoded.Timestamp.IsZero(), "timestamp should be set")
}

func TestJournalDoesNotEscapeHTML(t *testing.T) {
	buf := &bytes.Buffer{}
	journal, err := NewJournal("batch", WithWriter(buf))
	require.NoError(t, err)

	require.NoError(t, journal.Emit(Event{Type: EventTransformFailed, Error: "<script> & friends"}))
	assert.Contains(t, buf.String(), "<script> & friends")
}

func TestJournalRequiresWriter(t *testing.T) {
	_, err := NewJournal("batch")
	assert.Error(t, err)

	_, err = NewJournal("batch", WithWriter(nil))
	assert.Error(t, err)

	_, err = NewJournal("batch", WithFile("  "))
	assert.Error(t, err)
}

func TestJournalFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	for i := 0; i < 2; i++ {
		journal, err := NewJournal("batch", WithFile(path))
		require.NoError(t, err)
		require.NoError(t, journal.Emit(Event{Type: EventBatchStarted}))
		require.NoError(t, journal.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestNilJournalDiscards(t *testing.T) {
	var journal *Journal
	assert.NoError(t, journal.Emit(Event{Type: EventBatchStarted}))
	assert.NoError(t, journal.Close())
	assert.Nil(t, journal.WithComponent("other"))
}

func TestJournalWithComponentSharesWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	journal, err := NewJournal("batch", WithWriter(buf))
	require.NoError(t, err)

	child := journal.WithComponent("convert")
	require.NoError(t, child.Emit(Event{Type: EventBatchCompleted}))
	require.NoError(t, child.Close())

	var decoded Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "convert", decoded.Component)
}

func TestJournalConcurrentEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	journal, err := NewJournal("batch", WithWriter(buf))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = journal.Emit(Event{Type: EventTransformCompleted, Transform: "rot13"})
		}()
	}
	wg.Wait()

	lines := 0
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var decoded Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
		lines++
	}
	assert.Equal(t, 16, lines)
}
