package persistence

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEdgeListSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"cat bat 1.6667",
		"bat cat 0.6000",
		"",
		"only two",
		"too many fields here",
		"bad weight x",
		"neg weight -1",
		"zero weight 0",
		"  bat   bad   1.5000  ",
	}, "\n")

	records, skipped, err := ReadEdgeList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, skipped)
	require.Len(t, records, 3)
	assert.Equal(t, EdgeRecord{Source: "bat", Target: "bad", Weight: 1.5}, records[2])
}

func TestWriteEdgeListUsesFourDecimals(t *testing.T) {
	var buf bytes.Buffer
	err := WriteEdgeList(&buf, []EdgeRecord{
		{Source: "cat", Target: "bat", Weight: 5.0 / 3.0},
		{Source: "bat", Target: "cat", Weight: 0.6},
	})
	require.NoError(t, err)
	assert.Equal(t, "cat bat 1.6667\nbat cat 0.6000\n", buf.String())
}

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "graph.txt")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestWriteFileAtomicKeepsOldContentOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	boom := errors.New("boom")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be removed")
}
