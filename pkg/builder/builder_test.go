package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/graphword/pkg/graph"
	"github.com/sanonone/graphword/pkg/metrics"
	"github.com/sanonone/graphword/pkg/vocab"
)

func newTestBuilder(t *testing.T, v vocab.Vocabulary) *Builder {
	t.Helper()
	opts := DefaultOptions("", filepath.Join(t.TempDir(), "word_graph.txt"))
	opts.Pace = 0
	b := New(opts)
	b.SetVocabulary(v)
	return b
}

func TestOneLetterDifference(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"cat", "bat", true},
		{"bat", "bad", true},
		{"cat", "bad", false},
		{"cat", "cat", false},
		{"at", "it", false},
		{"cat", "cats", false},
		{"año", "ajo", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, OneLetterDifference(c.a, c.b, 3), "%s/%s", c.a, c.b)
	}
}

func TestExpandCatBatBad(t *testing.T) {
	b := newTestBuilder(t, vocab.Vocabulary{"cat": 5, "bat": 3, "bad": 2})

	added, err := b.Expand(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	g := b.Graph()
	w, ok := g.Weight("cat", "bat")
	require.True(t, ok)
	assert.InDelta(t, 5.0/3.0, w, 1e-12)
	w, _ = g.Weight("bat", "cat")
	assert.InDelta(t, 3.0/5.0, w, 1e-12)
	w, _ = g.Weight("bat", "bad")
	assert.InDelta(t, 3.0/2.0, w, 1e-12)
	w, _ = g.Weight("bad", "bat")
	assert.InDelta(t, 2.0/3.0, w, 1e-12)

	_, ok = g.Weight("cat", "bad")
	assert.False(t, ok)
	_, ok = g.Weight("bad", "cat")
	assert.False(t, ok)
}

func TestEdgesAreInversePairs(t *testing.T) {
	b := newTestBuilder(t, vocab.Vocabulary{
		"cat": 5, "bat": 3, "bad": 2, "bid": 7, "bed": 11,
		"cart": 4, "card": 9, "care": 1, "core": 6,
	})
	for n := 3; n <= 4; n++ {
		_, err := b.Expand(context.Background(), n)
		require.NoError(t, err)
	}

	g := b.Graph()
	require.NotZero(t, g.EdgeCount())
	for _, e := range g.Edges() {
		back, ok := g.Weight(e.Target, e.Source)
		require.True(t, ok, "missing reverse of %s->%s", e.Source, e.Target)
		assert.InDelta(t, 1.0, e.Weight*back, 1e-9)
		assert.True(t, OneLetterDifference(e.Source, e.Target, 3))
	}
}

func TestNoEdgesForShortOrDifferentLengthWords(t *testing.T) {
	b := newTestBuilder(t, vocab.Vocabulary{"at": 1, "it": 2, "cat": 3, "cats": 4, "bats": 5})
	for n := 2; n <= 4; n++ {
		_, err := b.Expand(context.Background(), n)
		require.NoError(t, err)
	}

	for _, e := range b.Relations() {
		assert.GreaterOrEqual(t, len(e.Source), 3)
		assert.Equal(t, len(e.Source), len(e.Target))
	}
	g := b.Graph()
	assert.False(t, g.HasNode("at"))
	assert.True(t, g.HasNode("cats"))
	assert.False(t, g.HasNode("cat"))
}

func TestZeroCountsAreSkipped(t *testing.T) {
	b := newTestBuilder(t, vocab.Vocabulary{"cat": 0, "bat": 3})
	added, err := b.Expand(context.Background(), 3)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestCrossLengthComparesPrefixes(t *testing.T) {
	b := newTestBuilder(t, vocab.Vocabulary{"cat": 2, "bats": 4})
	b.opts.CrossLength = true

	_, err := b.Expand(context.Background(), 4)
	require.NoError(t, err)

	g := b.Graph()
	w, ok := g.Weight("bats", "cat")
	require.True(t, ok)
	assert.InDelta(t, 2.0, w, 1e-12)
}

func TestRunWritesSnapshotPerLength(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "global_vocabulary.txt")
	require.NoError(t, os.WriteFile(vocabPath, []byte("cat: 5\nbat: 3\nbad: 2\ncart: 4\ncard: 2\n"), 0644))

	out := filepath.Join(dir, "datamart_graph", "word_graph.txt")
	opts := DefaultOptions(vocabPath, out)
	opts.Pace = time.Millisecond
	opts.MaxWordLength = 4

	require.NoError(t, New(opts).Run(context.Background()))

	g, err := graph.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 6, g.EdgeCount())
	w, ok := g.Weight("cart", "card")
	require.True(t, ok)
	assert.InDelta(t, 2.0, w, 1e-4)

	// One duration series per processed length.
	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.BuilderLengthDuration), 2)
}

func TestRunAbortsWithoutVocabulary(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "word_graph.txt")
	opts := DefaultOptions(filepath.Join(dir, "nope.txt"), out)
	opts.Pace = 0

	err := New(opts).Run(context.Background())
	require.ErrorIs(t, err, vocab.ErrNotFound)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no partial graph should be written")
}

func TestRunHonoursCancellation(t *testing.T) {
	b := newTestBuilder(t, vocab.Vocabulary{"cat": 5, "bat": 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
