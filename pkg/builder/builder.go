// Package builder constructs the word graph from a vocabulary.
//
// Two words are related when they have the same length (at least
// MinWordLength runes) and differ in exactly one position. Every related
// pair produces two directed edges whose weights are the frequency ratio of
// source to target, so the edge pair is a multiplicative inverse.
//
// Words are processed in increasing length order and the accumulated edge
// set is written to the output file after every length, so a consumer can
// pick up a partial graph while a long build is running.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sanonone/graphword/pkg/graph"
	"github.com/sanonone/graphword/pkg/metrics"
	"github.com/sanonone/graphword/pkg/vocab"
)

// Options configures a Builder.
type Options struct {
	// VocabularyPath is the "word: count" file to read.
	VocabularyPath string

	// OutputPath is the edge-list snapshot rewritten after every length.
	OutputPath string

	// MinWordLength is the first length processed and the shortest word
	// that can take part in an edge (default 3).
	MinWordLength int

	// MaxWordLength is the last length processed (default 7).
	MaxWordLength int

	// Pace is the delay between two lengths. Zero disables pacing.
	Pace time.Duration

	// CrossLength also relates a word to shorter words whose runes match
	// its prefix in all but one position. Off by default: with it enabled
	// edges between words of different length appear.
	CrossLength bool

	// Workers bounds the goroutines comparing same-length pairs.
	// Defaults to GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the settings the batch job runs with.
func DefaultOptions(vocabularyPath, outputPath string) Options {
	return Options{
		VocabularyPath: vocabularyPath,
		OutputPath:     outputPath,
		MinWordLength:  3,
		MaxWordLength:  7,
		Pace:           5 * time.Second,
	}
}

type pair struct {
	src, dst string
}

// Builder accumulates the relation set across lengths.
// It is not safe for concurrent use.
type Builder struct {
	opts      Options
	vocab     vocab.Vocabulary
	relations map[pair]float64
	next      int
}

// New creates a Builder. Call LoadVocabulary or SetVocabulary before Expand.
func New(opts Options) *Builder {
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = 3
	}
	if opts.MaxWordLength <= 0 {
		opts.MaxWordLength = 7
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{
		opts:      opts,
		relations: make(map[pair]float64),
		next:      opts.MinWordLength,
	}
}

// LoadVocabulary reads the vocabulary from Options.VocabularyPath.
func (b *Builder) LoadVocabulary() error {
	v, err := vocab.Load(b.opts.VocabularyPath)
	if err != nil {
		return err
	}
	b.vocab = v
	slog.Info("Vocabulary loaded", "path", b.opts.VocabularyPath, "words", len(v))
	return nil
}

// SetVocabulary installs an in-memory vocabulary.
func (b *Builder) SetVocabulary(v vocab.Vocabulary) {
	b.vocab = v
}

// OneLetterDifference reports whether a and b have the same rune length,
// are at least minLen runes long and differ in exactly one position.
func OneLetterDifference(a, b string, minLen int) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	return hamming1(ra, rb, minLen)
}

// prefixDifference compares the shorter word against the prefix of the
// longer one and requires exactly one mismatch.
func prefixDifference(long, short []rune, minLen int) bool {
	if len(short) > len(long) {
		long, short = short, long
	}
	return hamming1(long[:len(short)], short, minLen)
}

func hamming1(a, b []rune, minLen int) bool {
	if len(a) < minLen || len(b) < minLen {
		return false
	}
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
			if diff > 1 {
				return false
			}
		}
	}
	return diff == 1
}

// Expand relates every word of length n to the other words of length n and,
// when CrossLength is set, to the shorter words. It returns the number of
// directed edges added to the relation set.
func (b *Builder) Expand(ctx context.Context, n int) (int, error) {
	if b.vocab == nil {
		return 0, fmt.Errorf("vocabulary not loaded")
	}

	words := b.vocab.WordsOfLength(n)
	pairs, err := b.sameLengthPairs(ctx, words)
	if err != nil {
		return 0, err
	}

	if b.opts.CrossLength {
		shorter := b.vocab.WordsShorterThan(n)
		for _, w1 := range words {
			r1 := []rune(w1)
			for _, w2 := range shorter {
				if prefixDifference(r1, []rune(w2), b.opts.MinWordLength) {
					pairs = append(pairs, pair{w1, w2})
				}
			}
		}
	}

	added := 0
	for _, p := range pairs {
		added += b.relate(p.src, p.dst)
	}
	metrics.BuilderEdgesTotal.WithLabelValues(strconv.Itoa(n)).Add(float64(added))
	return added, nil
}

// sameLengthPairs compares all unordered pairs of words, sharding the outer
// loop across Workers goroutines. The returned order is deterministic.
func (b *Builder) sameLengthPairs(ctx context.Context, words []string) ([]pair, error) {
	runes := make([][]rune, len(words))
	for i, w := range words {
		runes[i] = []rune(w)
	}

	workers := b.opts.Workers
	if workers > len(words) {
		workers = len(words)
	}
	if workers == 0 {
		return nil, nil
	}

	shards := make([][]pair, workers)
	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < workers; k++ {
		k := k
		g.Go(func() error {
			var local []pair
			for i := k; i < len(words); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				for j := i + 1; j < len(words); j++ {
					if hamming1(runes[i], runes[j], b.opts.MinWordLength) {
						local = append(local, pair{words[i], words[j]})
					}
				}
			}
			shards[k] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []pair
	for _, s := range shards {
		out = append(out, s...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].src != out[j].src {
			return out[i].src < out[j].src
		}
		return out[i].dst < out[j].dst
	})
	return out, nil
}

// relate records both directions of a pair. Pairs with a zero count are skipped.
func (b *Builder) relate(w1, w2 string) int {
	c1, c2 := b.vocab[w1], b.vocab[w2]
	if c1 == 0 || c2 == 0 {
		return 0
	}
	added := 0
	for _, e := range [2]struct {
		p pair
		w float64
	}{
		{pair{w1, w2}, float64(c1) / float64(c2)},
		{pair{w2, w1}, float64(c2) / float64(c1)},
	} {
		if _, ok := b.relations[e.p]; !ok {
			added++
		}
		b.relations[e.p] = e.w
	}
	return added
}

// Relations returns the accumulated edges ordered by source, then target.
func (b *Builder) Relations() []graph.Edge {
	edges := make([]graph.Edge, 0, len(b.relations))
	for p, w := range b.relations {
		edges = append(edges, graph.Edge{Source: p.src, Target: p.dst, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// Graph returns the accumulated relations as a frozen graph.
func (b *Builder) Graph() *graph.Graph {
	return graph.FromEdges(b.Relations())
}

// Run loads the vocabulary and processes lengths MinWordLength through
// MaxWordLength, snapshotting after each one. A missing vocabulary aborts
// the run before anything is written.
func (b *Builder) Run(ctx context.Context) error {
	start := time.Now()
	if b.vocab == nil {
		if err := b.LoadVocabulary(); err != nil {
			return err
		}
	}

	var limiter *rate.Limiter
	if b.opts.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(b.opts.Pace), 1)
	}

	for ; b.next <= b.opts.MaxWordLength; b.next++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("build interrupted before length %d: %w", b.next, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		slog.Info("Processing words", "length", b.next)
		lengthStart := time.Now()
		added, err := b.Expand(ctx, b.next)
		if err != nil {
			return fmt.Errorf("expand length %d: %w", b.next, err)
		}

		if err := graph.WriteEdges(b.opts.OutputPath, b.Relations()); err != nil {
			return fmt.Errorf("snapshot after length %d: %w", b.next, err)
		}
		metrics.BuilderLengthDuration.WithLabelValues(strconv.Itoa(b.next)).Observe(time.Since(lengthStart).Seconds())
		slog.Info("Graph snapshot updated",
			"length", b.next,
			"added_edges", added,
			"total_edges", len(b.relations),
			"path", b.opts.OutputPath,
		)
	}

	slog.Info("All word lengths processed", "duration", time.Since(start).String(), "edges", len(b.relations))
	return nil
}
