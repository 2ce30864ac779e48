// Package vocab loads the word-frequency vocabulary produced by the upstream
// dictionary builder. The file holds one "word: count" entry per line.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned when the vocabulary file does not exist.
	ErrNotFound = errors.New("vocabulary not found")

	// ErrMalformed is returned when a line is not a valid "word: count" entry.
	ErrMalformed = errors.New("malformed vocabulary entry")
)

// Vocabulary maps a word to its occurrence count.
type Vocabulary map[string]int

// Load reads the vocabulary file at path.
func Load(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	v, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse reads "word: count" lines from r. Blank lines are ignored; a later
// entry for the same word overrides an earlier one.
func Parse(r io.Reader) (Vocabulary, error) {
	v := make(Vocabulary)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		word, count, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w at line %d: missing ':'", ErrMalformed, lineNo)
		}
		word = strings.TrimSpace(word)
		if word == "" {
			return nil, fmt.Errorf("%w at line %d: empty word", ErrMalformed, lineNo)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w at line %d: bad count %q", ErrMalformed, lineNo, count)
		}
		v[word] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

// WordsOfLength returns the words with exactly n runes, sorted.
func (v Vocabulary) WordsOfLength(n int) []string {
	var words []string
	for w := range v {
		if utf8.RuneCountInString(w) == n {
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}

// WordsShorterThan returns the words with fewer than n runes, sorted.
func (v Vocabulary) WordsShorterThan(n int) []string {
	var words []string
	for w := range v {
		if utf8.RuneCountInString(w) < n {
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}
