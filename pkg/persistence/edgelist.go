package persistence

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// WeightPrecision is the number of decimals used when writing edge weights.
const WeightPrecision = 4

// EdgeRecord is one line of an edge-list file: "source target weight".
type EdgeRecord struct {
	Source string
	Target string
	Weight float64
}

// ReadEdgeList parses an edge list. Lines that do not have exactly three
// whitespace-separated fields, or whose weight is not a positive finite
// number, are skipped and counted in skipped.
func ReadEdgeList(r io.Reader) (records []EdgeRecord, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			skipped++
			continue
		}

		w, perr := strconv.ParseFloat(fields[2], 64)
		if perr != nil || w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			skipped++
			continue
		}

		records = append(records, EdgeRecord{Source: fields[0], Target: fields[1], Weight: w})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read edge list: %w", err)
	}
	return records, skipped, nil
}

// WriteEdgeList writes records in the order given, one per line.
func WriteEdgeList(w io.Writer, records []EdgeRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%s %s %s\n", rec.Source, rec.Target, FormatWeight(rec.Weight)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatWeight renders a weight the way edge-list files store it.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', WeightPrecision, 64)
}
