package localstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leobook/canondict/internal/domain"
)

var recordsHeader = []string{"source_id", "raw_name", "entity_kind", "region_hint", "occurrence_count"}

// ReadRawRecords loads the raw extraction dump produced by upstream scrapers.
// Rows with a blank source_id or raw_name are skipped; a malformed
// occurrence_count defaults to 1 rather than aborting the whole build.
func ReadRawRecords(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(recordsHeader)

	head, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read records header: %w", err)
	}
	if !headerMatches(head) {
		return nil, fmt.Errorf("unexpected records header %v", head)
	}

	var records []domain.RawRecord
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read records row %d: %w", line, err)
		}
		sourceID := strings.TrimSpace(row[0])
		rawName := strings.TrimSpace(row[1])
		if sourceID == "" || rawName == "" {
			continue
		}
		kind := domain.EntityKind(strings.TrimSpace(row[2]))
		if !kind.IsValid() {
			return nil, fmt.Errorf("records row %d: unknown entity kind %q", line, row[2])
		}
		occurrences, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil || occurrences < 1 {
			occurrences = 1
		}
		records = append(records, domain.RawRecord{
			SourceID:    sourceID,
			RawName:     rawName,
			Kind:        kind,
			RegionHint:  strings.TrimSpace(row[3]),
			Occurrences: occurrences,
		})
	}
	return records, nil
}

func headerMatches(head []string) bool {
	if len(head) != len(recordsHeader) {
		return false
	}
	for i, h := range head {
		if strings.TrimSpace(h) != recordsHeader[i] {
			return false
		}
	}
	return true
}
