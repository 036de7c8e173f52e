// Package csvbackend journals fetch records to a single CSV file.
package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/seclorum/xbsearch/internal/journal"
)

// ensure csvBackend implements journal.Backend
var _ journal.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"word",
	"query",
	"engine",
	"page",
	"url",
	"status_code",
	"duration_ms",
	"domains",
	"challenged",
	"challenge_src",
	"created_at",
	"error",
}

// New creates a new CSV-backed journal.Backend.
func New(filePath string) (journal.Backend, error) {
	// Open file for appending, create if it doesn't exist
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening journal file: %w", err)
	}

	// Check if file is empty to write headers
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("inspecting journal file: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing journal header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing journal header: %w", err)
		}
	}

	return &csvBackend{
		file: f,
	}, nil
}

func (b *csvBackend) Save(ctx context.Context, rec *journal.Record) error {
	row := []string{
		rec.ID,
		rec.Word,
		rec.Query,
		rec.Engine,
		strconv.Itoa(rec.Page),
		rec.URL,
		strconv.Itoa(rec.StatusCode),
		strconv.FormatInt(rec.Duration.Milliseconds(), 10),
		strconv.Itoa(rec.Domains),
		strconv.FormatBool(rec.Challenged),
		rec.ChallengeSrc,
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.Error,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we're at the end of the file for appending (just in case)
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seeking journal file: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing journal row: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("writing journal row: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter journal.Filter) ([]*journal.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Seek to the beginning of the file to read all entries
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking journal file: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	// Read headers
	_, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return []*journal.Record{}, nil
		}
		return nil, fmt.Errorf("reading journal header: %w", err)
	}

	var allFiltered []*journal.Record

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading journal row: %w", err)
		}

		if len(row) != len(headers) {
			continue // skip malformed rows
		}

		page, _ := strconv.Atoi(row[4])
		statusCode, _ := strconv.Atoi(row[6])
		durationMs, _ := strconv.ParseInt(row[7], 10, 64)
		domains, _ := strconv.Atoi(row[8])
		challenged, _ := strconv.ParseBool(row[9])
		createdAt, _ := time.Parse(time.RFC3339Nano, row[11])

		rec := &journal.Record{
			ID:           row[0],
			Word:         row[1],
			Query:        row[2],
			Engine:       row[3],
			Page:         page,
			URL:          row[5],
			StatusCode:   statusCode,
			Duration:     time.Duration(durationMs) * time.Millisecond,
			Domains:      domains,
			Challenged:   challenged,
			ChallengeSrc: row[10],
			CreatedAt:    createdAt,
			Error:        row[12],
		}

		// Apply filters
		if filter.Word != "" && rec.Word != filter.Word {
			continue
		}
		if filter.Engine != "" && rec.Engine != filter.Engine {
			continue
		}
		if filter.Challenged != nil && rec.Challenged != *filter.Challenged {
			continue
		}
		if filter.Since != nil && rec.CreatedAt.Before(*filter.Since) {
			continue
		}

		allFiltered = append(allFiltered, rec)
	}

	// Order by created_at DESC (reverse the slice)
	for i, j := 0, len(allFiltered)-1; i < j; i, j = i+1, j-1 {
		allFiltered[i], allFiltered[j] = allFiltered[j], allFiltered[i]
	}

	// Apply Offset
	if filter.Offset > 0 {
		if filter.Offset >= len(allFiltered) {
			return []*journal.Record{}, nil
		}
		allFiltered = allFiltered[filter.Offset:]
	}

	// Apply Limit
	if filter.Limit > 0 && filter.Limit < len(allFiltered) {
		allFiltered = allFiltered[:filter.Limit]
	}

	return allFiltered, nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
