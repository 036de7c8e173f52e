// Package output writes the collected domain set to disk.
package output

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/seclorum/xbsearch/internal/domainset"
)

// DefaultName derives the default output filename from the given clock
// reading: xb_DDMMYYHHMM.txt. Callers pass the time in so runs can pin it.
func DefaultName(now time.Time) string {
	return "xb_" + now.Format("0201061504") + ".txt"
}

// Write stores the collected hostnames at path, one per line in lexical
// order, replacing any existing file. An empty set still produces the file:
// a run that found nothing has still run.
func Write(path string, set *domainset.Set) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, host := range set.Sorted() {
		if _, err := fmt.Fprintln(w, host); err != nil {
			f.Close()
			return fmt.Errorf("writing output file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}
