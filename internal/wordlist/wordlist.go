// Package wordlist loads the input words a run queries for.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a newline-delimited word list. Surrounding whitespace is
// trimmed and blank lines are skipped; duplicates and line order are
// preserved exactly as given. A list that yields no words is an error: the
// run would do nothing and an empty output would look like a real result.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %q contains no words", path)
	}
	return words, nil
}
