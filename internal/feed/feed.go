// Package feed reads the desk's comma separated input files and ingests
// their rows into the service stores. Malformed rows are logged and skipped;
// a missing file is an error the caller treats as fatal for that feed.
package feed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// scanRows walks r line by line, splitting each line on commas and handing
// the fields to parse. A parse error skips the row; scanning continues.
func scanRows(r io.Reader, parse func([]string) error) (rows, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := parse(strings.Split(line, ",")); err != nil {
			skipped++
			continue
		}
		rows++
	}
	return rows, skipped, scanner.Err()
}

func fieldCount(elements []string, want int) error {
	if len(elements) != want {
		return fmt.Errorf("want %d fields, got %d", want, len(elements))
	}
	return nil
}

func openFeed(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	return f, nil
}
