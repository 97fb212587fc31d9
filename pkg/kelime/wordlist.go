package kelime

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"strings"
)

const maxLineSize = 1024 * 1024

// ReadLines returns the non-empty lines of the UTF-8 text file at path, in file order.
// Trailing line feeds and carriage returns are stripped; nothing else is trimmed,
// deduplicated or normalized. The file is opened when iteration starts and closed
// when it ends, so every iteration re-reads the file.
//
// An open or scan failure is yielded once as the error element and ends the sequence.
func ReadLines(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield("", fmt.Errorf("open word list: %w", err))
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r\n")
			if line == "" {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("read word list: %w", err))
		}
	}
}
