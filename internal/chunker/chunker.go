// Package chunker splits extracted document text into overlapping segments
// that prefer to end on a sentence or line boundary.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

var (
	ErrInvalidSize    = errors.New("chunk size must be positive")
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than chunk size")
)

// Chunker holds a validated size/overlap pair.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

func (c *Chunker) Split(text string) []string {
	return split([]rune(text), c.size, c.overlap)
}

// Split cuts text into windows of at most size runes. Consecutive windows share
// overlap runes unless a boundary snap leaves no room for them.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return split([]rune(text), size, overlap), nil
}

func validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidOverlap, size, overlap)
	}
	return nil
}

func split(runes []rune, size, overlap int) []string {
	n := len(runes)
	if n <= size {
		return []string{strings.TrimSpace(string(runes))}
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else if cut := boundary(runes[start:end]); cut > size/2 {
			end = start + cut + 1
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == n {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundary returns the index of the last '.' or '\n' in window, or -1.
func boundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
