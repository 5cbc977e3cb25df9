// Package words holds the word lists the engine draws secrets from and
// validates guesses against. Lists are loaded once at startup, bucketed by
// word length, and immutable afterwards, so concurrent reads need no
// synchronization.
package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
)

//go:embed default_words.txt
var embeddedWords string

var ErrNoWordsForLength = errors.New("no words for length")

// Bank maps word length to the set of known words of that length.
type Bank struct {
	byLen map[int]map[string]struct{}
	lists map[int][]string // stable order, for random draws
}

// Load reads one word per line from path. An empty path falls back to the
// embedded default list. Words are trimmed, uppercased, and bucketed by
// length; blank lines and '#' comments are skipped.
func Load(path string) (*Bank, error) {
	var lines []string
	if path == "" {
		lines = strings.Split(embeddedWords, "\n")
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open word list: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read word list: %w", err)
		}
	}
	return FromList(lines)
}

// FromList builds a Bank from raw lines. Exposed so tests can run against a
// fixed vocabulary.
func FromList(lines []string) (*Bank, error) {
	b := &Bank{
		byLen: make(map[int]map[string]struct{}),
		lists: make(map[int][]string),
	}
	for _, line := range lines {
		w := strings.ToUpper(strings.TrimSpace(line))
		if w == "" || strings.HasPrefix(w, "#") || !isAlpha(w) {
			continue
		}
		n := len(w)
		if b.byLen[n] == nil {
			b.byLen[n] = make(map[string]struct{})
		}
		if _, dup := b.byLen[n][w]; dup {
			continue
		}
		b.byLen[n][w] = struct{}{}
		b.lists[n] = append(b.lists[n], w)
	}
	if len(b.lists) == 0 {
		return nil, errors.New("words: list is empty")
	}
	return b, nil
}

// RandomWord draws a cryptographically random word of the given length.
func (b *Bank) RandomWord(length int) (string, error) {
	list := b.lists[length]
	if len(list) == 0 {
		return "", fmt.Errorf("%w: %d", ErrNoWordsForLength, length)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", fmt.Errorf("draw word: %w", err)
	}
	return list[n.Int64()], nil
}

// IsValid reports whether w is a known word of exactly its own length.
// Case-insensitive.
func (b *Bank) IsValid(w string) bool {
	u := strings.ToUpper(strings.TrimSpace(w))
	set := b.byLen[len(u)]
	if set == nil {
		return false
	}
	_, ok := set[u]
	return ok
}

// Stats returns the number of words per length bucket.
func (b *Bank) Stats() map[int]int {
	out := make(map[int]int, len(b.lists))
	for n, list := range b.lists {
		out[n] = len(list)
	}
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
