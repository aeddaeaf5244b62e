// Package moderation masks censored words in message bodies before they are
// persisted or broadcast, so history and live delivery always agree.
package moderation

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed censored/*
var censoredFS embed.FS

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	empty       bool
}

// NewModerator builds the Aho-Corasick automaton over a lowercased copy of
// the word list. Matching is case-insensitive and ignores word boundaries.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		patterns = append(patterns, []rune(strings.ToLower(word)))
	}

	m := new(goahocorasick.Machine)
	if len(patterns) > 0 {
		if err := m.Build(patterns); err != nil {
			return nil, err
		}
	}
	return &Moderator{matcher: m, replacement: replacement, empty: len(patterns) == 0}, nil
}

// Default loads the embedded word list.
func Default(replacement rune) (*Moderator, error) {
	words, err := EmbeddedWords()
	if err != nil {
		return nil, err
	}
	return NewModerator(words, replacement)
}

// EmbeddedWords reads every file under censored/, one word per line.
// Lines starting with '#' are comments.
func EmbeddedWords() ([]string, error) {
	var words []string
	err := fs.WalkDir(censoredFS, "censored", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := censoredFS.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			words = append(words, line)
		}
		return scanner.Err()
	})
	return words, err
}

// Censor replaces every matched span with the replacement rune,
// preserving the original length of the text.
func (m *Moderator) Censor(original string) string {
	if original == "" || m.empty {
		return original
	}

	origRunes := []rune(original)
	lowered := make([]rune, len(origRunes))
	for i, r := range origRunes {
		lowered[i] = unicode.ToLower(r)
	}

	spans := m.matcher.MultiPatternSearch(lowered, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		for i := span.Pos; i < span.Pos+len(span.Word) && i < len(origRunes); i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes)
}
