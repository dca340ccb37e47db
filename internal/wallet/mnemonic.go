// Package wallet recovers keys from a mnemonic and tracks the funds, spending
// counter and pending fragments of one account.
package wallet

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"
)

// MaxTypoDistance is the largest Levenshtein distance for which a word-list
// entry is offered as a correction.
const MaxTypoDistance = 2

// entropyBits maps supported mnemonic lengths to their entropy size.
var entropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)

	wordIndexOnce sync.Once
	wordIndex     map[string]struct{}
)

// GenerateMnemonic creates a new BIP-39 mnemonic with the given word count.
func GenerateMnemonic(words int) (string, error) {
	bits, ok := entropyBits[words]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedWordCount, words)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic lowercases the phrase, strips list numbering and commas,
// and collapses whitespace to single spaces.
func NormalizeMnemonic(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// WordIssue describes one word that is not in the BIP-39 list.
type WordIssue struct {
	Index      int    // 0-based position in the phrase
	Word       string // as typed
	Suggestion string // closest list word, empty when none is close
}

// MnemonicError reports why a mnemonic was rejected. It matches
// ErrInvalidMnemonic with errors.Is.
type MnemonicError struct {
	Words    []WordIssue
	Checksum bool // all words valid but checksum failed
}

func (e *MnemonicError) Error() string {
	if e.Checksum || len(e.Words) == 0 {
		return ErrInvalidMnemonic.Error() + ": checksum mismatch"
	}
	var sb strings.Builder
	sb.WriteString(ErrInvalidMnemonic.Error())
	for i, w := range e.Words {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "word %d %q is not in the word list", w.Index+1, w.Word)
		if w.Suggestion != "" {
			fmt.Fprintf(&sb, " (did you mean %q?)", w.Suggestion)
		}
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrInvalidMnemonic.
func (e *MnemonicError) Unwrap() error {
	return ErrInvalidMnemonic
}

// ValidateMnemonic checks word count, word-list membership and checksum of a
// normalized mnemonic.
func ValidateMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if _, ok := entropyBits[len(words)]; !ok {
		return fmt.Errorf("%w: %d words", ErrUnsupportedWordCount, len(words))
	}

	var issues []WordIssue
	for i, w := range words {
		if !IsValidWord(w) {
			issues = append(issues, WordIssue{Index: i, Word: w, Suggestion: SuggestWord(w)})
		}
	}
	if len(issues) > 0 {
		return &MnemonicError{Words: issues}
	}
	if _, err := bip39.MnemonicToByteArray(mnemonic); err != nil {
		return &MnemonicError{Checksum: true}
	}
	return nil
}

// IsValidWord reports whether word is in the BIP-39 English list.
func IsValidWord(word string) bool {
	wordIndexOnce.Do(func() {
		list := bip39.GetWordList()
		wordIndex = make(map[string]struct{}, len(list))
		for _, w := range list {
			wordIndex[w] = struct{}{}
		}
	})
	_, ok := wordIndex[strings.ToLower(word)]
	return ok
}

// SuggestWord returns the closest list word within MaxTypoDistance, or ""
// when the word is valid or nothing is close. Ties go to the earlier list word.
func SuggestWord(word string) string {
	word = strings.ToLower(word)
	if word == "" || IsValidWord(word) {
		return ""
	}
	best, bestDist := "", math.MaxInt
	for _, candidate := range bip39.GetWordList() {
		d := levenshtein.ComputeDistance(word, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist > MaxTypoDistance {
		return ""
	}
	return best
}
