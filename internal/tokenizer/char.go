package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnknownCharacter is returned when a rune is not part of the vocabulary.
	ErrUnknownCharacter = errors.New("unknown character")
	// ErrIndexOutOfRange is returned when an index does not name a vocabulary entry.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// UnknownCharacterError carries the offending rune and its position in the
// encoded text. Position is -1 for single-rune lookups.
type UnknownCharacterError struct {
	Rune     rune
	Position int
}

func (e UnknownCharacterError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("unknown character %q", e.Rune)
	}
	return fmt.Sprintf("unknown character %q at position %d", e.Rune, e.Position)
}

func (e UnknownCharacterError) Unwrap() error {
	return ErrUnknownCharacter
}

// DefaultVocabSize is the size of the character table the pretrained demo
// model was trained with.
const DefaultVocabSize = 150

// SentinelIndex is the index reserved for the newline sentinel.
const SentinelIndex = 0

// CharVocab is an immutable bidirectional mapping between runes and indices.
type CharVocab struct {
	runeToID map[rune]int
	idToRune []rune
}

var defaultVocab = mustCharVocab(defaultRunes())

var _ Tokenizer = (*CharVocab)(nil)

// DefaultCharVocab returns the 150 entry table of the pretrained model.
// Index 0 is '\n'.
func DefaultCharVocab() *CharVocab {
	return defaultVocab
}

// NewCharVocab builds a vocabulary where the i-th rune gets index i.
func NewCharVocab(runes []rune) (*CharVocab, error) {
	if len(runes) == 0 {
		return nil, errors.New("char vocab: empty table")
	}
	runeToID := make(map[rune]int, len(runes))
	idToRune := make([]rune, len(runes))
	for i, r := range runes {
		if prev, ok := runeToID[r]; ok {
			return nil, fmt.Errorf("char vocab: duplicate rune %q at %d and %d", r, prev, i)
		}
		runeToID[r] = i
		idToRune[i] = r
	}
	return &CharVocab{runeToID: runeToID, idToRune: idToRune}, nil
}

func mustCharVocab(runes []rune) *CharVocab {
	v, err := NewCharVocab(runes)
	if err != nil {
		panic(err)
	}
	return v
}

// Size returns the number of entries.
func (v *CharVocab) Size() int {
	return len(v.idToRune)
}

// Runes returns a copy of the table in index order.
func (v *CharVocab) Runes() []rune {
	return append([]rune(nil), v.idToRune...)
}

// Contains reports whether r has an index.
func (v *CharVocab) Contains(r rune) bool {
	_, ok := v.runeToID[r]
	return ok
}

// EncodeRune returns the index of r.
func (v *CharVocab) EncodeRune(r rune) (int, error) {
	id, ok := v.runeToID[r]
	if !ok {
		return 0, UnknownCharacterError{Rune: r, Position: -1}
	}
	return id, nil
}

// DecodeIndex returns the rune stored at index id.
func (v *CharVocab) DecodeIndex(id int) (rune, error) {
	if id < 0 || id >= len(v.idToRune) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, id, len(v.idToRune))
	}
	return v.idToRune[id], nil
}

// Fold lower-cases r. Some upper-case entries of the table have no lower-case
// counterpart; those are kept as they are.
func (v *CharVocab) Fold(r rune) rune {
	lr := unicode.ToLower(r)
	if lr == r {
		return r
	}
	if v.Contains(lr) || !v.Contains(r) {
		return lr
	}
	return r
}

// Encode converts every rune of text to its index. No folding is applied.
func (v *CharVocab) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	pos := 0
	for _, r := range text {
		id, ok := v.runeToID[r]
		if !ok {
			return nil, UnknownCharacterError{Rune: r, Position: pos}
		}
		ids = append(ids, id)
		pos++
	}
	return ids, nil
}

// EncodeFolded folds every rune before encoding it.
func (v *CharVocab) EncodeFolded(runes []rune) ([]int, error) {
	ids := make([]int, len(runes))
	for i, r := range runes {
		id, ok := v.runeToID[v.Fold(r)]
		if !ok {
			return nil, UnknownCharacterError{Rune: r, Position: i}
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode converts indices back to text.
func (v *CharVocab) Decode(ids []int) (string, error) {
	var b strings.Builder
	b.Grow(len(ids))
	for _, id := range ids {
		r, err := v.DecodeIndex(id)
		if err != nil {
			return "", err
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func defaultRunes() []rune {
	runes := make([]rune, 0, DefaultVocabSize)
	runes = append(runes, []rune("\n !\"#$%&'()*+,-./0123456789:=>?@")...)
	runes = append(runes, []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_")...)
	runes = append(runes, []rune("abcdefghijklmnopqrstuvwxyz{|}~")...)
	// C1 controls 0x81..0x9c and 0x9f survive from the cp1252 training corpus.
	for r := rune(0x81); r <= 0x9c; r++ {
		runes = append(runes, r)
	}
	runes = append(runes, 0x9f)
	runes = append(runes, []rune("¡¥§¨©ª«¯µ¾¿ÊËÌÏÐÑÔÕçèêìîïòõû")...)
	return runes
}
