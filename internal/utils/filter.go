package utils

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

var (
	ErrEmptyInput   = errors.New("input is empty")
	ErrInputTooLong = errors.New("input too long")
	ErrControlChars = errors.New("input contains control characters")
)

// ValidateInput checks text typed into the box before a session starts.
// Empty text is allowed when allowEmpty is set (on-focus requests).
func ValidateInput(text string, maxLen int, allowEmpty bool) error {
	if text == "" {
		if allowEmpty {
			return nil
		}
		return ErrEmptyInput
	}
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		return fmt.Errorf("%w: %d > %d runes", ErrInputTooLong, utf8.RuneCountInString(text), maxLen)
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return ErrControlChars
		}
	}
	return nil
}
