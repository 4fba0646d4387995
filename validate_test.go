package mdh

import (
	"bytes"
	"errors"
	"testing"
)

func TestValidateInputAcceptsMarkdown(t *testing.T) {
	if err := ValidateInput([]byte("# Heading\n\nSome text with åäö.\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	if err := ValidateInput([]byte{0xff, 0xfe, 'a'}); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsNulByte(t *testing.T) {
	if err := ValidateInput([]byte("text\x00more")); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestValidateInputRejectsControlHeavyInput(t *testing.T) {
	src := append(bytes.Repeat([]byte("a"), 60), bytes.Repeat([]byte{0x01}, 8)...)
	if err := ValidateInput(src); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestValidateInputAllowsTabsAndNewlines(t *testing.T) {
	src := bytes.Repeat([]byte("line\twith\ttabs\r\n"), 16)
	if err := ValidateInput(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
