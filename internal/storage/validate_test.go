package storage

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'}
	pdfBytes   = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< >>\n%%EOF\n")
)

// mp4Bytes sniff to video/mp4, which is not in the allow table.
var mp4Bytes = append([]byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'}, make([]byte, 16)...)

func TestValidateRejectsPathTraversal(t *testing.T) {
	v := NewValidator(0)
	for _, name := range []string{"../evil.pdf", "a/b.pdf", `a\b.pdf`, "..", "foo..pdf"} {
		if err := v.Validate(bytes.NewReader(pdfBytes), name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestValidateExtensionChecks(t *testing.T) {
	v := NewValidator(0)
	if err := v.Validate(bytes.NewReader(pdfBytes), "README"); !errors.Is(err, ErrMissingExtension) {
		t.Errorf("no extension: got %v, want ErrMissingExtension", err)
	}
	if err := v.Validate(bytes.NewReader(pdfBytes), "notes."); !errors.Is(err, ErrMissingExtension) {
		t.Errorf("trailing dot: got %v, want ErrMissingExtension", err)
	}
	// Extension check happens before any content is read.
	if err := v.Validate(bytes.NewReader(nil), "virus.exe"); !errors.Is(err, ErrExtensionNotAllowed) {
		t.Errorf("virus.exe: got %v, want ErrExtensionNotAllowed", err)
	}
}

func TestValidateSizeCeiling(t *testing.T) {
	v := NewValidator(16)
	err := v.Validate(strings.NewReader("this is longer than sixteen bytes"), "notes.txt")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("got %v, want ErrFileTooLarge", err)
	}
}

func TestValidateMimeNotAllowed(t *testing.T) {
	v := NewValidator(0)
	if err := v.Validate(bytes.NewReader(mp4Bytes), "movie.zip"); !errors.Is(err, ErrMimeNotAllowed) {
		t.Fatalf("got %v, want ErrMimeNotAllowed", err)
	}
}

func TestValidateExtensionMimeMismatch(t *testing.T) {
	v := NewValidator(0)
	if err := v.Validate(bytes.NewReader(jpegHeader), "photo.png"); !errors.Is(err, ErrExtensionMimeMismatch) {
		t.Fatalf("got %v, want ErrExtensionMimeMismatch", err)
	}
}

func TestValidateJpegJpgEquivalence(t *testing.T) {
	v := NewValidator(0)
	for _, name := range []string{"photo.jpg", "photo.jpeg"} {
		if err := v.Validate(bytes.NewReader(jpegHeader), name); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateBinaryContentInTextFile(t *testing.T) {
	v := NewValidator(0)
	err := v.Validate(bytes.NewReader([]byte("hello\x00world")), "notes.txt")
	if !errors.Is(err, ErrBinaryContentInTextFile) {
		t.Fatalf("got %v, want ErrBinaryContentInTextFile", err)
	}
}

func TestValidateSnifferFailureDegradesToExtensionCheck(t *testing.T) {
	v := NewValidator(0)
	v.Sniff = func([]byte) (string, error) { return "", errors.New("sniffer exploded") }

	// Content would mismatch the extension, but a broken sniffer must not
	// block a structurally valid upload.
	if err := v.Validate(bytes.NewReader(jpegHeader), "photo.png"); err != nil {
		t.Fatalf("got %v, want nil (extension-only fallback)", err)
	}
	// The allow-list still applies in the fallback.
	if err := v.Validate(bytes.NewReader(jpegHeader), "photo.exe"); !errors.Is(err, ErrExtensionNotAllowed) {
		t.Fatalf("got %v, want ErrExtensionNotAllowed", err)
	}
}

func TestValidateRestoresStreamPosition(t *testing.T) {
	v := NewValidator(0)
	cases := []struct {
		name    string
		content []byte
	}{
		{"report.pdf", pdfBytes},          // pass
		{"photo.png", jpegHeader},         // mismatch
		{"notes.txt", []byte("a\x00b")},   // binary-in-text
		{"movie.zip", mp4Bytes},           // mime not allowed
		{"big.txt", bytes.Repeat([]byte("x"), 64)},
	}
	for _, tc := range cases {
		r := bytes.NewReader(tc.content)
		_ = v.Validate(r, tc.name)
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			t.Fatal(err)
		}
		if pos != 0 {
			t.Errorf("%s: stream position = %d after Validate, want 0", tc.name, pos)
		}
	}
}

func TestValidateAcceptsMinimalPDF(t *testing.T) {
	v := NewValidator(0)
	if err := v.Validate(bytes.NewReader(pdfBytes), "report.pdf"); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":       "report.pdf",
		"my report.pdf":    "my_report.pdf",
		"../../etc/passwd": "passwd",
		`..\evil.exe`:      "evil.exe",
		".hidden.txt":      "hidden.txt",
		"señor año.pdf":    "seor_ao.pdf",
		"¿¡!":              "file",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
