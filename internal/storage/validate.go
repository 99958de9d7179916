package storage

import (
	"bytes"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"regexp"
	"strings"
)

const (
	sniffLen     = 2048 // leading bytes inspected for the MIME check
	textProbeLen = 1024 // leading bytes inspected for the NUL-byte check
)

// SniffFunc infers a MIME type from the leading bytes of a file. A non-nil
// error means the sniff is inconclusive; validation then degrades to
// extension-only checking rather than rejecting the upload.
type SniffFunc func(data []byte) (string, error)

var allowedExtensions = map[string][]string{
	"images":    {"png", "jpg", "jpeg", "gif", "webp", "bmp"},
	"documents": {"pdf", "doc", "docx", "txt", "odt", "ppt", "pptx", "xls", "xlsx"},
	"archives":  {"zip", "rar", "7z"},
}

// mimeToExt lists the extensions each sniffed MIME type may legitimately
// carry. DetectContentType reports OOXML/ODF documents as their zip
// container, so the container type accepts those extensions too.
var mimeToExt = map[string][]string{
	"image/png":       {"png"},
	"image/jpeg":      {"jpg", "jpeg"},
	"image/gif":       {"gif"},
	"image/webp":      {"webp"},
	"image/bmp":       {"bmp"},
	"application/pdf": {"pdf"},
	"application/msword": {"doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {"docx"},
	"application/vnd.ms-excel": {"xls"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {"xlsx"},
	"application/vnd.ms-powerpoint": {"ppt"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {"pptx"},
	"text/plain":                   {"txt"},
	"application/zip":              {"zip", "docx", "xlsx", "pptx", "odt"},
	"application/x-rar-compressed": {"rar"},
	"application/x-7z-compressed":  {"7z"},
}

// Validator checks an upload before it is stored. Zero-cost to share across
// requests; it holds no mutable state.
type Validator struct {
	MaxSize int64
	Sniff   SniffFunc
}

func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Validator{MaxSize: maxSize, Sniff: detectContentType}
}

// detectContentType wraps http.DetectContentType. An octet-stream answer
// means the sniff table had no match, which is reported as an error so the
// caller falls back to extension checks instead of rejecting outright.
func detectContentType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty stream")
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "", err
	}
	if mt == "application/octet-stream" {
		return "", errors.New("content type inconclusive")
	}
	return mt, nil
}

// Validate runs the full check sequence: filename, extension allow-list,
// size ceiling, content sniff against the claimed extension, and the
// NUL-byte probe for .txt files. The stream position is restored to 0 on
// every exit path so the caller can reuse the stream for the store step.
func (v *Validator) Validate(rs io.ReadSeeker, filename string) (err error) {
	defer func() {
		if _, serr := rs.Seek(0, io.SeekStart); serr != nil && err == nil {
			err = serr
		}
	}()

	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return ErrInvalidName
	}
	ext := extensionOf(filename)
	if ext == "" {
		return ErrMissingExtension
	}
	if !extensionAllowed(ext) {
		return ErrExtensionNotAllowed
	}

	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if size > v.MaxSize {
		return ErrFileTooLarge
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}

	head := make([]byte, sniffLen)
	n, rerr := io.ReadFull(rs, head)
	head = head[:n]

	sniffed := ""
	switch {
	case rerr != nil && !errors.Is(rerr, io.ErrUnexpectedEOF) && !errors.Is(rerr, io.EOF):
		// A broken sniff must never block a structurally valid upload.
		log.Printf("storage: sniff read failed for %q, extension check only: %v", filename, rerr)
	case v.Sniff == nil:
	default:
		mt, serr := v.Sniff(head)
		if serr != nil {
			log.Printf("storage: content sniff failed for %q, extension check only: %v", filename, serr)
		} else {
			sniffed = mt
		}
	}

	if sniffed != "" {
		expected, ok := mimeToExt[sniffed]
		if !ok {
			return ErrMimeNotAllowed
		}
		if !containsExt(expected, ext) {
			return ErrExtensionMimeMismatch
		}
	}

	if ext == "txt" {
		if err := v.probeTextContent(rs); err != nil {
			return err
		}
	}
	return nil
}

// probeTextContent rejects .txt uploads whose leading bytes contain a NUL.
// Best-effort: read failures pass.
func (v *Validator) probeTextContent(rs io.ReadSeeker) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	sample := make([]byte, textProbeLen)
	n, err := io.ReadFull(rs, sample)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil
	}
	if bytes.IndexByte(sample[:n], 0) >= 0 {
		return ErrBinaryContentInTextFile
	}
	return nil
}

func extensionOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

func extensionAllowed(ext string) bool {
	for _, exts := range allowedExtensions {
		if containsExt(exts, ext) {
			return true
		}
	}
	return false
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a claimed filename to a filesystem-safe form:
// directory components are stripped, spaces become underscores, anything
// outside [A-Za-z0-9_.-] is dropped, and leading dots are removed so the
// result cannot be a hidden file.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeNameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "file"
	}
	return name
}
