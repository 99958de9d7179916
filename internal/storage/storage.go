// Package storage validates uploaded files and persists them to an
// S3-compatible bucket when one is configured, falling back to the local
// filesystem when it is not. References returned by Store carry the backend
// they were written to; callers persist them and hand them back to Retrieve
// and Delete. The gateway keeps no registry of what it has stored.
package storage

import "errors"

type Backend string

const (
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
)

// Ref identifies a stored file. The backend tag is part of the reference:
// a key is only meaningful against the backend that produced it, so if the
// remote backend is later deconfigured, remote refs become unreachable
// (Retrieve reports ErrBackendUnavailable, not ErrNotFound).
type Ref struct {
	Backend Backend `json:"backend"`
	Key     string  `json:"key"`
}

func (r Ref) Remote() bool { return r.Backend == BackendRemote }

// RefFor rebuilds a Ref from the (key, remote) pair callers persist as
// plain columns.
func RefFor(key string, remote bool) Ref {
	if remote {
		return Ref{Backend: BackendRemote, Key: key}
	}
	return Ref{Backend: BackendLocal, Key: key}
}

// Validation errors. All are terminal for the upload that triggered them.
var (
	ErrInvalidName             = errors.New("invalid filename")
	ErrMissingExtension        = errors.New("filename has no extension")
	ErrExtensionNotAllowed     = errors.New("file extension not allowed")
	ErrFileTooLarge            = errors.New("file exceeds size limit")
	ErrMimeNotAllowed          = errors.New("file content type not allowed")
	ErrExtensionMimeMismatch   = errors.New("file extension does not match content")
	ErrBinaryContentInTextFile = errors.New("text file contains binary content")
)

// Storage errors.
var (
	ErrInsufficientDiskSpace = errors.New("insufficient disk space")
	ErrNotFound              = errors.New("file not found")
	ErrBackendUnavailable    = errors.New("storage backend not configured")
)

const (
	DefaultMaxFileSize  = 50 << 20 // 50 MiB
	DefaultMinFreeBytes = 1 << 30  // refuse local writes below 1 GiB free
)

// Config is read once when the gateway is constructed. Changing the
// environment afterwards has no effect on a running gateway; build a new
// one instead.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	UploadDir    string
	MaxFileSize  int64  // bytes; 0 means DefaultMaxFileSize
	MinFreeBytes uint64 // bytes; 0 means DefaultMinFreeBytes
}

// RemoteConfigured reports whether the config carries enough to reach an
// object-storage backend at all.
func (c Config) RemoteConfigured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}
