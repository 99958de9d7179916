package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path"
)

// remoteKeyPrefix namespaces gateway uploads inside the bucket.
const remoteKeyPrefix = "uploads/"

// Gateway is the single entry point for file ingestion. It validates,
// stores to the best available backend, and resolves references later. It
// holds no mutable state and is safe for concurrent use; consistency under
// colliding writes is whatever the filesystem or bucket provides.
type Gateway struct {
	validator *Validator
	remote    RemoteStore // nil when object storage is not configured
	local     *LocalStore
}

// NewGateway wires a gateway from config. A misconfigured or unreachable
// remote backend does not fail construction: uploads degrade to local-only,
// which is the same policy Store applies per call.
func NewGateway(cfg Config) (*Gateway, error) {
	local, err := NewLocalStore(cfg.UploadDir, cfg.MinFreeBytes)
	if err != nil {
		return nil, err
	}
	g := &Gateway{validator: NewValidator(cfg.MaxFileSize), local: local}
	if cfg.RemoteConfigured() {
		remote, err := NewMinioStore(cfg)
		if err != nil {
			log.Printf("storage: remote backend unavailable, local only: %v", err)
		} else {
			g.remote = remote
		}
	}
	return g, nil
}

// NewGatewayWith assembles a gateway from explicit parts. remote may be nil.
func NewGatewayWith(v *Validator, remote RemoteStore, local *LocalStore) *Gateway {
	return &Gateway{validator: v, remote: remote, local: local}
}

// RemoteEnabled reports whether stores may land on the remote backend.
func (g *Gateway) RemoteEnabled() bool { return g.remote != nil }

func (g *Gateway) Validate(rs io.ReadSeeker, filename string) error {
	return g.validator.Validate(rs, filename)
}

// Store validates and persists the stream under the sanitized claimed
// filename. Remote is tried first when configured; any remote failure is
// logged and the upload falls through to local disk. Identically sanitized
// names overwrite each other within a backend; callers who need distinct
// keys must make the claimed name unique.
func (g *Gateway) Store(ctx context.Context, rs io.ReadSeeker, filename string) (Ref, error) {
	if err := g.validator.Validate(rs, filename); err != nil {
		return Ref{}, err
	}
	name := SanitizeFilename(filename)

	if g.remote != nil {
		size, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return Ref{}, err
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return Ref{}, err
		}
		key := remoteKeyPrefix + name
		if err := g.remote.Upload(ctx, key, rs, size, contentTypeFor(name)); err == nil {
			return Ref{Backend: BackendRemote, Key: key}, nil
		} else {
			log.Printf("storage: remote upload of %q failed, falling back to local: %v", name, err)
			if _, err := rs.Seek(0, io.SeekStart); err != nil {
				return Ref{}, err
			}
		}
	}

	if err := g.local.Put(name, rs); err != nil {
		return Ref{}, err
	}
	return Ref{Backend: BackendLocal, Key: name}, nil
}

// Retrieve streams a previously stored file. A remote ref against a gateway
// with no remote backend is a durability caveat the caller must see, so it
// returns ErrBackendUnavailable rather than ErrNotFound.
func (g *Gateway) Retrieve(ctx context.Context, ref Ref) (io.ReadCloser, string, error) {
	switch ref.Backend {
	case BackendRemote:
		if g.remote == nil {
			return nil, "", ErrBackendUnavailable
		}
		return g.remote.Download(ctx, ref.Key)
	case BackendLocal:
		rc, err := g.local.Open(ref.Key)
		if err != nil {
			return nil, "", err
		}
		return rc, contentTypeFor(ref.Key), nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q", ref.Backend)
	}
}

// Delete removes the file behind ref. Single attempt, no retry or queue;
// the caller decides whether a failed delete is fatal to its own operation.
func (g *Gateway) Delete(ctx context.Context, ref Ref) error {
	switch ref.Backend {
	case BackendRemote:
		if g.remote == nil {
			return ErrBackendUnavailable
		}
		return g.remote.Remove(ctx, ref.Key)
	case BackendLocal:
		return g.local.Remove(ref.Key)
	default:
		return fmt.Errorf("unknown backend %q", ref.Backend)
	}
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
