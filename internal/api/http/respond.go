// Package http holds the chi handlers for the school API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/escobedo-lab/school/internal/storage"
)

// FileGateway is the slice of the storage gateway the handlers use.
type FileGateway interface {
	Store(ctx context.Context, rs io.ReadSeeker, filename string) (storage.Ref, error)
	Retrieve(ctx context.Context, ref storage.Ref) (io.ReadCloser, string, error)
	Delete(ctx context.Context, ref storage.Ref) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// storageStatus maps gateway errors onto HTTP statuses so callers can show
// a meaningful message for each terminal error kind.
func storageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, storage.ErrMissingExtension),
		errors.Is(err, storage.ErrExtensionNotAllowed),
		errors.Is(err, storage.ErrExtensionMimeMismatch),
		errors.Is(err, storage.ErrBinaryContentInTextFile):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrMimeNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrInsufficientDiskSpace):
		return http.StatusInsufficientStorage
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// serveFile streams a stored file back to the client.
func serveFile(w http.ResponseWriter, r *http.Request, gw FileGateway, key string, remote bool, downloadName string) {
	if key == "" {
		http.Error(w, "no file attached", http.StatusNotFound)
		return
	}
	rc, ct, err := gw.Retrieve(r.Context(), storage.RefFor(key, remote))
	if err != nil {
		http.Error(w, err.Error(), storageStatus(err))
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", ct)
	if downloadName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	}
	_, _ = io.Copy(w, rc)
}

// deleteFile is the best-effort cleanup used when an owning row goes away.
// A dangling file is acceptable; the row delete is not rolled back.
func deleteFile(ctx context.Context, gw FileGateway, key string, remote bool) error {
	if key == "" {
		return nil
	}
	return gw.Delete(ctx, storage.RefFor(key, remote))
}
