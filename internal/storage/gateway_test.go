package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type fakeRemote struct {
	objects      map[string][]byte
	contentTypes map[string]string
	uploadErr    error
	uploads      int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeRemote) Upload(_ context.Context, key string, r io.Reader, _ int64, ct string) error {
	f.uploads++
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	f.contentTypes[key] = ct
	return nil
}

func (f *fakeRemote) Download(_ context.Context, key string) (io.ReadCloser, string, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), f.contentTypes[key], nil
}

func (f *fakeRemote) Remove(_ context.Context, key string) error {
	if _, ok := f.objects[key]; !ok {
		return ErrNotFound
	}
	delete(f.objects, key)
	return nil
}

func newTestLocal(t *testing.T) *LocalStore {
	t.Helper()
	ls, err := NewLocalStore(t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ls.freeBytes = func(string) (uint64, error) { return 10 << 30, nil }
	return ls
}

func TestStoreLocalWhenRemoteUnconfigured(t *testing.T) {
	local := newTestLocal(t)
	g := NewGatewayWith(NewValidator(0), nil, local)

	ref, err := g.Store(context.Background(), bytes.NewReader(pdfBytes), "report.pdf")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref.Backend != BackendLocal || ref.Key != "report.pdf" {
		t.Fatalf("ref = %+v, want local report.pdf", ref)
	}
	if _, err := os.Stat(filepath.Join(local.dir, "report.pdf")); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestStoreRemoteFirstWhenConfigured(t *testing.T) {
	remote := newFakeRemote()
	g := NewGatewayWith(NewValidator(0), remote, newTestLocal(t))

	ref, err := g.Store(context.Background(), bytes.NewReader(pdfBytes), "report.pdf")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref.Backend != BackendRemote || ref.Key != "uploads/report.pdf" {
		t.Fatalf("ref = %+v, want remote uploads/report.pdf", ref)
	}
	if got := remote.contentTypes[ref.Key]; got != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", got)
	}
	if !bytes.Equal(remote.objects[ref.Key], pdfBytes) {
		t.Fatal("remote object bytes differ from input")
	}
}

func TestStoreFallsBackToLocalOnRemoteFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.uploadErr = errors.New("connection refused")
	g := NewGatewayWith(NewValidator(0), remote, newTestLocal(t))

	ref, err := g.Store(context.Background(), bytes.NewReader(pdfBytes), "report.pdf")
	if err != nil {
		t.Fatalf("Store surfaced remote failure: %v", err)
	}
	if ref.Backend != BackendLocal {
		t.Fatalf("backend = %s, want local", ref.Backend)
	}
	if remote.uploads != 1 {
		t.Fatalf("remote uploads = %d, want 1", remote.uploads)
	}

	rc, _, err := g.Retrieve(context.Background(), ref)
	if err != nil {
		t.Fatalf("Retrieve after fallback: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, pdfBytes) {
		t.Fatal("retrieved bytes differ from input after fallback")
	}
}

func TestRoundTrip(t *testing.T) {
	g := NewGatewayWith(NewValidator(0), nil, newTestLocal(t))

	in := append([]byte{}, pngHeader...)
	in = append(in, bytes.Repeat([]byte{0xAB}, 4096)...)
	ref, err := g.Store(context.Background(), bytes.NewReader(in), "photo.png")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	rc, ct, err := g.Retrieve(context.Background(), ref)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, in) {
		t.Fatal("round-trip bytes differ")
	}
	if ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
}

func TestStorePropagatesValidationErrors(t *testing.T) {
	g := NewGatewayWith(NewValidator(0), newFakeRemote(), newTestLocal(t))
	if _, err := g.Store(context.Background(), bytes.NewReader(nil), "virus.exe"); !errors.Is(err, ErrExtensionNotAllowed) {
		t.Fatalf("got %v, want ErrExtensionNotAllowed", err)
	}
}

func TestStoreInsufficientDiskSpace(t *testing.T) {
	local := newTestLocal(t)
	local.freeBytes = func(string) (uint64, error) { return 100, nil }
	local.minFreeBytes = DefaultMinFreeBytes
	g := NewGatewayWith(NewValidator(0), nil, local)

	if _, err := g.Store(context.Background(), bytes.NewReader(pdfBytes), "report.pdf"); !errors.Is(err, ErrInsufficientDiskSpace) {
		t.Fatalf("got %v, want ErrInsufficientDiskSpace", err)
	}
}

func TestRetrieveRemoteRefWithoutRemoteBackend(t *testing.T) {
	g := NewGatewayWith(NewValidator(0), nil, newTestLocal(t))
	ref := Ref{Backend: BackendRemote, Key: "uploads/report.pdf"}
	if _, _, err := g.Retrieve(context.Background(), ref); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("got %v, want ErrBackendUnavailable", err)
	}
}

func TestRetrieveMissingLocalFile(t *testing.T) {
	g := NewGatewayWith(NewValidator(0), nil, newTestLocal(t))
	if _, _, err := g.Retrieve(context.Background(), Ref{Backend: BackendLocal, Key: "nope.pdf"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesStoredFile(t *testing.T) {
	g := NewGatewayWith(NewValidator(0), nil, newTestLocal(t))
	ref, err := g.Store(context.Background(), bytes.NewReader(pdfBytes), "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := g.Retrieve(context.Background(), ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v after delete, want ErrNotFound", err)
	}
}

func TestRefForRoundTrip(t *testing.T) {
	r := RefFor("uploads/a.pdf", true)
	if r.Backend != BackendRemote || !r.Remote() {
		t.Fatalf("RefFor remote = %+v", r)
	}
	r = RefFor("a.pdf", false)
	if r.Backend != BackendLocal || r.Remote() {
		t.Fatalf("RefFor local = %+v", r)
	}
}
