package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.hfdb")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s, path
}

func ramp(t *testing.T, w, h int) *hfield.Field {
	t.Helper()
	f, err := hfield.New(w, h)
	if err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}
	for i := range f.Re {
		f.Re[i] = float32(i) * 0.25
	}
	f.UpdateExtrema()
	return f
}

func TestStore_PutGet(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	f := ramp(t, 5, 3)
	if err := s.Put("ramp", f); err != nil {
		t.Fatalf("Failed to put raster: %v", err)
	}
	// the store keeps its own copy
	f.Re[0] = 99

	got, err := s.Get("ramp")
	if err != nil {
		t.Fatalf("Failed to get raster: %v", err)
	}
	if got.Width != 5 || got.Height != 3 {
		t.Fatalf("size = %dx%d, want 5x3", got.Width, got.Height)
	}
	if got.IsComplex() {
		t.Error("expected a real raster")
	}
	if got.Re[0] != 0 || got.Re[14] != 3.5 {
		t.Errorf("data mismatch: first=%v last=%v", got.Re[0], got.Re[14])
	}
	if got.Min != 0 || got.Max != 3.5 {
		t.Errorf("extrema = [%v, %v], want [0, 3.5]", got.Min, got.Max)
	}
}

func TestStore_ComplexRoundTrip(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	f, err := hfield.FromBuffer(2, 2, []float32{1, 2, 3, 4}, []float32{-1, -2, -3, -4})
	if err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}
	if err := s.Put("c", f); err != nil {
		t.Fatalf("Failed to put raster: %v", err)
	}

	got, err := s.Get("c")
	if err != nil {
		t.Fatalf("Failed to get raster: %v", err)
	}
	if !got.IsComplex() {
		t.Fatal("expected a complex raster")
	}
	for i := range f.Re {
		if got.Re[i] != f.Re[i] || got.Im[i] != f.Im[i] {
			t.Errorf("element %d = (%v, %v), want (%v, %v)", i, got.Re[i], got.Im[i], f.Re[i], f.Im[i])
		}
	}
}

func TestStore_ReplaceAndList(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	for _, name := range []string{"b", "a", "b"} {
		if err := s.Put(name, ramp(t, 4, 4)); err != nil {
			t.Fatalf("Failed to put %q: %v", name, err)
		}
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 rasters (replaced), got %d", len(infos))
	}
	if infos[0].Name != "a" || infos[1].Name != "b" {
		t.Errorf("list order = %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[0].Width != 4 || infos[0].Max != 3.75 {
		t.Errorf("unexpected info %+v", infos[0])
	}
}

func TestStore_BatchFlush(t *testing.T) {
	s, path := openTemp(t)

	for i := 0; i < DefaultBatchSize+5; i++ {
		if err := s.Put(string(rune('a'+i)), ramp(t, 2, 2)); err != nil {
			t.Fatalf("Failed to put raster %d: %v", i, err)
		}
	}
	if len(s.batch) != 5 {
		t.Errorf("Expected 5 pending rasters after auto flush, got %d", len(s.batch))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	r, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	defer r.Close()

	infos, err := r.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(infos) != DefaultBatchSize+5 {
		t.Errorf("Expected %d rasters, got %d", DefaultBatchSize+5, len(infos))
	}
	if err := r.Put("x", ramp(t, 2, 2)); err == nil {
		t.Error("Expected put on a read-only store to fail")
	}
}

func TestStore_DeleteAndNotFound(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	if err := s.Put("gone", ramp(t, 2, 2)); err != nil {
		t.Fatalf("Failed to put raster: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := s.Get("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestStore_Metadata(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	want := Metadata{Name: "terrain", Description: "test set", Version: "1"}
	if err := s.SetMetadata(want); err != nil {
		t.Fatalf("Failed to set metadata: %v", err)
	}
	if err := s.SetMetadata(want); err != nil {
		t.Fatalf("Failed to replace metadata: %v", err)
	}
	got, err := s.Metadata()
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}
	if got != want {
		t.Errorf("metadata = %+v, want %+v", got, want)
	}
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	f := ramp(t, 2, 2)
	data, err := encode(f)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if _, err := decode(3, 3, false, data); !errors.Is(err, hfield.ErrSize) {
		t.Errorf("decode with wrong size: got %v, want ErrSize", err)
	}
}
