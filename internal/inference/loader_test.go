package inference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/charseed/internal/model"
)

func smallMetadata() model.Metadata {
	return model.Metadata{ModelType: "dense", VocabularySize: 4, MaxLen: 3, Vocabulary: "\nabc"}
}

func writeDense(t *testing.T, dir string, meta model.Metadata) string {
	t.Helper()
	d, err := model.NewDense(meta, 1)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	path := filepath.Join(dir, "model.json")
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func TestLoaderLoadsDenseModel(t *testing.T) {
	t.Parallel()

	path := writeDense(t, t.TempDir(), smallMetadata())
	res, err := Loader{}.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer func() { _ = res.Engine.Close() }()

	if res.Metadata.MaxLen != 3 || res.Metadata.VocabularySize != 4 {
		t.Fatalf("metadata = %+v", res.Metadata)
	}
	if len(res.Fingerprint) != 16 {
		t.Fatalf("fingerprint = %q", res.Fingerprint)
	}
	out, err := res.Engine.Generate(context.Background(), &Request{SeedText: "ab", Steps: 6, Temperature: 0.5, RNGSeed: 1}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len([]rune(out.Text)) != 6 {
		t.Fatalf("text = %q", out.Text)
	}
	if strings.Trim(out.Text, "\nabc") != "" {
		t.Fatalf("text %q escapes the vocabulary", out.Text)
	}
}

func TestLoaderMissingModel(t *testing.T) {
	t.Parallel()

	_, err := Loader{}.Load(context.Background(), filepath.Join(t.TempDir(), "nope.onnx"))
	if !errors.Is(err, model.ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}
	if _, err := (Loader{}).Load(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoaderSidecarMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDense(t, dir, smallMetadata())
	sidecar := smallMetadata()
	sidecar.MaxLen = 5
	if err := model.WriteMetadata(filepath.Join(dir, model.MetadataFileName), sidecar); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	_, err := Loader{}.Load(context.Background(), path)
	if !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestLoaderSidecarSuppliesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDense(t, dir, smallMetadata())
	sidecar := smallMetadata()
	temp, steps := 0.7, 12
	sidecar.Temperature = &temp
	sidecar.Steps = &steps
	if err := model.WriteMetadata(filepath.Join(dir, model.MetadataFileName), sidecar); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	res, err := Loader{}.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer func() { _ = res.Engine.Close() }()
	req := ResolveRequest(RequestOptions{}, res.GenerationDefaults)
	if req.Temperature != 0.7 || req.Steps != 12 {
		t.Fatalf("sidecar defaults not applied: %+v", req)
	}
}

func TestLoaderRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.h5")
	if err := os.WriteFile(path, []byte("not a model"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Loader{}.Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "unsupported model format") {
		t.Fatalf("err = %v", err)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := os.WriteFile(a, []byte("window"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(b, []byte("windows"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fa1, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	fa2, _ := Fingerprint(a)
	fb, _ := Fingerprint(b)
	if fa1 != fa2 {
		t.Fatalf("fingerprint not stable: %s vs %s", fa1, fa2)
	}
	if fa1 == fb {
		t.Fatalf("different files share fingerprint %s", fa1)
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "m.onnx")
	if Available(path) {
		t.Fatalf("missing file reported available")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !Available(path) {
		t.Fatalf("existing file reported unavailable")
	}
	if Available(dir) {
		t.Fatalf("directory reported available")
	}
}
