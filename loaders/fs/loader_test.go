package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/segfault87/ldraw-go/cache"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/ldrawerr"
)

const minimalColorDef = "0 !COLOUR Black CODE 0 VALUE #212121 EDGE #595959\n"

const minimalPart = `0 Brick
0 Name: 3001.dat
0 BFC CERTIFY CCW
3 16 0 0 0 1 0 0 0 1 0
`

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func TestNewRejectsMissingLDrawDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"), t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a missing LDraw install directory")
	}
	lerr, ok := err.(*ldrawerr.LibraryError)
	if !ok || lerr.Reason != ldrawerr.NoLDrawDir {
		t.Fatalf("error = %v, want a LibraryError with NoLDrawDir", err)
	}
}

func TestLoadColors(t *testing.T) {
	ldrawDir := t.TempDir()
	writeFile(t, filepath.Join(ldrawDir, "LDConfig.ldr"), minimalColorDef)

	l, err := New(ldrawDir, t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	catalog, err := l.LoadColors(context.Background())
	if err != nil {
		t.Fatalf("LoadColors() error = %v", err)
	}
	if _, ok := catalog.Lookup(0); !ok {
		t.Fatal("expected code 0 (Black) to be present in the parsed catalog")
	}
}

func TestLoadReferenceSearchOrder(t *testing.T) {
	ldrawDir := t.TempDir()
	writeFile(t, filepath.Join(ldrawDir, "LDConfig.ldr"), minimalColorDef)
	writeFile(t, filepath.Join(ldrawDir, "parts", "3001.dat"), minimalPart)
	writeFile(t, filepath.Join(ldrawDir, "p", "3001.dat"), minimalPart)

	cwd := t.TempDir()

	l, err := New(ldrawDir, cwd)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	colors, err := l.LoadColors(context.Background())
	if err != nil {
		t.Fatalf("LoadColors() error = %v", err)
	}

	loc, doc, err := l.LoadReference(context.Background(), common.NewPartAlias("3001.dat"), true, colors)
	if err != nil {
		t.Fatalf("LoadReference() error = %v", err)
	}
	if !loc.IsLibrary || loc.Kind != cache.KindPart {
		t.Fatalf("LoadReference() location = %+v, want library part (parts/ takes precedence over p/)", loc)
	}
	if doc.Body.Name != "3001.dat" {
		t.Fatalf("Body.Name = %q, want 3001.dat", doc.Body.Name)
	}
}

func TestLoadReferencePrefersCwdWhenLocalAllowed(t *testing.T) {
	ldrawDir := t.TempDir()
	writeFile(t, filepath.Join(ldrawDir, "LDConfig.ldr"), minimalColorDef)
	writeFile(t, filepath.Join(ldrawDir, "parts", "3001.dat"), minimalPart)

	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "3001.dat"), minimalPart)

	l, err := New(ldrawDir, cwd)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	colors, _ := l.LoadColors(context.Background())

	loc, _, err := l.LoadReference(context.Background(), common.NewPartAlias("3001.dat"), true, colors)
	if err != nil {
		t.Fatalf("LoadReference() error = %v", err)
	}
	if loc.IsLibrary {
		t.Fatal("a cwd-local hit should not be reported as a library location")
	}
}

func TestLoadReferenceDisallowLocalSkipsCwd(t *testing.T) {
	ldrawDir := t.TempDir()
	writeFile(t, filepath.Join(ldrawDir, "LDConfig.ldr"), minimalColorDef)
	writeFile(t, filepath.Join(ldrawDir, "parts", "3001.dat"), minimalPart)

	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "3001.dat"), minimalPart)

	l, err := New(ldrawDir, cwd)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	colors, _ := l.LoadColors(context.Background())

	loc, _, err := l.LoadReference(context.Background(), common.NewPartAlias("3001.dat"), false, colors)
	if err != nil {
		t.Fatalf("LoadReference() error = %v", err)
	}
	if !loc.IsLibrary {
		t.Fatal("with allowLocal=false, the cwd hit must be skipped in favor of the library parts/ dir")
	}
}

func TestLoadReferenceNotFound(t *testing.T) {
	ldrawDir := t.TempDir()
	writeFile(t, filepath.Join(ldrawDir, "LDConfig.ldr"), minimalColorDef)

	l, err := New(ldrawDir, t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	colors, _ := l.LoadColors(context.Background())

	_, _, err = l.LoadReference(context.Background(), common.NewPartAlias("missing.dat"), true, colors)
	if err == nil {
		t.Fatal("expected a FileNotFound resolution error")
	}
	rerr, ok := err.(*ldrawerr.ResolutionError)
	if !ok || rerr.Reason != ldrawerr.FileNotFound {
		t.Fatalf("error = %v, want a ResolutionError with FileNotFound", err)
	}
}
