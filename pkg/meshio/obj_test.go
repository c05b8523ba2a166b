package meshio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempOBJ(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.obj")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp obj: %v", err)
	}
	return path
}

func TestLoadOBJTriangleWithGeneratedNormals(t *testing.T) {
	path := writeTempOBJ(t, `
v -1 -1 0
v 1 -1 0
v 0 1 0
f 1 2 3
`)
	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mesh.Positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(mesh.Positions))
	}
	if mesh.TriangleCount() != 1 {
		t.Fatalf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}
	if !mesh.HasNormals() {
		t.Fatalf("expected generated flat normals since the file had no vn lines")
	}
	if len(mesh.Normals) != 1 || len(mesh.NormalIndices) != 3 {
		t.Fatalf("generated normals = %d (idx %d), want 1 normal / 3 indices", len(mesh.Normals), len(mesh.NormalIndices))
	}
}

func TestLoadOBJQuadSplitsIntoTwoTriangles(t *testing.T) {
	path := writeTempOBJ(t, `
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
f 1 2 3 4
`)
	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i, w := range want {
		if mesh.Indices[i] != w {
			t.Errorf("Indices[%d] = %d, want %d", i, mesh.Indices[i], w)
		}
	}
}

func TestLoadOBJSeparateUVAndNormalIndices(t *testing.T) {
	path := writeTempOBJ(t, `
v -1 -1 0
v 1 -1 0
v 0 1 0
vt 0 0
vt 1 0
vt 0.5 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`)
	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if !mesh.HasUVs() || !mesh.HasNormals() {
		t.Fatalf("expected both UVs and normals to be loaded")
	}
	if len(mesh.UVIndices) != 3 || len(mesh.NormalIndices) != 3 {
		t.Fatalf("index array lengths = uv:%d norm:%d, want 3/3", len(mesh.UVIndices), len(mesh.NormalIndices))
	}
}

func TestLoadOBJRejectsEmptyMesh(t *testing.T) {
	path := writeTempOBJ(t, "# comment only, no geometry\n")
	if _, err := LoadOBJ(path); err == nil {
		t.Fatalf("expected an error loading a mesh with no vertices or faces")
	}
}

func TestLoadOBJMissingFileErrors(t *testing.T) {
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Fatalf("expected an error loading a nonexistent file")
	}
}
