package meshio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/trophy/pkg/math3d"
)

// LoadOBJ reads a Wavefront-style text mesh file: `v x y z`, `vt u v`,
// `vn x y z`, `f a/b/c a/b/c a/b/c [a/b/c]`. Indices are 1-based in the
// file and are decremented on load. A quad face (a 4th a/b/c token) is
// split into two triangles (0,1,2) and (0,2,3). If the file has no `vn`
// lines at all, per-face normals are generated from (v1-v0)x(v2-v0).
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	mesh := NewMesh(filepath.Base(path))

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "vt "):
			fields := strings.Fields(line[3:])
			if len(fields) < 2 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[0], 64)
			v, _ := strconv.ParseFloat(fields[1], 64)
			mesh.UVs = append(mesh.UVs, math3d.V2(u, v))
		case strings.HasPrefix(line, "vn "):
			fields := strings.Fields(line[3:])
			if len(fields) < 3 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[0], 64)
			y, _ := strconv.ParseFloat(fields[1], 64)
			z, _ := strconv.ParseFloat(fields[2], 64)
			mesh.Normals = append(mesh.Normals, math3d.V3(x, y, z))
		case strings.HasPrefix(line, "v "):
			fields := strings.Fields(line[2:])
			if len(fields) < 3 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[0], 64)
			y, _ := strconv.ParseFloat(fields[1], 64)
			z, _ := strconv.ParseFloat(fields[2], 64)
			mesh.Positions = append(mesh.Positions, math3d.V3(x, y, z))
		case strings.HasPrefix(line, "f "):
			if err := parseFaceLine(mesh, line); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj %q: %w", path, err)
	}

	if len(mesh.Positions) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("load obj %q: file has no vertices or faces", path)
	}

	// Per-file check: a mesh with zero vn lines gets generated flat
	// normals; one vn line anywhere means every face's normal indices
	// were already collected face-by-face above.
	if len(mesh.Normals) == 0 {
		mesh.GenerateFlatNormals()
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// parseFaceVertex splits one "v", "v/t", "v//n", or "v/t/n" token into
// its 1-based indices, reporting which of t/n were actually present.
func parseFaceVertex(tok string) (v int, hasT bool, t int, hasN bool, n int, err error) {
	parts := strings.Split(tok, "/")
	v, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, false, 0, false, 0, fmt.Errorf("bad face vertex %q: %w", tok, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		t, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, false, 0, false, 0, fmt.Errorf("bad face uv index %q: %w", tok, err)
		}
		hasT = true
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, false, 0, false, 0, fmt.Errorf("bad face normal index %q: %w", tok, err)
		}
		hasN = true
	}
	return v, hasT, t, hasN, n, nil
}

func parseFaceLine(mesh *Mesh, line string) error {
	fields := strings.Fields(line)[1:]
	if len(fields) < 3 {
		return fmt.Errorf("face line has fewer than 3 vertices: %q", line)
	}

	var vIdx, tIdx, nIdx [4]int
	v0, hasT, t0, hasN, n0, err := parseFaceVertex(fields[0])
	if err != nil {
		return err
	}
	vIdx[0], tIdx[0], nIdx[0] = v0-1, t0-1, n0-1

	for i := 1; i < 3; i++ {
		v, _, t, _, n, err := parseFaceVertex(fields[i])
		if err != nil {
			return err
		}
		vIdx[i], tIdx[i], nIdx[i] = v-1, t-1, n-1
	}

	isQuad := len(fields) >= 4
	if isQuad {
		v3, _, t3, _, n3, err := parseFaceVertex(fields[3])
		if err != nil {
			return err
		}
		vIdx[3], tIdx[3], nIdx[3] = v3-1, t3-1, n3-1
	}

	mesh.Indices = append(mesh.Indices, uint32(vIdx[0]), uint32(vIdx[1]), uint32(vIdx[2]))
	if hasT {
		mesh.UVIndices = append(mesh.UVIndices, uint32(tIdx[0]), uint32(tIdx[1]), uint32(tIdx[2]))
	}
	if hasN {
		mesh.NormalIndices = append(mesh.NormalIndices, uint32(nIdx[0]), uint32(nIdx[1]), uint32(nIdx[2]))
	}
	if isQuad {
		mesh.Indices = append(mesh.Indices, uint32(vIdx[0]), uint32(vIdx[2]), uint32(vIdx[3]))
		if hasT {
			mesh.UVIndices = append(mesh.UVIndices, uint32(tIdx[0]), uint32(tIdx[2]), uint32(tIdx[3]))
		}
		if hasN {
			mesh.NormalIndices = append(mesh.NormalIndices, uint32(nIdx[0]), uint32(nIdx[2]), uint32(nIdx[3]))
		}
	}
	return nil
}
