package polygon

import "testing"

func TestGetCubeDedupesByDimensions(t *testing.T) {
	c := NewCache()
	a := c.GetCube(2, 2, 2)
	b := c.GetCube(2, 2, 2)
	if a != b {
		t.Fatal("expected two requests for the same cube dimensions to return the identical cached polygon")
	}
	if len(a.Vertices) != 24 || len(a.Indices) != 36 {
		t.Fatalf("cube has %d vertices / %d indices, want 24/36", len(a.Vertices), len(a.Indices))
	}

	other := c.GetCube(3, 2, 2)
	if other == a {
		t.Fatal("expected a differently-dimensioned cube to build a distinct polygon")
	}
}

func TestGetSphereVertexCount(t *testing.T) {
	c := NewCache()
	s := c.GetSphere(1, 8, 16)
	want := (8 + 1) * (16 + 1)
	if len(s.Vertices) != want {
		t.Fatalf("sphere has %d vertices, want %d", len(s.Vertices), want)
	}
	for _, v := range s.Vertices {
		length := v.Position.Length()
		if length < 0.999 || length > 1.001 {
			t.Fatalf("sphere vertex %+v has radius %f, want ~1", v.Position, length)
		}
	}
}

func TestGetCylinderIsClosed(t *testing.T) {
	c := NewCache()
	cyl := c.GetCylinder(1, 1, 2, 12, 1)
	if len(cyl.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(cyl.Indices))
	}
	maxIndex := uint32(0)
	for _, idx := range cyl.Indices {
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	if int(maxIndex) >= len(cyl.Vertices) {
		t.Fatalf("index %d out of range for %d vertices", maxIndex, len(cyl.Vertices))
	}
}

func TestGetCapsuleIndicesInRange(t *testing.T) {
	c := NewCache()
	cap := c.GetCapsule(0.5, 1.0, 10)
	if len(cap.Vertices) == 0 || len(cap.Indices) == 0 {
		t.Fatal("expected a non-empty capsule")
	}
	for _, idx := range cap.Indices {
		if int(idx) >= len(cap.Vertices) {
			t.Fatalf("index %d out of range for %d vertices", idx, len(cap.Vertices))
		}
	}
}

func TestGetSquareGridTopology(t *testing.T) {
	c := NewCache()
	sq := c.GetSquare(4, 4, 2, 2)
	if len(sq.Vertices) != 9 {
		t.Fatalf("2x2 grid has %d vertices, want 9", len(sq.Vertices))
	}
	if len(sq.Indices) != 24 {
		t.Fatalf("2x2 grid has %d indices, want 24 (4 quads * 6)", len(sq.Indices))
	}
}

func TestGetJitteredSquareIsDeterministicBySeed(t *testing.T) {
	a := NewCache().GetJitteredSquare(4, 4, 8, 8, 0.25, 42)
	b := NewCache().GetJitteredSquare(4, 4, 8, 8, 0.25, 42)
	if len(a.Vertices) != len(b.Vertices) {
		t.Fatalf("vertex counts differ: %d vs %d", len(a.Vertices), len(b.Vertices))
	}
	for i := range a.Vertices {
		if a.Vertices[i].Position != b.Vertices[i].Position {
			t.Fatalf("vertex %d differs across identically seeded builds: %+v vs %+v",
				i, a.Vertices[i].Position, b.Vertices[i].Position)
		}
	}

	other := NewCache().GetJitteredSquare(4, 4, 8, 8, 0.25, 43)
	same := true
	for i := range a.Vertices {
		if a.Vertices[i].Position != other.Vertices[i].Position {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected a different seed to displace at least one vertex differently")
	}
}

func TestGetJitteredSquareBoundsAndBorders(t *testing.T) {
	const jitter = 0.25
	c := NewCache()
	p := c.GetJitteredSquare(4, 4, 8, 8, jitter, 7)

	cols, rows := 9, 9
	displaced := false
	for z := 0; z < rows; z++ {
		for x := 0; x < cols; x++ {
			y := p.Vertices[z*cols+x].Position.Y
			if x == 0 || z == 0 || x == cols-1 || z == rows-1 {
				if y != 0 {
					t.Fatalf("border vertex (%d,%d) displaced to %f, want 0", x, z, y)
				}
				continue
			}
			if y < -jitter || y > jitter {
				t.Fatalf("vertex (%d,%d) displaced to %f, outside [-%g, %g]", x, z, y, jitter, jitter)
			}
			if y != 0 {
				displaced = true
			}
		}
	}
	if !displaced {
		t.Fatal("expected at least one interior vertex to be displaced")
	}

	if again := c.GetJitteredSquare(4, 4, 8, 8, jitter, 7); again != p {
		t.Fatal("expected the same parameters to return the identical cached polygon")
	}
}

func TestGetJitteredSquareZeroJitterMatchesFlatSquare(t *testing.T) {
	c := NewCache()
	flat := c.GetSquare(4, 4, 4, 4)
	jittered := c.GetJitteredSquare(4, 4, 4, 4, 0, 1)
	if len(flat.Vertices) != len(jittered.Vertices) {
		t.Fatalf("vertex counts differ: %d vs %d", len(flat.Vertices), len(jittered.Vertices))
	}
	for i := range flat.Vertices {
		if flat.Vertices[i].Position != jittered.Vertices[i].Position {
			t.Fatalf("vertex %d differs with zero jitter: %+v vs %+v",
				i, flat.Vertices[i].Position, jittered.Vertices[i].Position)
		}
	}
}
