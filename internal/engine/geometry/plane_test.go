package geometry

import (
	"errors"
	"testing"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/gpu/gputest"
)

func newPlane(t *testing.T, b *gputest.Backend, w, h float32, xs, ys int, o Orientation) *Plane {
	t.Helper()
	p, err := NewPlane(b, w, h, xs, ys, o)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	return p
}

func TestSetTopologyCounts(t *testing.T) {
	p := newPlane(t, gputest.New(), 2, 2, 1, 1, OrientationXZ)

	if err := p.SetTopology(2, 2); err != nil {
		t.Fatalf("SetTopology: %v", err)
	}
	if p.VertexCount() != 9 {
		t.Errorf("VertexCount = %d, want 9", p.VertexCount())
	}
	if p.QuadCount() != 8 {
		t.Errorf("QuadCount = %d, want 8", p.QuadCount())
	}
	if n := p.Index().Len(); n != 24 {
		t.Errorf("index length = %d, want 24", n)
	}
	if n := len(p.UV().Float32()); n != 18 {
		t.Errorf("uv length = %d, want 18", n)
	}
}

func TestSetTopologyIndices(t *testing.T) {
	p := newPlane(t, gputest.New(), 2, 2, 2, 1, OrientationXZ)

	// 3x2 vertex grid:
	// 0 1 2
	// 3 4 5
	want := []uint16{
		0, 3, 1, 1, 3, 4,
		1, 4, 2, 2, 4, 5,
	}
	got := p.Index().Uint16()
	if len(got) != len(want) {
		t.Fatalf("index length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSetTopologyUV(t *testing.T) {
	p := newPlane(t, gputest.New(), 2, 2, 2, 2, OrientationXZ)

	uv := p.UV().Float32()
	uvNorm := p.UVNorm().Float32()

	// Row 0 is v-flipped to the top.
	if uv[0] != 0 || uv[1] != 1 {
		t.Errorf("vertex 0 uv = (%v, %v), want (0, 1)", uv[0], uv[1])
	}
	if uvNorm[0] != -1 || uvNorm[1] != 1 {
		t.Errorf("vertex 0 uvNorm = (%v, %v), want (-1, 1)", uvNorm[0], uvNorm[1])
	}
	// Center vertex.
	if uv[8] != 0.5 || uv[9] != 0.5 || uvNorm[8] != 0 || uvNorm[9] != 0 {
		t.Errorf("center uv = (%v, %v) uvNorm = (%v, %v)", uv[8], uv[9], uvNorm[8], uvNorm[9])
	}
	// Last vertex.
	if uv[16] != 1 || uv[17] != 0 || uvNorm[16] != 1 || uvNorm[17] != -1 {
		t.Errorf("last uv = (%v, %v) uvNorm = (%v, %v)", uv[16], uv[17], uvNorm[16], uvNorm[17])
	}
}

func TestSetTopologyUploadsImmediately(t *testing.T) {
	b := gputest.New()
	p := newPlane(t, b, 2, 2, 1, 1, OrientationXZ)
	b.Reset()

	if err := p.SetTopology(3, 2); err != nil {
		t.Fatalf("SetTopology: %v", err)
	}
	if b.Count("BufferFloat32") != 2 || b.Count("BufferUint16") != 1 {
		t.Errorf("expected uv, uvNorm and index uploads, got %v", b.Ops())
	}
}

func TestSetTopologyRejects(t *testing.T) {
	p := newPlane(t, gputest.New(), 2, 2, 1, 1, OrientationXZ)

	if err := p.SetTopology(0, 3); !errors.Is(err, ErrInvalidSegments) {
		t.Errorf("expected ErrInvalidSegments, got %v", err)
	}
	if err := p.SetTopology(300, 300); !errors.Is(err, ErrTooManyVertices) {
		t.Errorf("expected ErrTooManyVertices, got %v", err)
	}
	// A rejected topology leaves the previous one in place.
	if p.VertexCount() != 4 {
		t.Errorf("VertexCount = %d after rejected topology, want 4", p.VertexCount())
	}
	if err := p.SetTopology(255, 255); err != nil {
		t.Errorf("65536 vertices should fit: %v", err)
	}
}

func TestSetSizeCorners(t *testing.T) {
	tests := []struct {
		orientation Orientation
		a0, a1, a2  int
	}{
		{"xz", 0, 2, 1},
		{"xy", 0, 1, 2},
		{"zy", 2, 1, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.orientation), func(t *testing.T) {
			p := newPlane(t, gputest.New(), 2, 2, 1, 1, tt.orientation)
			pos := p.Position().Float32()

			want := [][2]float32{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
			for i, w := range want {
				got := [2]float32{pos[3*i+tt.a0], pos[3*i+tt.a1]}
				if got != w {
					t.Errorf("vertex %d = %v, want %v", i, got, w)
				}
				if pos[3*i+tt.a2] != 0 {
					t.Errorf("vertex %d orthogonal axis = %v, want 0", i, pos[3*i+tt.a2])
				}
			}
		})
	}
}

func TestSetSizeKeepsStorageAndOrthogonalAxis(t *testing.T) {
	b := gputest.New()
	p := newPlane(t, b, 2, 2, 1, 1, OrientationXZ)

	pos := p.Position().Float32()
	pos[1] = 7 // y of vertex 0, outside the xz pair
	b.Reset()

	if err := p.SetSize(4, 8, OrientationXZ); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	got := p.Position().Float32()
	if &got[0] != &pos[0] {
		t.Error("storage should be reused while the vertex count is unchanged")
	}
	if got[1] != 7 {
		t.Errorf("orthogonal axis overwritten: %v", got[1])
	}
	if got[0] != -2 || got[2] != 4 {
		t.Errorf("vertex 0 = (%v, %v), want (-2, 4)", got[0], got[2])
	}
	if b.Count("BufferFloat32") != 1 || b.Count("BufferUint16") != 0 {
		t.Errorf("SetSize should upload positions only, got %v", b.Ops())
	}
}

func TestSetSizeAfterTopologyChange(t *testing.T) {
	p := newPlane(t, gputest.New(), 2, 2, 1, 1, OrientationXZ)
	if err := p.SetTopology(4, 2); err != nil {
		t.Fatalf("SetTopology: %v", err)
	}
	if err := p.SetSize(8, 4, OrientationXZ); err != nil {
		t.Fatalf("SetSize: %v", err)
	}

	pos := p.Position().Float32()
	if len(pos) != 3*15 {
		t.Fatalf("position length = %d, want 45", len(pos))
	}
	// Vertex (row 1, col 2) sits at the origin.
	i := 1*5 + 2
	if pos[3*i] != 0 || pos[3*i+2] != 0 {
		t.Errorf("center vertex = (%v, %v), want origin", pos[3*i], pos[3*i+2])
	}
}

func TestSetSizeInvalidOrientation(t *testing.T) {
	p := newPlane(t, gputest.New(), 2, 2, 1, 1, OrientationXZ)
	for _, o := range []Orientation{"", "x", "xx", "xw", "xyz"} {
		if err := p.SetSize(1, 1, o); !errors.Is(err, ErrInvalidOrientation) {
			t.Errorf("SetSize(%q): expected ErrInvalidOrientation, got %v", o, err)
		}
	}
}

func TestNewPlaneBufferFailure(t *testing.T) {
	b := gputest.New()
	b.FailBuffers = true
	if _, err := NewPlane(b, 1, 1, 1, 1, OrientationXZ); !errors.Is(err, gpu.ErrResourceCreation) {
		t.Errorf("expected ErrResourceCreation, got %v", err)
	}
}

func TestPlaneAttributesAndRelease(t *testing.T) {
	b := gputest.New()
	p := newPlane(t, b, 1, 1, 1, 1, OrientationXZ)

	attrs := p.Attributes()
	names := []string{AttrPosition, AttrUV, AttrUVNorm, AttrIndex}
	for i, a := range attrs {
		if a.Name != names[i] {
			t.Errorf("attribute %d = %s, want %s", i, a.Name, names[i])
		}
	}
	if attrs[3].Attribute.Target() != gpu.TargetIndex {
		t.Error("index attribute must target the index buffer")
	}

	p.Release()
	for h, s := range b.Buffers {
		if !s.Deleted {
			t.Errorf("buffer %d not released", h)
		}
	}
}
