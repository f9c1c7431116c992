package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxFaceNormalsPointOutward(t *testing.T) {
	box := NewBox(Vec3{1, 1, 1})
	h := box.ConvexRepresentation

	require.Len(t, h.Faces, 6)
	for i, n := range h.FaceNormals {
		center := Vec3{}
		for _, vi := range h.Faces[i] {
			center = center.Add(h.Vertices[vi])
		}
		center = center.Mul(1.0 / float64(len(h.Faces[i])))
		// Нормаль наружу: сонаправлена с центром грани.
		assert.Greater(t, n.Dot(center), 0.0, "грань %d", i)
	}
}

func TestBoxUniqueAxes(t *testing.T) {
	box := NewBox(Vec3{1, 2, 3})
	assert.Len(t, box.ConvexRepresentation.UniqueAxes, 3)
}

func TestConvexVolume(t *testing.T) {
	box := NewBox(Vec3{1, 1, 1})
	assert.InDelta(t, 8.0, box.ConvexRepresentation.Volume(), 1e-9)
	assert.InDelta(t, 8.0, box.Volume(), 1e-9)
}

func TestFindSeparatingAxisSeparated(t *testing.T) {
	a := NewBox(Vec3{1, 1, 1}).ConvexRepresentation
	b := NewBox(Vec3{1, 1, 1}).ConvexRepresentation

	_, touching := a.FindSeparatingAxis(b, Vec3{}, QuatIdent(), Vec3{5, 0, 0}, QuatIdent())
	assert.False(t, touching)
}

func TestFindSeparatingAxisOverlap(t *testing.T) {
	a := NewBox(Vec3{1, 1, 1}).ConvexRepresentation
	b := NewBox(Vec3{1, 1, 1}).ConvexRepresentation

	axis, touching := a.FindSeparatingAxis(b, Vec3{}, QuatIdent(), Vec3{1.5, 0, 0}, QuatIdent())
	require.True(t, touching)
	// Ось минимального перекрытия - X, направлена от B к A.
	assert.InDelta(t, -1.0, axis[0], 1e-9)
	assert.InDelta(t, 0.0, axis[1], 1e-9)
	assert.InDelta(t, 0.0, axis[2], 1e-9)
}

func TestFindSeparatingAxisRotated(t *testing.T) {
	a := NewBox(Vec3{1, 1, 1}).ConvexRepresentation
	b := NewBox(Vec3{1, 1, 1}).ConvexRepresentation

	// Куб повернут на 45° вокруг Z: диагональ достает дальше.
	q := NewQuat(0, 0, math.Sin(math.Pi/8), math.Cos(math.Pi/8))
	_, touching := a.FindSeparatingAxis(b, Vec3{}, QuatIdent(), Vec3{2.2, 0, 0}, q)
	assert.True(t, touching)
}

func TestClipAgainstHullManifold(t *testing.T) {
	a := NewBox(Vec3{1, 1, 1}).ConvexRepresentation
	b := NewBox(Vec3{1, 1, 1}).ConvexRepresentation

	posB := Vec3{0, 0, 1.8}
	sepAxis, touching := a.FindSeparatingAxis(b, Vec3{}, QuatIdent(), posB, QuatIdent())
	require.True(t, touching)

	res := a.ClipAgainstHull(Vec3{}, QuatIdent(), b, posB, QuatIdent(), sepAxis, -100, 100)
	// Грань на грань: четырехточечное многообразие.
	require.Len(t, res, 4)
	for _, p := range res {
		assert.Negative(t, p.Depth)
		assert.InDelta(t, 0.2, -p.Depth, 1e-9)
	}
}

func TestTestSepAxisDepth(t *testing.T) {
	a := NewBox(Vec3{1, 1, 1}).ConvexRepresentation
	b := NewBox(Vec3{1, 1, 1}).ConvexRepresentation

	depth, ok := a.TestSepAxis(Vec3{1, 0, 0}, b, Vec3{}, QuatIdent(), Vec3{1.5, 0, 0}, QuatIdent())
	require.True(t, ok)
	assert.InDelta(t, 0.5, depth, 1e-9)

	_, ok = a.TestSepAxis(Vec3{1, 0, 0}, b, Vec3{}, QuatIdent(), Vec3{3, 0, 0}, QuatIdent())
	assert.False(t, ok)
}

func TestPointIsInside(t *testing.T) {
	box := NewBox(Vec3{1, 1, 1}).ConvexRepresentation

	assert.True(t, box.PointIsInside(Vec3{0, 0, 0}, Vec3{}, QuatIdent()))
	assert.True(t, box.PointIsInside(Vec3{0.9, 0.9, 0.9}, Vec3{}, QuatIdent()))
	assert.False(t, box.PointIsInside(Vec3{1.1, 0, 0}, Vec3{}, QuatIdent()))

	// Со смещением тела.
	assert.True(t, box.PointIsInside(Vec3{5, 0, 0}, Vec3{5, 0, 0}, QuatIdent()))
}

func TestCylinderGeometry(t *testing.T) {
	cyl := NewCylinder(1, 1, 2, 8)

	// 8 сегментов: 16 вершин, 8 боковых граней и две крышки.
	assert.Len(t, cyl.Vertices, 16)
	assert.Len(t, cyl.Faces, 10)

	for i, n := range cyl.FaceNormals {
		center := Vec3{}
		for _, vi := range cyl.Faces[i] {
			center = center.Add(cyl.Vertices[vi])
		}
		center = center.Mul(1.0 / float64(len(cyl.Faces[i])))
		assert.GreaterOrEqual(t, n.Dot(center), -1e-9, "грань %d", i)
	}
}

func TestConvexLocalInertiaMatchesBox(t *testing.T) {
	box := NewBox(Vec3{1, 2, 3})

	exact := box.CalculateLocalInertia(6)
	approx := box.ConvexRepresentation.CalculateLocalInertia(6)
	for k := 0; k < 3; k++ {
		assert.InDelta(t, exact[k], approx[k], 1e-9)
	}
}
