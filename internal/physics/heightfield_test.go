package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampData() [][]float64 {
	// Склон: высота растет вдоль X.
	data := make([][]float64, 4)
	for xi := range data {
		data[xi] = make([]float64, 4)
		for yi := range data[xi] {
			data[xi][yi] = float64(xi)
		}
	}
	return data
}

func TestHeightfieldMinMax(t *testing.T) {
	hf := NewHeightfield(rampData(), 1)
	assert.Equal(t, 0.0, hf.MinValue)
	assert.Equal(t, 3.0, hf.MaxValue)
}

func TestHeightfieldIndexOfPosition(t *testing.T) {
	hf := NewHeightfield(rampData(), 1)

	xi, yi, ok := hf.GetIndexOfPosition(1.5, 2.5, false)
	require.True(t, ok)
	assert.Equal(t, 1, xi)
	assert.Equal(t, 2, yi)

	_, _, ok = hf.GetIndexOfPosition(-1, 0, false)
	assert.False(t, ok)

	xi, yi, ok = hf.GetIndexOfPosition(-1, 100, true)
	require.True(t, ok)
	assert.Equal(t, 0, xi)
	assert.Equal(t, 2, yi)
}

func TestHeightfieldGetHeightAt(t *testing.T) {
	hf := NewHeightfield(rampData(), 1)

	// На узлах сетки - точные значения.
	assert.InDelta(t, 0.0, hf.GetHeightAt(0, 0), 1e-9)
	assert.InDelta(t, 2.0, hf.GetHeightAt(2, 1), 1e-9)
	// Между узлами - линейная интерполяция по склону.
	assert.InDelta(t, 1.5, hf.GetHeightAt(1.5, 0.25), 1e-9)
}

func TestHeightfieldRectMinMax(t *testing.T) {
	hf := NewHeightfield(rampData(), 1)
	min, max := hf.GetRectMinMax(0, 0, 1, 1)
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 2.0, max)
}

func TestHeightfieldPillar(t *testing.T) {
	hf := NewHeightfield(rampData(), 1)

	pillar, offset := hf.GetConvexTrianglePillar(0, 0, false)
	require.Len(t, pillar.Vertices, 6)
	require.Len(t, pillar.Faces, 5)

	// Вершины призмы центрированы относительно offset.
	sum := Vec3{}
	for _, v := range pillar.Vertices {
		sum = sum.Add(v)
	}
	assert.InDelta(t, 0.0, sum.Len(), 1e-9)
	assert.Greater(t, offset[2], hf.MinValue-hf.ElementSize-1e-9)

	// Кэш: повторный запрос возвращает тот же объект.
	again, _ := hf.GetConvexTrianglePillar(0, 0, false)
	assert.Same(t, pillar, again)

	// Update сбрасывает кэш.
	hf.Update()
	rebuilt, _ := hf.GetConvexTrianglePillar(0, 0, false)
	assert.NotSame(t, pillar, rebuilt)
}

func TestHeightfieldPillarNormals(t *testing.T) {
	hf := NewHeightfield(rampData(), 1)

	for _, upper := range []bool{false, true} {
		pillar, _ := hf.GetConvexTrianglePillar(1, 1, upper)
		for i, n := range pillar.FaceNormals {
			center := Vec3{}
			for _, vi := range pillar.Faces[i] {
				center = center.Add(pillar.Vertices[vi])
			}
			center = center.Mul(1.0 / float64(len(pillar.Faces[i])))
			assert.Greater(t, n.Dot(center), -1e-9, "upper=%v грань %d", upper, i)
		}
	}
}

func TestTrimeshOctreeQuery(t *testing.T) {
	// Сетка из двух треугольников - квадрат в плоскости XY.
	mesh := NewTrimesh(
		[]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		[]int{0, 1, 2, 0, 2, 3},
	)

	all := mesh.GetTrianglesInAABB(AABB{Lower: Vec3{-1, -1, -1}, Upper: Vec3{2, 2, 1}})
	assert.Len(t, all, 2)

	none := mesh.GetTrianglesInAABB(AABB{Lower: Vec3{5, 5, 5}, Upper: Vec3{6, 6, 6}})
	assert.Empty(t, none)
}

func TestTrimeshNormalsAndScale(t *testing.T) {
	mesh := NewTrimesh(
		[]float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		[]int{0, 1, 2},
	)

	n := mesh.GetNormal(0)
	assert.InDelta(t, 1.0, math.Abs(n[2]), 1e-9)

	mesh.Scale = Vec3{2, 2, 2}
	v := mesh.GetVertex(1)
	assert.InDelta(t, 2.0, v[0], 1e-12)
}
