package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addSphereBody(w *World, pos Vec3, mass float64) *Body {
	b := NewBody(BodyOptions{Mass: mass, Position: pos})
	b.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b)
	return b
}

func TestNaiveBroadphasePairs(t *testing.T) {
	w := NewWorld(WorldOptions{})
	bp := NewNaiveBroadphase()

	b1 := addSphereBody(w, Vec3{0, 0, 0}, 1)
	b2 := addSphereBody(w, Vec3{1.5, 0, 0}, 1)
	addSphereBody(w, Vec3{100, 0, 0}, 1) // далеко, пары не дает

	pairsA, pairsB := bp.CollisionPairs(w, nil, nil)
	require.Len(t, pairsA, 1)
	assert.Same(t, b1, pairsA[0])
	assert.Same(t, b2, pairsB[0])
}

func TestBroadphaseSkipsStaticStatic(t *testing.T) {
	w := NewWorld(WorldOptions{})
	bp := NewNaiveBroadphase()

	addSphereBody(w, Vec3{0, 0, 0}, 0)
	addSphereBody(w, Vec3{1, 0, 0}, 0)

	pairsA, _ := bp.CollisionPairs(w, nil, nil)
	assert.Empty(t, pairsA)
}

func TestBroadphaseSkipsSleepingPair(t *testing.T) {
	w := NewWorld(WorldOptions{})
	bp := NewNaiveBroadphase()

	b1 := addSphereBody(w, Vec3{0, 0, 0}, 1)
	b2 := addSphereBody(w, Vec3{1, 0, 0}, 1)
	b1.Sleep()
	b2.Sleep()

	pairsA, _ := bp.CollisionPairs(w, nil, nil)
	assert.Empty(t, pairsA)

	// Спящий против бодрствующего - пара остается.
	b2.WakeUp()
	pairsA, _ = bp.CollisionPairs(w, nil, nil)
	assert.Len(t, pairsA, 1)
}

func TestBroadphaseCollisionFilters(t *testing.T) {
	w := NewWorld(WorldOptions{})
	bp := NewNaiveBroadphase()

	b1 := addSphereBody(w, Vec3{0, 0, 0}, 1)
	b2 := addSphereBody(w, Vec3{1, 0, 0}, 1)
	b1.CollisionFilterGroup = 2
	b1.CollisionFilterMask = 2
	b2.CollisionFilterGroup = 4
	b2.CollisionFilterMask = 4

	pairsA, _ := bp.CollisionPairs(w, nil, nil)
	assert.Empty(t, pairsA)
}

func TestBroadphaseUseBoundingBoxes(t *testing.T) {
	w := NewWorld(WorldOptions{})
	bp := NewNaiveBroadphase()
	bp.UseBoundingBoxes = true

	addSphereBody(w, Vec3{0, 0, 0}, 1)
	addSphereBody(w, Vec3{1.9, 0, 0}, 1)

	pairsA, _ := bp.CollisionPairs(w, nil, nil)
	assert.Len(t, pairsA, 1)
}

func TestNaiveAABBQuery(t *testing.T) {
	w := NewWorld(WorldOptions{})
	bp := NewNaiveBroadphase()

	b1 := addSphereBody(w, Vec3{0, 0, 0}, 1)
	addSphereBody(w, Vec3{50, 0, 0}, 1)

	result := bp.AABBQuery(w, AABB{Lower: Vec3{-2, -2, -2}, Upper: Vec3{2, 2, 2}}, nil)
	require.Len(t, result, 1)
	assert.Same(t, b1, result[0])
}

func TestSAPBroadphasePairs(t *testing.T) {
	w := NewWorld(WorldOptions{})
	sap := NewSAPBroadphase()

	b1 := addSphereBody(w, Vec3{0, 0, 0}, 1)
	b2 := addSphereBody(w, Vec3{1.5, 0, 0}, 1)
	addSphereBody(w, Vec3{10, 0, 0}, 1)

	pairsA, pairsB := sap.CollisionPairs(w, nil, nil)
	require.Len(t, pairsA, 1)
	// Пара та же, что и у наивной фазы, порядок тел не важен.
	ok := (pairsA[0] == b1 && pairsB[0] == b2) || (pairsA[0] == b2 && pairsB[0] == b1)
	assert.True(t, ok)
}

func TestSAPBroadphaseTracksBodyRemoval(t *testing.T) {
	w := NewWorld(WorldOptions{})
	sap := NewSAPBroadphase()

	b1 := addSphereBody(w, Vec3{0, 0, 0}, 1)
	addSphereBody(w, Vec3{1.5, 0, 0}, 1)

	pairsA, _ := sap.CollisionPairs(w, nil, nil)
	require.Len(t, pairsA, 1)

	w.RemoveBody(b1)
	pairsA, _ = sap.CollisionPairs(w, nil, nil)
	assert.Empty(t, pairsA)
}

func TestSAPAutoDetectAxis(t *testing.T) {
	w := NewWorld(WorldOptions{})
	sap := NewSAPBroadphase()

	// Разброс тел вдоль Y максимален.
	for _, y := range []float64{-50, -10, 0, 10, 50} {
		addSphereBody(w, Vec3{0, y, 0}, 1)
	}

	sap.AutoDetectAxis(w)
	assert.Equal(t, 1, sap.AxisIndex)
}
