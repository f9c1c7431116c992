package physics

import "math"

// AABB - ограничивающий параллелепипед, выровненный по осям мира.
type AABB struct {
	Lower Vec3
	Upper Vec3
}

// NewAABB создает AABB с вывернутыми границами: первое же Extend
// установит реальные значения.
func NewAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Lower: Vec3{inf, inf, inf},
		Upper: Vec3{-inf, -inf, -inf},
	}
}

// SetFromPoints строит AABB по набору точек, преобразованных позицией
// и вращением. Skin расширяет границы во все стороны.
func (a *AABB) SetFromPoints(points []Vec3, position Vec3, quaternion Quat, skin float64) {
	inf := math.Inf(1)
	a.Lower = Vec3{inf, inf, inf}
	a.Upper = Vec3{-inf, -inf, -inf}

	for _, p := range points {
		wp := quaternion.Rotate(p).Add(position)
		for i := 0; i < 3; i++ {
			if wp[i] > a.Upper[i] {
				a.Upper[i] = wp[i]
			}
			if wp[i] < a.Lower[i] {
				a.Lower[i] = wp[i]
			}
		}
	}

	if skin > 0 {
		s := Vec3{skin, skin, skin}
		a.Upper = a.Upper.Add(s)
		a.Lower = a.Lower.Sub(s)
	}
}

// Overlaps проверяет пересечение двух AABB.
func (a AABB) Overlaps(b AABB) bool {
	return a.Lower[0] <= b.Upper[0] && b.Lower[0] <= a.Upper[0] &&
		a.Lower[1] <= b.Upper[1] && b.Lower[1] <= a.Upper[1] &&
		a.Lower[2] <= b.Upper[2] && b.Lower[2] <= a.Upper[2]
}

// Contains проверяет, что b целиком лежит внутри a.
func (a AABB) Contains(b AABB) bool {
	return a.Lower[0] <= b.Lower[0] && a.Upper[0] >= b.Upper[0] &&
		a.Lower[1] <= b.Lower[1] && a.Upper[1] >= b.Upper[1] &&
		a.Lower[2] <= b.Lower[2] && a.Upper[2] >= b.Upper[2]
}

// ContainsPoint проверяет принадлежность точки.
func (a AABB) ContainsPoint(p Vec3) bool {
	return a.Lower[0] <= p[0] && p[0] <= a.Upper[0] &&
		a.Lower[1] <= p[1] && p[1] <= a.Upper[1] &&
		a.Lower[2] <= p[2] && p[2] <= a.Upper[2]
}

// Extend расширяет a так, чтобы вместить b.
func (a *AABB) Extend(b AABB) {
	for i := 0; i < 3; i++ {
		a.Lower[i] = math.Min(a.Lower[i], b.Lower[i])
		a.Upper[i] = math.Max(a.Upper[i], b.Upper[i])
	}
}

// OverlapsRay грубо проверяет пересечение луча с AABB методом слэбов.
func (a AABB) OverlapsRay(from, direction Vec3) bool {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for i := 0; i < 3; i++ {
		if direction[i] == 0 {
			if from[i] < a.Lower[i] || from[i] > a.Upper[i] {
				return false
			}
			continue
		}
		inv := 1 / direction[i]
		t1 := (a.Lower[i] - from[i]) * inv
		t2 := (a.Upper[i] - from[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	return tmax >= tmin && tmax >= 0
}
