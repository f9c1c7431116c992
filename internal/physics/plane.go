package physics

import "math"

// Plane - бесконечная плоскость. В локальных координатах нормаль
// направлена вдоль +Z; ориентация задается кватернионом тела.
type Plane struct {
	opts ShapeOptions

	// worldNormal - кэш мировой нормали и кватернион, для которого
	// она была вычислена.
	worldNormal     Vec3
	worldNormalQuat Quat
	normalSet       bool
}

// NewPlane создает плоскость.
func NewPlane() *Plane {
	p := &Plane{opts: newShapeOptions()}
	p.UpdateBoundingSphereRadius()
	return p
}

func (p *Plane) Type() ShapeType        { return ShapePlane }
func (p *Plane) Options() *ShapeOptions { return &p.opts }

// Volume бесконечной плоскости бесконечен.
func (p *Plane) Volume() float64 { return math.Inf(1) }

func (p *Plane) CalculateLocalInertia(_ float64) Vec3 {
	return Vec3{}
}

func (p *Plane) UpdateBoundingSphereRadius() {
	p.opts.BoundingSphereRadius = math.Inf(1)
}

// WorldNormal возвращает нормаль плоскости в мировых координатах.
func (p *Plane) WorldNormal(quaternion Quat) Vec3 {
	if !p.normalSet || p.worldNormalQuat != quaternion {
		p.worldNormal = quaternion.Rotate(Vec3{0, 0, 1})
		p.worldNormalQuat = quaternion
		p.normalSet = true
	}
	return p.worldNormal
}

func (p *Plane) CalculateWorldAABB(position Vec3, quaternion Quat) AABB {
	// Плоскость бесконечна: ограничиваем AABB только по направлению
	// нормали.
	inf := math.Inf(1)
	aabb := AABB{Lower: Vec3{-inf, -inf, -inf}, Upper: Vec3{inf, inf, inf}}
	n := p.WorldNormal(quaternion)

	for i := 0; i < 3; i++ {
		if n[i] == 1 {
			aabb.Upper[i] = position[i]
		} else if n[i] == -1 {
			aabb.Lower[i] = position[i]
		}
	}
	return aabb
}
