package physics

import "math"

// Sphere - сфера с центром в начале локальных координат.
type Sphere struct {
	opts   ShapeOptions
	Radius float64
}

// NewSphere создает сферу заданного радиуса.
func NewSphere(radius float64) *Sphere {
	s := &Sphere{opts: newShapeOptions(), Radius: radius}
	s.UpdateBoundingSphereRadius()
	return s
}

func (s *Sphere) Type() ShapeType        { return ShapeSphere }
func (s *Sphere) Options() *ShapeOptions { return &s.opts }

func (s *Sphere) Volume() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius * s.Radius / 3.0
}

func (s *Sphere) CalculateLocalInertia(mass float64) Vec3 {
	i := 2.0 * mass * s.Radius * s.Radius / 5.0
	return Vec3{i, i, i}
}

func (s *Sphere) UpdateBoundingSphereRadius() {
	s.opts.BoundingSphereRadius = s.Radius
}

func (s *Sphere) CalculateWorldAABB(position Vec3, _ Quat) AABB {
	r := Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Lower: position.Sub(r), Upper: position.Add(r)}
}
