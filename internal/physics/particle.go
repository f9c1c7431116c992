package physics

// Particle - точечная форма без объема. Участвует в коллизиях
// particle-plane, particle-sphere и particle-convex.
type Particle struct {
	opts ShapeOptions
}

// NewParticle создает точечную форму.
func NewParticle() *Particle {
	return &Particle{opts: newShapeOptions()}
}

func (p *Particle) Type() ShapeType        { return ShapeParticle }
func (p *Particle) Options() *ShapeOptions { return &p.opts }

func (p *Particle) Volume() float64 { return 0 }

func (p *Particle) CalculateLocalInertia(_ float64) Vec3 {
	return Vec3{}
}

func (p *Particle) UpdateBoundingSphereRadius() {
	p.opts.BoundingSphereRadius = 0
}

func (p *Particle) CalculateWorldAABB(position Vec3, _ Quat) AABB {
	return AABB{Lower: position, Upper: position}
}
