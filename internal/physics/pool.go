package physics

// Пулы уравнений. Narrowphase создает и уничтожает сотни контактных
// уравнений на каждом шаге, поэтому отработавшие уравнения не
// отдаются сборщику мусора, а возвращаются в свободный список и
// переиспользуются на следующем шаге.

type contactEquationPool struct {
	free []*ContactEquation
}

func (p *contactEquationPool) get(bi, bj *Body) *ContactEquation {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		c.Bi = bi
		c.Bj = bj
		c.Enabled = true
		c.Multiplier = 0
		c.Restitution = 0
		c.Ri = Vec3{}
		c.Rj = Vec3{}
		c.Ni = Vec3{}
		c.Si = nil
		c.Sj = nil
		return c
	}
	return NewContactEquation(bi, bj)
}

func (p *contactEquationPool) release(equations []*ContactEquation) {
	p.free = append(p.free, equations...)
}

type frictionEquationPool struct {
	free []*FrictionEquation
}

func (p *frictionEquationPool) get(bi, bj *Body, slipForce float64) *FrictionEquation {
	if n := len(p.free); n > 0 {
		f := p.free[n-1]
		p.free = p.free[:n-1]
		f.Bi = bi
		f.Bj = bj
		f.Enabled = true
		f.Multiplier = 0
		f.SetSlipForce(slipForce)
		f.Ri = Vec3{}
		f.Rj = Vec3{}
		f.T = Vec3{}
		f.ContactEquation = nil
		return f
	}
	return NewFrictionEquation(bi, bj, slipForce)
}

func (p *frictionEquationPool) release(equations []*FrictionEquation) {
	p.free = append(p.free, equations...)
}
