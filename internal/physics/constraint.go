package physics

// Constraint - ограничение, связывающее пару тел набором уравнений.
// Update вызывается миром перед решателем и обновляет якорные векторы
// уравнений по текущим позам тел.
type Constraint interface {
	Update()
	Equations() []*Equation
	BodyA() *Body
	BodyB() *Body

	// CollideConnected разрешает narrowphase для связанной пары.
	CollideConnected() bool
}

type baseConstraint struct {
	bodyA *Body
	bodyB *Body

	equations        []*Equation
	collideConnected bool
}

func (c *baseConstraint) Equations() []*Equation { return c.equations }
func (c *baseConstraint) BodyA() *Body           { return c.bodyA }
func (c *baseConstraint) BodyB() *Body           { return c.bodyB }
func (c *baseConstraint) CollideConnected() bool { return c.collideConnected }

// Enable включает все уравнения ограничения.
func (c *baseConstraint) Enable() {
	for _, eq := range c.equations {
		eq.Enabled = true
	}
}

// Disable выключает все уравнения ограничения.
func (c *baseConstraint) Disable() {
	for _, eq := range c.equations {
		eq.Enabled = false
	}
}

// DistanceConstraint удерживает центры масс двух тел на заданном
// расстоянии одним двусторонним контактным уравнением.
type DistanceConstraint struct {
	baseConstraint

	Distance float64

	distanceEquation *ContactEquation
}

// NewDistanceConstraint создает ограничение. distance <= 0 означает
// "текущее расстояние между телами".
func NewDistanceConstraint(bodyA, bodyB *Body, distance, maxForce float64) *DistanceConstraint {
	if distance <= 0 {
		distance = bodyB.Position.Sub(bodyA.Position).Len()
	}
	if maxForce <= 0 {
		maxForce = 1e6
	}

	eq := NewContactEquation(bodyA, bodyB)
	eq.MinForce = -maxForce
	eq.MaxForce = maxForce

	c := &DistanceConstraint{
		baseConstraint: baseConstraint{
			bodyA:            bodyA,
			bodyB:            bodyB,
			equations:        []*Equation{&eq.Equation},
			collideConnected: true,
		},
		Distance:         distance,
		distanceEquation: eq,
	}
	return c
}

func (c *DistanceConstraint) Update() {
	eq := c.distanceEquation
	halfDist := c.Distance * 0.5
	normal := normalizeOrZ(c.bodyB.Position.Sub(c.bodyA.Position))

	eq.Ni = normal
	eq.Ri = normal.Mul(halfDist)
	eq.Rj = normal.Mul(-halfDist)
}

// PointToPointConstraint сцепляет точку тела A с точкой тела B тремя
// контактными уравнениями по мировым осям.
type PointToPointConstraint struct {
	baseConstraint

	// PivotA, PivotB - якорные точки в локальных координатах тел.
	PivotA Vec3
	PivotB Vec3

	equationX *ContactEquation
	equationY *ContactEquation
	equationZ *ContactEquation
}

func NewPointToPointConstraint(bodyA *Body, pivotA Vec3, bodyB *Body, pivotB Vec3, maxForce float64) *PointToPointConstraint {
	if maxForce <= 0 {
		maxForce = 1e6
	}

	x := NewContactEquation(bodyA, bodyB)
	y := NewContactEquation(bodyA, bodyB)
	z := NewContactEquation(bodyA, bodyB)
	x.Ni = Vec3{1, 0, 0}
	y.Ni = Vec3{0, 1, 0}
	z.Ni = Vec3{0, 0, 1}
	for _, eq := range []*ContactEquation{x, y, z} {
		eq.MinForce = -maxForce
		eq.MaxForce = maxForce
	}

	return &PointToPointConstraint{
		baseConstraint: baseConstraint{
			bodyA:            bodyA,
			bodyB:            bodyB,
			equations:        []*Equation{&x.Equation, &y.Equation, &z.Equation},
			collideConnected: true,
		},
		PivotA:    pivotA,
		PivotB:    pivotB,
		equationX: x,
		equationY: y,
		equationZ: z,
	}
}

func (c *PointToPointConstraint) Update() {
	ri := c.bodyA.Quaternion.Rotate(c.PivotA)
	rj := c.bodyB.Quaternion.Rotate(c.PivotB)
	for _, eq := range []*ContactEquation{c.equationX, c.equationY, c.equationZ} {
		eq.Ri = ri
		eq.Rj = rj
	}
}
