package physics

// JacobianElement - блок якобиана уравнения для одного тела:
// пространственная и вращательная части.
type JacobianElement struct {
	Spatial    Vec3
	Rotational Vec3
}

// MultiplyVectors возвращает G·(spatial, rotational).
func (j JacobianElement) MultiplyVectors(spatial, rotational Vec3) float64 {
	return j.Spatial.Dot(spatial) + j.Rotational.Dot(rotational)
}

// Equation - строка системы ограничений решателя: два тела, якобиан,
// границы силы и spook-параметры (a, b, eps), выведенные из жесткости,
// релаксации и шага времени.
type Equation struct {
	ID       int
	MinForce float64
	MaxForce float64

	Bi *Body
	Bj *Body

	A   float64
	B   float64
	Eps float64

	JacobianElementA JacobianElement
	JacobianElementB JacobianElement

	Enabled bool

	// Multiplier - результирующий множитель ограничения (сила),
	// заполняется решателем.
	Multiplier float64

	Stiffness  float64
	Relaxation float64

	computeB func(h float64) float64
}

var equationIDCounter int

func (e *Equation) init(bi, bj *Body, minForce, maxForce float64) {
	equationIDCounter++
	e.ID = equationIDCounter
	e.Bi = bi
	e.Bj = bj
	e.MinForce = minForce
	e.MaxForce = maxForce
	e.Enabled = true
	e.Multiplier = 0
	e.Stiffness = 1e7
	e.Relaxation = 4
	e.SetSpookParams(e.Stiffness, e.Relaxation, 1.0/60.0)
}

// SetSpookParams пересчитывает коэффициенты SPOOK-стабилизации по
// жесткости k, релаксации d и шагу h.
func (e *Equation) SetSpookParams(stiffness, relaxation, timeStep float64) {
	d := relaxation
	k := stiffness
	h := timeStep
	e.Stiffness = k
	e.Relaxation = d
	e.A = 4.0 / (h * (1 + 4*d))
	e.B = (4.0 * d) / (1 + 4*d)
	e.Eps = 4.0 / (h * h * k * (1 + 4*d))
}

// ComputeGW возвращает относительную скорость в пространстве
// ограничения: G·W по фактическим скоростям тел.
func (e *Equation) ComputeGW() float64 {
	return e.JacobianElementA.MultiplyVectors(e.Bi.Velocity, e.Bi.AngularVelocity) +
		e.JacobianElementB.MultiplyVectors(e.Bj.Velocity, e.Bj.AngularVelocity)
}

// ComputeGWlambda - то же по лямбда-скоростям решателя.
func (e *Equation) ComputeGWlambda() float64 {
	return e.JacobianElementA.MultiplyVectors(e.Bi.vlambda, e.Bi.wlambda) +
		e.JacobianElementB.MultiplyVectors(e.Bj.vlambda, e.Bj.wlambda)
}

// ComputeGiMf возвращает G·(M^-1 f): вклад внешних сил.
func (e *Equation) ComputeGiMf() float64 {
	bi, bj := e.Bi, e.Bj
	iMfi := bi.Force.Mul(bi.InvMassSolve)
	iMfj := bj.Force.Mul(bj.InvMassSolve)
	invIiTi := bi.InvInertiaWorldSolve.Mul3x1(bi.Torque)
	invIjTj := bj.InvInertiaWorldSolve.Mul3x1(bj.Torque)
	return e.JacobianElementA.MultiplyVectors(iMfi, invIiTi) +
		e.JacobianElementB.MultiplyVectors(iMfj, invIjTj)
}

// ComputeGiMGt возвращает G·(M^-1 G^T): эффективную обратную массу
// ограничения.
func (e *Equation) ComputeGiMGt() float64 {
	bi, bj := e.Bi, e.Bj
	ga, gb := e.JacobianElementA, e.JacobianElementB

	result := bi.InvMassSolve*ga.Spatial.LenSqr() + bj.InvMassSolve*gb.Spatial.LenSqr()
	result += bi.InvInertiaWorldSolve.Mul3x1(ga.Rotational).Dot(ga.Rotational)
	result += bj.InvInertiaWorldSolve.Mul3x1(gb.Rotational).Dot(gb.Rotational)
	return result
}

// ComputeC возвращает знаменатель итерации решателя: G·M^-1·G^T + eps.
func (e *Equation) ComputeC() float64 {
	return e.ComputeGiMGt() + e.Eps
}

// ComputeB возвращает правую часть уравнения для текущего шага.
func (e *Equation) ComputeB(h float64) float64 {
	if e.computeB == nil {
		return 0
	}
	return e.computeB(h)
}

// AddToWlambda распределяет приращение импульса deltaLambda по
// лямбда-скоростям обоих тел через их обратные массы и инерции.
func (e *Equation) AddToWlambda(deltaLambda float64) {
	bi, bj := e.Bi, e.Bj
	ga, gb := e.JacobianElementA, e.JacobianElementB

	bi.vlambda = bi.vlambda.Add(ga.Spatial.Mul(bi.InvMassSolve * deltaLambda))
	bj.vlambda = bj.vlambda.Add(gb.Spatial.Mul(bj.InvMassSolve * deltaLambda))

	bi.wlambda = bi.wlambda.Add(bi.InvInertiaWorldSolve.Mul3x1(ga.Rotational).Mul(deltaLambda))
	bj.wlambda = bj.wlambda.Add(bj.InvInertiaWorldSolve.Mul3x1(gb.Rotational).Mul(deltaLambda))
}

// ContactEquation - уравнение непроникновения в контактной точке.
type ContactEquation struct {
	Equation

	Restitution float64

	// Ri, Rj - мировые векторы от центров масс к контактной точке.
	Ri Vec3
	Rj Vec3

	// Ni - мировая нормаль контакта, направлена от тела i к телу j.
	Ni Vec3

	// Si, Sj - формы, породившие контакт.
	Si Shape
	Sj Shape
}

// NewContactEquation создает контактное уравнение с границами силы
// [0, maxForce]: контакт только отталкивает.
func NewContactEquation(bi, bj *Body) *ContactEquation {
	c := &ContactEquation{}
	c.init(bi, bj, 0, 1e6)
	c.computeB = c.contactComputeB
	return c
}

func (c *ContactEquation) contactComputeB(h float64) float64 {
	a, b := c.A, c.B
	bi, bj := c.Bi, c.Bj
	ri, rj, n := c.Ri, c.Rj, c.Ni

	rixn := ri.Cross(n)
	rjxn := rj.Cross(n)

	c.JacobianElementA.Spatial = n.Mul(-1)
	c.JacobianElementA.Rotational = rixn.Mul(-1)
	c.JacobianElementB.Spatial = n
	c.JacobianElementB.Rotational = rjxn

	// Штраф проникновения g: расстояние между контактными точками
	// вдоль нормали.
	penetration := bj.Position.Add(rj).Sub(bi.Position).Sub(ri)
	g := n.Dot(penetration)

	ePlusOne := c.Restitution + 1
	gW := ePlusOne*bj.Velocity.Dot(n) - ePlusOne*bi.Velocity.Dot(n) +
		bj.AngularVelocity.Dot(rjxn) - bi.AngularVelocity.Dot(rixn)
	giMf := c.ComputeGiMf()

	return -g*a - gW*b - h*giMf
}

// GetImpactVelocityAlongNormal возвращает скорость сближения тел
// вдоль нормали контакта.
func (c *ContactEquation) GetImpactVelocityAlongNormal() float64 {
	vi := c.Bi.GetVelocityAtWorldPoint(c.Bi.Position.Add(c.Ri))
	vj := c.Bj.GetVelocityAtWorldPoint(c.Bj.Position.Add(c.Rj))
	return c.Ni.Dot(vi.Sub(vj))
}

// FrictionEquation - уравнение трения вдоль касательной T с
// симметричными границами силы (конус трения аппроксимируется
// пирамидой из двух касательных).
type FrictionEquation struct {
	Equation

	Ri Vec3
	Rj Vec3
	T  Vec3

	// ContactEquation - контакт, к которому привязано трение.
	ContactEquation *ContactEquation
}

// NewFrictionEquation создает уравнение трения с границей slipForce.
func NewFrictionEquation(bi, bj *Body, slipForce float64) *FrictionEquation {
	f := &FrictionEquation{}
	f.init(bi, bj, -slipForce, slipForce)
	f.computeB = f.frictionComputeB
	return f
}

// SetSlipForce обновляет границы силы трения.
func (f *FrictionEquation) SetSlipForce(slipForce float64) {
	f.MinForce = -slipForce
	f.MaxForce = slipForce
}

func (f *FrictionEquation) frictionComputeB(h float64) float64 {
	b := f.B
	ri, rj, t := f.Ri, f.Rj, f.T

	rixt := ri.Cross(t)
	rjxt := rj.Cross(t)

	f.JacobianElementA.Spatial = t.Mul(-1)
	f.JacobianElementA.Rotational = rixt.Mul(-1)
	f.JacobianElementB.Spatial = t
	f.JacobianElementB.Rotational = rjxt

	gW := f.ComputeGW()
	giMf := f.ComputeGiMf()

	return -gW*b - h*giMf
}
