package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpookParams(t *testing.T) {
	eq := NewContactEquation(NewBody(BodyOptions{Mass: 1}), NewBody(BodyOptions{Mass: 1}))
	h := 1.0 / 60.0
	k, d := 1e7, 3.0
	eq.SetSpookParams(k, d, h)

	assert.InDelta(t, 4.0/(h*(1+4*d)), eq.A, 1e-9)
	assert.InDelta(t, 4.0*d/(1+4*d), eq.B, 1e-9)
	assert.InDelta(t, 4.0/(h*h*k*(1+4*d)), eq.Eps, 1e-15)
}

func TestContactEquationForceBounds(t *testing.T) {
	eq := NewContactEquation(NewBody(BodyOptions{Mass: 1}), NewBody(BodyOptions{Mass: 1}))
	// Контакт только отталкивает.
	assert.Equal(t, 0.0, eq.MinForce)
	assert.Equal(t, 1e6, eq.MaxForce)
}

func TestGSSolverResolvesPenetration(t *testing.T) {
	w := NewWorld(WorldOptions{})
	w.dt = 1.0 / 60.0
	solver := NewGSSolver()

	ground := NewBody(BodyOptions{Mass: 0})
	ground.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(ground)

	ball := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0.9}})
	ball.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	ball.Velocity = Vec3{0, 0, -1}
	w.AddBody(ball)

	contacts, _ := w.Narrowphase.GetContacts([]*Body{ball}, []*Body{ground})
	require.Len(t, contacts, 1)
	solver.AddEquation(&contacts[0].Equation)

	iterations := solver.Solve(w.dt, w)
	assert.Greater(t, iterations, 0)

	// Решатель гасит сближение: скорость вдоль нормали больше не
	// направлена внутрь плоскости.
	assert.GreaterOrEqual(t, ball.Velocity[2], -1e-9)
	// Статика не двигается.
	assert.Equal(t, Vec3{}, ground.Velocity)

	// Множитель контакта положителен: контакт толкает.
	assert.Greater(t, contacts[0].Multiplier, 0.0)
}

func TestGSSolverRespectsForceBounds(t *testing.T) {
	w := NewWorld(WorldOptions{})
	w.dt = 1.0 / 60.0
	solver := NewGSSolver()

	b1 := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0}})
	b1.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{1.5, 0, 0}})
	b2.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	// Тела разлетаются: контакт не должен их стягивать.
	b1.Velocity = Vec3{-10, 0, 0}
	b2.Velocity = Vec3{10, 0, 0}
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, _ := w.Narrowphase.GetContacts([]*Body{b1}, []*Body{b2})
	require.Len(t, contacts, 1)
	solver.AddEquation(&contacts[0].Equation)
	solver.Solve(w.dt, w)

	// Минимальная сила контакта ноль: притягивать нельзя.
	assert.GreaterOrEqual(t, contacts[0].Multiplier, 0.0)
	assert.LessOrEqual(t, b1.Velocity[0], -10+1e-9)
}

func TestGSSolverSkipsDisabledEquations(t *testing.T) {
	solver := NewGSSolver()
	eq := NewContactEquation(NewBody(BodyOptions{Mass: 1}), NewBody(BodyOptions{Mass: 1}))
	eq.Enabled = false
	solver.AddEquation(&eq.Equation)
	assert.Empty(t, solver.Equations())
}

func TestGSSolverRemoveAllEquations(t *testing.T) {
	solver := NewGSSolver()
	eq := NewContactEquation(NewBody(BodyOptions{Mass: 1}), NewBody(BodyOptions{Mass: 1}))
	solver.AddEquation(&eq.Equation)
	require.Len(t, solver.Equations(), 1)
	solver.RemoveAllEquations()
	assert.Empty(t, solver.Equations())
}

func TestImpactVelocityAlongNormal(t *testing.T) {
	b1 := NewBody(BodyOptions{Mass: 1})
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{2, 0, 0}})
	b1.Velocity = Vec3{1, 0, 0}
	b2.Velocity = Vec3{-1, 0, 0}

	c := NewContactEquation(b1, b2)
	c.Ni = Vec3{1, 0, 0}
	c.Ri = Vec3{1, 0, 0}
	c.Rj = Vec3{-1, 0, 0}

	// Сближение со скоростью 2.
	assert.InDelta(t, 2.0, c.GetImpactVelocityAlongNormal(), 1e-12)
}

func TestEquationPoolReuse(t *testing.T) {
	var pool contactEquationPool
	b1 := NewBody(BodyOptions{Mass: 1})
	b2 := NewBody(BodyOptions{Mass: 1})

	c1 := pool.get(b1, b2)
	c1.Ri = Vec3{9, 9, 9}
	pool.release([]*ContactEquation{c1})

	c2 := pool.get(b2, b1)
	assert.Same(t, c1, c2)
	// Поля сброшены при выдаче.
	assert.Equal(t, Vec3{}, c2.Ri)
	assert.Same(t, b2, c2.Bi)
}
