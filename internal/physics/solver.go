package physics

// Solver решает накопленную систему уравнений ограничений и раздает
// результирующие скорости телам мира.
type Solver interface {
	// Solve возвращает число выполненных итераций.
	Solve(dt float64, world *World) int

	AddEquation(eq *Equation)
	RemoveAllEquations()
	Equations() []*Equation
}

// GSSolver - итеративный решатель Гаусса-Зейделя (sequential impulse).
// На каждой итерации уравнения обходятся по очереди, приращение
// импульса зажимается границами силы и сразу раскладывается по
// лямбда-скоростям тел.
type GSSolver struct {
	// Iterations - максимум итераций на шаг. Больше итераций -
	// жестче стеки тел, дороже шаг.
	Iterations int

	// Tolerance - порог суммарного приращения, при котором решение
	// считается сошедшимся.
	Tolerance float64

	equations []*Equation

	invCs   []float64
	bs      []float64
	lambdas []float64
}

func NewGSSolver() *GSSolver {
	return &GSSolver{
		Iterations: 10,
		Tolerance:  1e-7,
	}
}

func (s *GSSolver) AddEquation(eq *Equation) {
	if eq.Enabled {
		s.equations = append(s.equations, eq)
	}
}

func (s *GSSolver) RemoveAllEquations() {
	s.equations = s.equations[:0]
}

func (s *GSSolver) Equations() []*Equation { return s.equations }

func (s *GSSolver) Solve(dt float64, world *World) int {
	equations := s.equations
	nEq := len(equations)
	bodies := world.Bodies
	h := dt

	if nEq == 0 {
		return 0
	}

	// Подготовка тел: сброс лямбда-скоростей и solve-копий массы.
	for _, b := range bodies {
		b.vlambda = Vec3{}
		b.wlambda = Vec3{}
		b.updateSolveMassProperties()
	}

	if cap(s.invCs) < nEq {
		s.invCs = make([]float64, nEq)
		s.bs = make([]float64, nEq)
		s.lambdas = make([]float64, nEq)
	}
	invCs := s.invCs[:nEq]
	bs := s.bs[:nEq]
	lambdas := s.lambdas[:nEq]

	for i, eq := range equations {
		lambdas[i] = 0
		bs[i] = eq.ComputeB(h)
		invCs[i] = 1.0 / eq.ComputeC()
	}

	tolSquared := s.Tolerance * s.Tolerance
	iter := 0
	for iter = 0; iter < s.Iterations; iter++ {
		deltaLambdaTotal := 0.0

		for j, eq := range equations {
			// Итерация Гаусса-Зейделя с проекцией на границы силы.
			lambda := lambdas[j]
			gWlambda := eq.ComputeGWlambda()
			deltaLambda := invCs[j] * (bs[j] - gWlambda - eq.Eps*lambda)

			if lambda+deltaLambda < eq.MinForce {
				deltaLambda = eq.MinForce - lambda
			} else if lambda+deltaLambda > eq.MaxForce {
				deltaLambda = eq.MaxForce - lambda
			}
			lambdas[j] += deltaLambda

			deltaLambdaTotal += abs(deltaLambda)
			eq.AddToWlambda(deltaLambda)
		}

		if deltaLambdaTotal*deltaLambdaTotal < tolSquared {
			iter++
			break
		}
	}

	// Перенос лямбда-скоростей в фактические скорости с учетом
	// пофакторных ограничений движения.
	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(vmul(b.vlambda, b.LinearFactor))
		b.AngularVelocity = b.AngularVelocity.Add(vmul(b.wlambda, b.AngularFactor))
	}

	// Множители ограничений: сила = лямбда / h.
	invH := 1.0 / h
	for i, eq := range equations {
		eq.Multiplier = lambdas[i] * invH
	}

	return iter
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
