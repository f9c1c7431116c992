package physics

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Subsystem - подсистема мира, вызываемая в начале каждого
// внутреннего шага (транспортные средства, пружины и т.п.).
type Subsystem interface {
	Update()
}

// WorldProfile - длительности фаз последнего внутреннего шага.
type WorldProfile struct {
	Broadphase  time.Duration
	Narrowphase time.Duration
	Solve       time.Duration
	Integrate   time.Duration
}

// WorldOptions - параметры создания мира. Нулевое значение дает мир
// без гравитации с наивной broadphase и решателем Гаусса-Зейделя.
type WorldOptions struct {
	Gravity    Vec3
	Broadphase Broadphase
	Solver     Solver
	AllowSleep bool

	// QuatNormalizeSkip - число шагов между нормализациями
	// кватернионов; QuatNormalizeFast включает приближенную
	// нормализацию.
	QuatNormalizeSkip int
	QuatNormalizeFast bool
}

// World владеет телами, материалами, ограничениями и прогоняет
// полный конвейер шага: силы, broadphase, narrowphase, решатель,
// интегрирование, события и сон.
type World struct {
	Gravity Vec3

	Broadphase Broadphase
	Solver     Solver

	Bodies      []*Body
	Constraints []Constraint
	Subsystems  []Subsystem

	Narrowphase *Narrowphase

	// Time - накопленное физическое время, Stepnumber - счетчик
	// внутренних шагов.
	Time       float64
	Stepnumber int

	AllowSleep bool

	QuatNormalizeSkip int
	QuatNormalizeFast bool

	DefaultMaterial        *Material
	DefaultContactMaterial *ContactMaterial

	// DoProfiling включает замеры фаз шага в Profile.
	DoProfiling bool
	Profile     WorldProfile

	// Contacts - контактные уравнения последнего шага.
	Contacts         []*ContactEquation
	frictionEquations []*FrictionEquation

	collisionMatrix         CollisionMatrix
	collisionMatrixPrevious CollisionMatrix

	bodyOverlapKeeper  OverlapKeeper
	shapeOverlapKeeper OverlapKeeper

	contactMaterials map[contactMaterialKey]*ContactMaterial

	idToBody  map[int]*Body
	idToShape map[int]Shape

	dt          float64
	accumulator float64

	bodiesRevision int

	// scratch-срезы broadphase, переживают шаги.
	pairsA []*Body
	pairsB []*Body

	addBodyListeners      []func(*Body)
	removeBodyListeners   []func(*Body)
	preStepListeners      []func()
	postStepListeners     []func()
	beginContactListeners []func(ContactEvent)
	endContactListeners   []func(ContactEvent)

	beginShapeContactListeners []func(ShapeContactEvent)
	endShapeContactListeners   []func(ShapeContactEvent)
}

// NewWorld создает мир.
func NewWorld(opts WorldOptions) *World {
	w := &World{
		Gravity:           opts.Gravity,
		Broadphase:        opts.Broadphase,
		Solver:            opts.Solver,
		AllowSleep:        opts.AllowSleep,
		QuatNormalizeSkip: opts.QuatNormalizeSkip,
		QuatNormalizeFast: opts.QuatNormalizeFast,
		contactMaterials:  make(map[contactMaterialKey]*ContactMaterial),
		idToBody:          make(map[int]*Body),
		idToShape:         make(map[int]Shape),
	}
	if w.Broadphase == nil {
		w.Broadphase = NewNaiveBroadphase()
	}
	if w.Solver == nil {
		w.Solver = NewGSSolver()
	}
	w.DefaultMaterial = NewMaterial("default")
	w.DefaultContactMaterial = NewContactMaterial(w.DefaultMaterial, w.DefaultMaterial)
	w.Narrowphase = NewNarrowphase(w)
	return w
}

// OnAddBody регистрирует слушателя добавления тела.
func (w *World) OnAddBody(fn func(*Body)) { w.addBodyListeners = append(w.addBodyListeners, fn) }

// OnRemoveBody регистрирует слушателя удаления тела.
func (w *World) OnRemoveBody(fn func(*Body)) {
	w.removeBodyListeners = append(w.removeBodyListeners, fn)
}

// OnPreStep вызывается перед решателем на каждом внутреннем шаге.
func (w *World) OnPreStep(fn func()) { w.preStepListeners = append(w.preStepListeners, fn) }

// OnPostStep вызывается в конце каждого внутреннего шага.
func (w *World) OnPostStep(fn func()) { w.postStepListeners = append(w.postStepListeners, fn) }

// OnBeginContact - пара тел начала соприкасаться на этом шаге.
func (w *World) OnBeginContact(fn func(ContactEvent)) {
	w.beginContactListeners = append(w.beginContactListeners, fn)
}

// OnEndContact - пара тел перестала соприкасаться на этом шаге.
func (w *World) OnEndContact(fn func(ContactEvent)) {
	w.endContactListeners = append(w.endContactListeners, fn)
}

// OnBeginShapeContact - пара форм начала соприкасаться.
func (w *World) OnBeginShapeContact(fn func(ShapeContactEvent)) {
	w.beginShapeContactListeners = append(w.beginShapeContactListeners, fn)
}

// OnEndShapeContact - пара форм перестала соприкасаться.
func (w *World) OnEndShapeContact(fn func(ShapeContactEvent)) {
	w.endShapeContactListeners = append(w.endShapeContactListeners, fn)
}

// AddBody добавляет тело в мир. Повторное добавление игнорируется.
func (w *World) AddBody(body *Body) {
	if body.Index >= 0 {
		return
	}
	body.Index = len(w.Bodies)
	w.Bodies = append(w.Bodies, body)
	w.bodiesRevision++

	w.idToBody[body.ID] = body
	for _, s := range body.Shapes {
		w.idToShape[s.Options().ID] = s
	}

	w.collisionMatrix.Reset(len(w.Bodies))
	w.collisionMatrixPrevious.Reset(len(w.Bodies))

	for _, fn := range w.addBodyListeners {
		fn(body)
	}
}

// RemoveBody убирает тело из мира и чинит индексы остальных.
func (w *World) RemoveBody(body *Body) {
	idx := body.Index
	if idx < 0 || idx >= len(w.Bodies) || w.Bodies[idx] != body {
		return
	}
	w.Bodies = append(w.Bodies[:idx], w.Bodies[idx+1:]...)
	for i := idx; i < len(w.Bodies); i++ {
		w.Bodies[i].Index = i
	}
	body.Index = -1
	w.bodiesRevision++

	delete(w.idToBody, body.ID)
	for _, s := range body.Shapes {
		delete(w.idToShape, s.Options().ID)
	}

	w.collisionMatrix.Reset(len(w.Bodies))
	w.collisionMatrixPrevious.Reset(len(w.Bodies))

	for _, fn := range w.removeBodyListeners {
		fn(body)
	}
}

// GetBodyByID возвращает тело по идентификатору.
func (w *World) GetBodyByID(id int) *Body { return w.idToBody[id] }

// GetShapeByID возвращает форму по идентификатору.
func (w *World) GetShapeByID(id int) Shape { return w.idToShape[id] }

// AddConstraint регистрирует ограничение.
func (w *World) AddConstraint(c Constraint) {
	w.Constraints = append(w.Constraints, c)
}

// RemoveConstraint убирает ограничение.
func (w *World) RemoveConstraint(c Constraint) {
	for i, existing := range w.Constraints {
		if existing == c {
			w.Constraints = append(w.Constraints[:i], w.Constraints[i+1:]...)
			return
		}
	}
}

// AddContactMaterial регистрирует поведение пары материалов.
func (w *World) AddContactMaterial(cm *ContactMaterial) {
	key := makeContactMaterialKey(cm.Materials[0].ID, cm.Materials[1].ID)
	w.contactMaterials[key] = cm
}

// GetContactMaterial возвращает контактный материал пары или nil.
func (w *World) GetContactMaterial(m1, m2 *Material) *ContactMaterial {
	return w.contactMaterials[makeContactMaterialKey(m1.ID, m2.ID)]
}

// Raycast трассирует луч в заданном режиме.
func (w *World) Raycast(from, to Vec3, opts RayOptions, mode RayMode, callback func(*RaycastResult), result *RaycastResult) bool {
	ray := NewRay(from, to)
	ray.Options = opts
	ray.Mode = mode
	ray.Callback = callback
	return ray.IntersectWorld(w, result)
}

// RaycastAny сообщает о первом попавшемся пересечении.
func (w *World) RaycastAny(from, to Vec3, opts RayOptions, result *RaycastResult) bool {
	return w.Raycast(from, to, opts, RayModeAny, nil, result)
}

// RaycastAll вызывает callback на каждое пересечение.
func (w *World) RaycastAll(from, to Vec3, opts RayOptions, callback func(*RaycastResult)) bool {
	var result RaycastResult
	return w.Raycast(from, to, opts, RayModeAll, callback, &result)
}

// RaycastClosest находит ближайшее пересечение.
func (w *World) RaycastClosest(from, to Vec3, opts RayOptions, result *RaycastResult) bool {
	return w.Raycast(from, to, opts, RayModeClosest, nil, result)
}

// Step продвигает симуляцию. При timeSinceLastCalled == 0 выполняется
// ровно один шаг dt. Иначе реальное время копится в аккумуляторе и
// разбивается на шаги dt (не больше maxSubSteps за вызов), а позы тел
// интерполируются в Interpolated-поля по остатку аккумулятора.
func (w *World) Step(dt, timeSinceLastCalled float64, maxSubSteps int) {
	if maxSubSteps <= 0 {
		maxSubSteps = 10
	}

	if timeSinceLastCalled == 0 {
		w.internalStep(dt)
		w.Time += dt
		return
	}

	w.accumulator += timeSinceLastCalled
	substeps := 0
	for w.accumulator >= dt && substeps < maxSubSteps {
		w.internalStep(dt)
		w.accumulator -= dt
		substeps++
	}
	// Отбрасываем необработанный излишек: иначе накопится спираль
	// смерти при медленных кадрах.
	if w.accumulator >= dt {
		w.accumulator = math.Mod(w.accumulator, dt)
	}

	t := w.accumulator / dt
	for _, b := range w.Bodies {
		b.InterpolatedPosition = b.PreviousPosition.Add(b.Position.Sub(b.PreviousPosition).Mul(t))
		b.InterpolatedQuaternion = mgl64.QuatSlerp(b.PreviousQuaternion, b.Quaternion, t)
	}
	w.Time += timeSinceLastCalled
}

func (w *World) internalStep(dt float64) {
	w.dt = dt

	// Гравитация: f += m*g для бодрствующей динамики.
	for _, b := range w.Bodies {
		if b.Type == BodyDynamic && b.SleepState != StateSleeping {
			b.Force = b.Force.Add(w.Gravity.Mul(b.Mass))
		}
	}

	for _, s := range w.Subsystems {
		s.Update()
	}

	// Broadphase.
	start := time.Now()
	w.pairsA = w.pairsA[:0]
	w.pairsB = w.pairsB[:0]
	w.pairsA, w.pairsB = w.Broadphase.CollisionPairs(w, w.pairsA, w.pairsB)
	if w.DoProfiling {
		w.Profile.Broadphase = time.Since(start)
	}

	// Пары, связанные ограничением без collideConnected, в
	// narrowphase не идут.
	for _, c := range w.Constraints {
		if c.CollideConnected() {
			continue
		}
		for i := len(w.pairsA) - 1; i >= 0; i-- {
			if (c.BodyA() == w.pairsA[i] && c.BodyB() == w.pairsB[i]) ||
				(c.BodyB() == w.pairsA[i] && c.BodyA() == w.pairsB[i]) {
				w.pairsA = append(w.pairsA[:i], w.pairsA[i+1:]...)
				w.pairsB = append(w.pairsB[:i], w.pairsB[i+1:]...)
			}
		}
	}

	// Narrowphase.
	start = time.Now()
	w.collisionMatrixPrevious, w.collisionMatrix = w.collisionMatrix, w.collisionMatrixPrevious
	w.collisionMatrix.Reset(len(w.Bodies))
	w.Contacts, w.frictionEquations = w.Narrowphase.GetContacts(w.pairsA, w.pairsB)
	if w.DoProfiling {
		w.Profile.Narrowphase = time.Since(start)
	}

	// Обработка контактов: пробуждение, матрица, события, решатель.
	for _, c := range w.Contacts {
		bi, bj := c.Bi, c.Bj

		w.wakeOnImpact(bi, bj)
		w.wakeOnImpact(bj, bi)

		w.bodyOverlapKeeper.Set(bi.ID, bj.ID)
		if c.Si != nil && c.Sj != nil {
			w.shapeOverlapKeeper.Set(c.Si.Options().ID, c.Sj.Options().ID)
		}

		w.collisionMatrix.Set(bi, bj, true)
		if !w.collisionMatrixPrevious.Get(bi, bj) {
			// Первое касание пары: события collide на обоих телах.
			for _, fn := range bi.collideListeners {
				fn(CollideEvent{Body: bj, Contact: c})
			}
			for _, fn := range bj.collideListeners {
				fn(CollideEvent{Body: bi, Contact: c})
			}
		}

		w.Solver.AddEquation(&c.Equation)
	}
	for _, f := range w.frictionEquations {
		w.Solver.AddEquation(&f.Equation)
	}

	w.emitContactEvents()

	for _, b := range w.Bodies {
		if b.wakeUpAfterNarrowphase {
			b.WakeUp()
		}
	}

	// Пользовательские ограничения.
	for _, c := range w.Constraints {
		c.Update()
		for _, eq := range c.Equations() {
			eq.SetSpookParams(eq.Stiffness, eq.Relaxation, dt)
			w.Solver.AddEquation(eq)
		}
	}

	// Решатель.
	start = time.Now()
	w.Solver.Solve(dt, w)
	if w.DoProfiling {
		w.Profile.Solve = time.Since(start)
	}
	w.Solver.RemoveAllEquations()

	// Затухание скоростей: v *= (1-damping)^dt.
	for _, b := range w.Bodies {
		if b.Type != BodyDynamic || b.SleepState == StateSleeping {
			continue
		}
		b.Velocity = b.Velocity.Mul(math.Pow(1.0-b.LinearDamping, dt))
		b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1.0-b.AngularDamping, dt))
	}

	for _, fn := range w.preStepListeners {
		fn()
	}

	// Интегрирование.
	start = time.Now()
	quatNormalize := w.QuatNormalizeSkip == 0 || w.Stepnumber%(w.QuatNormalizeSkip+1) == 0
	for _, b := range w.Bodies {
		b.Integrate(dt, quatNormalize, w.QuatNormalizeFast)
	}
	if w.DoProfiling {
		w.Profile.Integrate = time.Since(start)
	}
	w.Stepnumber++

	// Сброс сил.
	for _, b := range w.Bodies {
		b.Force = Vec3{}
		b.Torque = Vec3{}
	}

	if w.AllowSleep {
		for _, b := range w.Bodies {
			b.SleepTick(w.Time + dt)
		}
	}

	for _, fn := range w.postStepListeners {
		fn()
	}
}

// wakeOnImpact будит спящее тело bi, если столкнувшееся с ним bj
// движется заметно быстрее порога сна.
func (w *World) wakeOnImpact(bi, bj *Body) {
	if !bi.AllowSleep || bi.Type != BodyDynamic ||
		bi.SleepState != StateSleeping || bj.SleepState != StateAwake ||
		bj.Type == BodyStatic {
		return
	}
	speedSquared := bj.Velocity.LenSqr() + bj.AngularVelocity.LenSqr()
	limitSquared := bj.SleepSpeedLimit * bj.SleepSpeedLimit
	if speedSquared >= limitSquared*2 {
		bi.wakeUpAfterNarrowphase = true
	}
}

// emitContactEvents рассылает begin/end-события по диффу перекрытий
// текущего и предыдущего шагов.
func (w *World) emitContactEvents() {
	additions, removals := w.bodyOverlapKeeper.GetDiff()
	if len(w.beginContactListeners) > 0 {
		for _, key := range additions {
			i, j := SplitKey(key)
			bi, bj := w.idToBody[i], w.idToBody[j]
			if bi == nil || bj == nil {
				continue
			}
			for _, fn := range w.beginContactListeners {
				fn(ContactEvent{BodyA: bi, BodyB: bj})
			}
		}
	}
	if len(w.endContactListeners) > 0 {
		for _, key := range removals {
			i, j := SplitKey(key)
			bi, bj := w.idToBody[i], w.idToBody[j]
			if bi == nil || bj == nil {
				continue
			}
			for _, fn := range w.endContactListeners {
				fn(ContactEvent{BodyA: bi, BodyB: bj})
			}
		}
	}

	shapeAdditions, shapeRemovals := w.shapeOverlapKeeper.GetDiff()
	if len(w.beginShapeContactListeners) > 0 {
		for _, key := range shapeAdditions {
			i, j := SplitKey(key)
			si, sj := w.idToShape[i], w.idToShape[j]
			if si == nil || sj == nil {
				continue
			}
			for _, fn := range w.beginShapeContactListeners {
				fn(ShapeContactEvent{
					BodyA: si.Options().Body, BodyB: sj.Options().Body,
					ShapeA: si, ShapeB: sj,
				})
			}
		}
	}
	if len(w.endShapeContactListeners) > 0 {
		for _, key := range shapeRemovals {
			i, j := SplitKey(key)
			si, sj := w.idToShape[i], w.idToShape[j]
			if si == nil || sj == nil {
				continue
			}
			for _, fn := range w.endShapeContactListeners {
				fn(ShapeContactEvent{
					BodyA: si.Options().Body, BodyB: sj.Options().Body,
					ShapeA: si, ShapeB: sj,
				})
			}
		}
	}

	w.bodyOverlapKeeper.Tick()
	w.shapeOverlapKeeper.Tick()
}

// ClearForces обнуляет накопленные силы всех тел.
func (w *World) ClearForces() {
	for _, b := range w.Bodies {
		b.Force = Vec3{}
		b.Torque = Vec3{}
	}
}
