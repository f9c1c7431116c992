package physics

// BodyType - кинематический класс тела.
type BodyType int

const (
	// BodyDynamic - тело с массой, движется под действием сил.
	BodyDynamic BodyType = 1
	// BodyStatic - неподвижное тело с нулевой обратной массой.
	BodyStatic BodyType = 2
	// BodyKinematic - тело движется по заданной скорости, но не
	// реагирует на силы.
	BodyKinematic BodyType = 4
)

// SleepState - состояние механизма засыпания тела.
type SleepState int

const (
	StateAwake SleepState = iota
	StateSleepy
	StateSleeping
)

// BodyOptions - параметры создания тела.
type BodyOptions struct {
	Mass            float64
	Type            BodyType // 0: выводится из массы
	Position        Vec3
	Velocity        Vec3
	Quaternion      Quat // нулевое значение заменяется единичным
	AngularVelocity Vec3
	Material        *Material
	LinearDamping   float64
	AngularDamping  float64
	FixedRotation   bool
	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64
	Shape           Shape

	CollisionFilterGroup int
	CollisionFilterMask  int

	// NoSleepDefaults: если false, выставляются значения по
	// умолчанию (AllowSleep=true, лимиты 0.1 и 1).
	NoSleepDefaults bool

	// NoDampingDefaults: если false, затухание по умолчанию 0.01.
	NoDampingDefaults bool
}

// Body - твердое тело: масса, позиция, ориентация, скорости,
// аккумуляторы сил и набор прикрепленных форм.
type Body struct {
	ID    int
	Index int // позиция в списке тел мира, -1 вне мира
	World *World

	Type BodyType

	Mass         float64
	InvMass      float64
	InvMassSolve float64

	Material *Material

	Position             Vec3
	PreviousPosition     Vec3
	InterpolatedPosition Vec3
	InitPosition         Vec3

	Velocity     Vec3
	InitVelocity Vec3

	Force  Vec3
	Torque Vec3

	Quaternion             Quat
	PreviousQuaternion     Quat
	InterpolatedQuaternion Quat
	InitQuaternion         Quat

	AngularVelocity     Vec3
	InitAngularVelocity Vec3

	LinearDamping  float64
	AngularDamping float64
	LinearFactor   Vec3
	AngularFactor  Vec3

	FixedRotation bool

	CollisionFilterGroup int
	CollisionFilterMask  int
	CollisionResponse    bool

	Shapes            []Shape
	ShapeOffsets      []Vec3
	ShapeOrientations []Quat

	Inertia              Vec3
	InvInertia           Vec3
	InvInertiaWorld      Mat3
	InvInertiaSolve      Vec3
	InvInertiaWorldSolve Mat3

	AllowSleep      bool
	SleepState      SleepState
	SleepSpeedLimit float64
	SleepTimeLimit  float64

	timeLastSleepy         float64
	wakeUpAfterNarrowphase bool

	BoundingRadius  float64
	AABB            AABB
	AABBNeedsUpdate bool

	// Аккумуляторы лямбда-скоростей решателя (на один проход solve).
	vlambda Vec3
	wlambda Vec3

	collideListeners []func(CollideEvent)
	wakeUpListeners  []func()
	sleepyListeners  []func()
	sleepListeners   []func()
}

var bodyIDCounter int

// NewBody создает тело. Тип по умолчанию выводится из массы:
// mass > 0 - динамическое, иначе статическое.
func NewBody(opts BodyOptions) *Body {
	bodyIDCounter++

	bodyType := opts.Type
	if bodyType == 0 {
		if opts.Mass > 0 {
			bodyType = BodyDynamic
		} else {
			bodyType = BodyStatic
		}
	}

	quat := opts.Quaternion
	if quat == (Quat{}) {
		quat = QuatIdent()
	}

	linearDamping := opts.LinearDamping
	angularDamping := opts.AngularDamping
	if !opts.NoDampingDefaults {
		if linearDamping == 0 {
			linearDamping = 0.01
		}
		if angularDamping == 0 {
			angularDamping = 0.01
		}
	}

	allowSleep := opts.AllowSleep
	sleepSpeedLimit := opts.SleepSpeedLimit
	sleepTimeLimit := opts.SleepTimeLimit
	if !opts.NoSleepDefaults {
		allowSleep = true
		if sleepSpeedLimit == 0 {
			sleepSpeedLimit = 0.1
		}
		if sleepTimeLimit == 0 {
			sleepTimeLimit = 1
		}
	}

	group := opts.CollisionFilterGroup
	if group == 0 {
		group = 1
	}
	mask := opts.CollisionFilterMask
	if mask == 0 {
		mask = -1
	}

	b := &Body{
		ID:    bodyIDCounter,
		Index: -1,
		Type:  bodyType,

		Mass:     opts.Mass,
		Material: opts.Material,

		Position:             opts.Position,
		PreviousPosition:     opts.Position,
		InterpolatedPosition: opts.Position,
		InitPosition:         opts.Position,

		Velocity:     opts.Velocity,
		InitVelocity: opts.Velocity,

		Quaternion:             quat,
		PreviousQuaternion:     quat,
		InterpolatedQuaternion: quat,
		InitQuaternion:         quat,

		AngularVelocity:     opts.AngularVelocity,
		InitAngularVelocity: opts.AngularVelocity,

		LinearDamping:  linearDamping,
		AngularDamping: angularDamping,
		LinearFactor:   Vec3{1, 1, 1},
		AngularFactor:  Vec3{1, 1, 1},

		FixedRotation: opts.FixedRotation,

		CollisionFilterGroup: group,
		CollisionFilterMask:  mask,
		CollisionResponse:    true,

		AllowSleep:      allowSleep,
		SleepState:      StateAwake,
		SleepSpeedLimit: sleepSpeedLimit,
		SleepTimeLimit:  sleepTimeLimit,

		InvInertiaWorld: Mat3{},
		AABBNeedsUpdate: true,
	}

	if opts.Shape != nil {
		b.AddShape(opts.Shape, Vec3{}, QuatIdent())
	}
	b.UpdateMassProperties()
	return b
}

// OnCollide регистрирует обработчик события контакта этого тела.
// Переданный CollideEvent действителен только внутри вызова.
func (b *Body) OnCollide(fn func(CollideEvent)) { b.collideListeners = append(b.collideListeners, fn) }

// OnWakeUp регистрирует обработчик пробуждения.
func (b *Body) OnWakeUp(fn func()) { b.wakeUpListeners = append(b.wakeUpListeners, fn) }

// OnSleepy регистрирует обработчик перехода в дремоту.
func (b *Body) OnSleepy(fn func()) { b.sleepyListeners = append(b.sleepyListeners, fn) }

// OnSleep регистрирует обработчик засыпания.
func (b *Body) OnSleep(fn func()) { b.sleepListeners = append(b.sleepListeners, fn) }

// WakeUp будит тело. Событие пробуждения отправляется ровно один раз
// на переход SLEEPING -> AWAKE.
func (b *Body) WakeUp() {
	prev := b.SleepState
	b.SleepState = StateAwake
	b.wakeUpAfterNarrowphase = false
	if prev == StateSleeping {
		for _, fn := range b.wakeUpListeners {
			fn()
		}
	}
}

// Sleep принудительно усыпляет тело и обнуляет скорости.
func (b *Body) Sleep() {
	b.SleepState = StateSleeping
	b.Velocity = Vec3{}
	b.AngularVelocity = Vec3{}
	b.wakeUpAfterNarrowphase = false
	for _, fn := range b.sleepListeners {
		fn()
	}
}

// IsAwake сообщает, бодрствует ли тело.
func (b *Body) IsAwake() bool { return b.SleepState == StateAwake }

// IsSleeping сообщает, спит ли тело.
func (b *Body) IsSleeping() bool { return b.SleepState == StateSleeping }

// SleepTick продвигает машину состояний сна: AWAKE -> SLEEPY при
// устойчиво низкой скорости, SLEEPY -> SLEEPING по таймауту,
// SLEEPY -> AWAKE при разгоне.
func (b *Body) SleepTick(time float64) {
	if !b.AllowSleep {
		return
	}

	speedSquared := b.Velocity.LenSqr() + b.AngularVelocity.LenSqr()
	speedLimitSquared := b.SleepSpeedLimit * b.SleepSpeedLimit

	switch {
	case b.SleepState == StateAwake && speedSquared < speedLimitSquared:
		b.SleepState = StateSleepy
		b.timeLastSleepy = time
		for _, fn := range b.sleepyListeners {
			fn()
		}
	case b.SleepState == StateSleepy && speedSquared > speedLimitSquared:
		b.WakeUp()
	case b.SleepState == StateSleepy && time-b.timeLastSleepy > b.SleepTimeLimit:
		b.Sleep()
	}
}

// updateSolveMassProperties обнуляет solve-копии обратной массы и
// инерции для спящих и кинематических тел.
func (b *Body) updateSolveMassProperties() {
	if b.SleepState == StateSleeping || b.Type == BodyKinematic {
		b.InvMassSolve = 0
		b.InvInertiaSolve = Vec3{}
		b.InvInertiaWorldSolve = Mat3{}
	} else {
		b.InvMassSolve = b.InvMass
		b.InvInertiaSolve = b.InvInertia
		b.InvInertiaWorldSolve = b.InvInertiaWorld
	}
}

// PointToLocalFrame переводит мировую точку в локальные координаты.
func (b *Body) PointToLocalFrame(worldPoint Vec3) Vec3 {
	return b.Quaternion.Conjugate().Rotate(worldPoint.Sub(b.Position))
}

// PointToWorldFrame переводит локальную точку в мировые координаты.
func (b *Body) PointToWorldFrame(localPoint Vec3) Vec3 {
	return b.Quaternion.Rotate(localPoint).Add(b.Position)
}

// VectorToLocalFrame переводит мировой вектор в локальный базис.
func (b *Body) VectorToLocalFrame(worldVector Vec3) Vec3 {
	return b.Quaternion.Conjugate().Rotate(worldVector)
}

// VectorToWorldFrame переводит локальный вектор в мировой базис.
func (b *Body) VectorToWorldFrame(localVector Vec3) Vec3 {
	return b.Quaternion.Rotate(localVector)
}

// AddShape прикрепляет форму со смещением и ориентацией в локальных
// координатах тела. Массивы смещений принадлежат телу; сама форма
// может разделяться несколькими телами.
func (b *Body) AddShape(shape Shape, offset Vec3, orientation Quat) *Body {
	if orientation == (Quat{}) {
		orientation = QuatIdent()
	}
	b.Shapes = append(b.Shapes, shape)
	b.ShapeOffsets = append(b.ShapeOffsets, offset)
	b.ShapeOrientations = append(b.ShapeOrientations, orientation)
	shape.Options().Body = b

	b.UpdateMassProperties()
	b.UpdateBoundingRadius()
	b.AABBNeedsUpdate = true
	return b
}

// UpdateBoundingRadius пересчитывает радиус ограничивающей сферы тела.
func (b *Body) UpdateBoundingRadius() {
	radius := 0.0
	for i, shape := range b.Shapes {
		shape.UpdateBoundingSphereRadius()
		offset := b.ShapeOffsets[i].Len()
		r := shape.Options().BoundingSphereRadius
		if offset+r > radius {
			radius = offset + r
		}
	}
	b.BoundingRadius = radius
}

// UpdateAABB пересчитывает мировой AABB тела как объединение AABB
// всех форм.
func (b *Body) UpdateAABB() {
	b.AABB = NewAABB()
	for i, shape := range b.Shapes {
		offset := b.Quaternion.Rotate(b.ShapeOffsets[i]).Add(b.Position)
		orientation := b.Quaternion.Mul(b.ShapeOrientations[i])
		b.AABB.Extend(shape.CalculateWorldAABB(offset, orientation))
	}
	b.AABBNeedsUpdate = false
}

// UpdateInertiaWorld переводит обратный тензор инерции в мировые
// координаты. При изотропной инерции матрица не зависит от поворота.
func (b *Body) UpdateInertiaWorld(force bool) {
	i := b.InvInertia
	if i[0] == i[1] && i[1] == i[2] && !force {
		// Для изотропной инерции мировой тензор диагонален и
		// постоянен, достаточно выставить его один раз.
		b.InvInertiaWorld = Mat3{i[0], 0, 0, 0, i[1], 0, 0, 0, i[2]}
		return
	}
	b.InvInertiaWorld = diagTransform(quatMat3(b.Quaternion), i)
}

// UpdateMassProperties пересчитывает обратную массу и тензор инерции.
// Одна форма без смещения дает точную инерцию; составное тело
// аппроксимируется параллелепипедом своего AABB.
func (b *Body) UpdateMassProperties() {
	if b.Mass > 0 {
		b.InvMass = 1 / b.Mass
	} else {
		b.InvMass = 0
	}

	if len(b.Shapes) == 1 && b.ShapeOffsets[0] == (Vec3{}) {
		b.Inertia = b.Shapes[0].CalculateLocalInertia(b.Mass)
	} else if len(b.Shapes) > 0 {
		savedPos, savedQuat := b.Position, b.Quaternion
		b.Position, b.Quaternion = Vec3{}, QuatIdent()
		b.UpdateAABB()
		he := b.AABB.Upper.Sub(b.AABB.Lower).Mul(0.5)
		b.Inertia = boxInertia(he, b.Mass)
		b.Position, b.Quaternion = savedPos, savedQuat
		b.AABBNeedsUpdate = true
	} else {
		b.Inertia = Vec3{}
	}

	fixed := b.FixedRotation
	for i := 0; i < 3; i++ {
		if b.Inertia[i] > 0 && !fixed {
			b.InvInertia[i] = 1 / b.Inertia[i]
		} else {
			b.InvInertia[i] = 0
		}
	}
	b.UpdateInertiaWorld(true)
}

// GetVelocityAtWorldPoint возвращает скорость точки тела в мире:
// v + w x r.
func (b *Body) GetVelocityAtWorldPoint(worldPoint Vec3) Vec3 {
	r := worldPoint.Sub(b.Position)
	return b.AngularVelocity.Cross(r).Add(b.Velocity)
}

// ApplyForce прикладывает мировую силу в точке relativePoint
// (вектор от центра масс в мировых координатах).
func (b *Body) ApplyForce(force, relativePoint Vec3) {
	if b.Type != BodyDynamic {
		return
	}
	b.Force = b.Force.Add(force)
	b.Torque = b.Torque.Add(relativePoint.Cross(force))
}

// ApplyLocalForce прикладывает силу, заданную в локальных координатах.
func (b *Body) ApplyLocalForce(localForce, localPoint Vec3) {
	if b.Type != BodyDynamic {
		return
	}
	b.ApplyForce(b.VectorToWorldFrame(localForce), b.VectorToWorldFrame(localPoint))
}

// ApplyTorque прикладывает мировой крутящий момент.
func (b *Body) ApplyTorque(torque Vec3) {
	if b.Type != BodyDynamic {
		return
	}
	b.Torque = b.Torque.Add(torque)
}

// ApplyImpulse мгновенно изменяет скорости тела импульсом в точке
// relativePoint. Спящее тело от импульса не просыпается само:
// будить должен вызывающий.
func (b *Body) ApplyImpulse(impulse, relativePoint Vec3) {
	if b.Type != BodyDynamic {
		return
	}
	b.Velocity = b.Velocity.Add(vmul(impulse.Mul(b.InvMass), b.LinearFactor))

	rotVelo := b.InvInertiaWorld.Mul3x1(relativePoint.Cross(impulse))
	b.AngularVelocity = b.AngularVelocity.Add(vmul(rotVelo, b.AngularFactor))
}

// ApplyLocalImpulse прикладывает импульс в локальных координатах.
func (b *Body) ApplyLocalImpulse(localImpulse, localPoint Vec3) {
	if b.Type != BodyDynamic {
		return
	}
	b.ApplyImpulse(b.VectorToWorldFrame(localImpulse), b.VectorToWorldFrame(localPoint))
}

// Integrate продвигает позицию и ориентацию тела на шаг dt по
// текущим скоростям и накопленным силам.
func (b *Body) Integrate(dt float64, quatNormalize, quatNormalizeFast bool) {
	b.PreviousPosition = b.Position
	b.PreviousQuaternion = b.Quaternion

	if !(b.Type == BodyDynamic || b.Type == BodyKinematic) || b.SleepState == StateSleeping {
		return
	}

	iMdt := b.InvMass * dt
	b.Velocity = b.Velocity.Add(vmul(b.Force.Mul(iMdt), b.LinearFactor))

	tau := b.InvInertiaWorld.Mul3x1(b.Torque).Mul(dt)
	b.AngularVelocity = b.AngularVelocity.Add(vmul(tau, b.AngularFactor))

	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.Quaternion = integrateQuat(b.Quaternion, b.AngularVelocity, dt, b.AngularFactor)

	if quatNormalize {
		if quatNormalizeFast {
			b.Quaternion = normalizeQuatFast(b.Quaternion)
		} else {
			b.Quaternion = normalizeQuat(b.Quaternion)
		}
	}

	b.AABBNeedsUpdate = true
	b.UpdateInertiaWorld(false)
}

// KineticEnergy возвращает кинетическую энергию поступательного
// движения тела.
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.LenSqr()
}
