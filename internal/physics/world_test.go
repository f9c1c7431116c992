package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld() *World {
	return NewWorld(WorldOptions{Gravity: Vec3{0, 0, -9.8}})
}

func TestWorldAddRemoveBody(t *testing.T) {
	w := newTestWorld()

	var added, removed []*Body
	w.OnAddBody(func(b *Body) { added = append(added, b) })
	w.OnRemoveBody(func(b *Body) { removed = append(removed, b) })

	b1 := NewBody(BodyOptions{Mass: 1})
	b2 := NewBody(BodyOptions{Mass: 1})
	w.AddBody(b1)
	w.AddBody(b2)

	require.Len(t, w.Bodies, 2)
	assert.Equal(t, 0, b1.Index)
	assert.Equal(t, 1, b2.Index)
	assert.Len(t, added, 2)

	// Повторное добавление - no-op.
	w.AddBody(b1)
	assert.Len(t, w.Bodies, 2)

	w.RemoveBody(b1)
	require.Len(t, w.Bodies, 1)
	assert.Equal(t, 0, b2.Index)
	assert.Equal(t, -1, b1.Index)
	assert.Len(t, removed, 1)
	assert.Nil(t, w.GetBodyByID(b1.ID))
	assert.Same(t, b2, w.GetBodyByID(b2.ID))
}

func TestWorldStepAppliesGravity(t *testing.T) {
	w := newTestWorld()
	b := NewBody(BodyOptions{Mass: 2, NoDampingDefaults: true})
	b.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b)

	dt := 1.0 / 60.0
	w.Step(dt, 0, 0)

	assert.InDelta(t, -9.8*dt, b.Velocity[2], 1e-9)
	// Силы сброшены после шага.
	assert.Equal(t, Vec3{}, b.Force)
}

func TestWorldStepStaticBodyUnaffected(t *testing.T) {
	w := newTestWorld()
	b := NewBody(BodyOptions{Mass: 0})
	b.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(b)

	for i := 0; i < 10; i++ {
		w.Step(1.0/60.0, 0, 0)
	}
	assert.Equal(t, Vec3{}, b.Position)
	assert.Equal(t, Vec3{}, b.Velocity)
}

func TestWorldFixedStepAccumulator(t *testing.T) {
	w := newTestWorld()
	b := NewBody(BodyOptions{Mass: 1})
	b.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b)

	dt := 1.0 / 60.0

	// 2.5 кадра реального времени: два внутренних шага, остаток
	// в аккумуляторе и интерполяция поз.
	w.Step(dt, 2.5*dt, 10)
	assert.Equal(t, 2, w.Stepnumber)
	assert.InDelta(t, 2.5*dt, w.Time, 1e-12)

	// Интерполированная позиция между предыдущей и текущей.
	assert.GreaterOrEqual(t, b.InterpolatedPosition[2], b.Position[2])
	assert.LessOrEqual(t, b.InterpolatedPosition[2], b.PreviousPosition[2])
}

func TestWorldMaxSubSteps(t *testing.T) {
	w := newTestWorld()
	dt := 1.0 / 60.0

	// Огромный скачок времени не должен раскрутить больше maxSubSteps
	// внутренних шагов.
	w.Step(dt, 1.0, 3)
	assert.Equal(t, 3, w.Stepnumber)
	assert.Less(t, w.accumulator, dt)
}

func TestSphereDropOnPlane(t *testing.T) {
	w := newTestWorld()

	plane := NewBody(BodyOptions{Mass: 0})
	plane.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(plane)

	sphere := NewBody(BodyOptions{Mass: 5, Position: Vec3{0, 0, 5}})
	sphere.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(sphere)

	collided := false
	sphere.OnCollide(func(ev CollideEvent) {
		collided = true
		assert.Same(t, plane, ev.Body)
	})

	for i := 0; i < 300; i++ {
		w.Step(1.0/60.0, 0, 0)
	}

	assert.True(t, collided)
	// Сфера покоится на плоскости: центр на высоте радиуса.
	assert.InDelta(t, 1.0, sphere.Position[2], 0.05)
	assert.InDelta(t, 0.0, sphere.Velocity[2], 0.1)
}

func TestBeginEndContactEvents(t *testing.T) {
	w := newTestWorld()
	w.Gravity = Vec3{}

	b1 := NewBody(BodyOptions{Mass: 1, Position: Vec3{-5, 0, 0}, NoSleepDefaults: true})
	b1.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b1.Velocity = Vec3{1, 0, 0}
	w.AddBody(b1)

	b2 := NewBody(BodyOptions{Mass: 0, Position: Vec3{0, 0, 0}})
	b2.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b2)

	begin, end := 0, 0
	w.OnBeginContact(func(ev ContactEvent) { begin++ })
	w.OnEndContact(func(ev ContactEvent) { end++ })

	shapeBegin := 0
	w.OnBeginShapeContact(func(ev ShapeContactEvent) { shapeBegin++ })

	for i := 0; i < 600; i++ {
		w.Step(1.0/60.0, 0, 0)
	}

	// Сфера подлетела, коснулась и отлетела: ровно одно начало и
	// ровно одно окончание контакта.
	assert.Equal(t, 1, begin)
	assert.Equal(t, 1, end)
	assert.Equal(t, 1, shapeBegin)
}

func TestNoForcesIdempotence(t *testing.T) {
	w := NewWorld(WorldOptions{})
	b := NewBody(BodyOptions{Mass: 1, Position: Vec3{1, 2, 3}, NoDampingDefaults: true})
	b.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b)

	for i := 0; i < 100; i++ {
		w.Step(1.0/60.0, 0, 0)
	}

	// Без гравитации и скоростей тело не двигается.
	assert.InDelta(t, 1.0, b.Position[0], 1e-12)
	assert.InDelta(t, 2.0, b.Position[1], 1e-12)
	assert.InDelta(t, 3.0, b.Position[2], 1e-12)
}

func TestContactMaterialLookup(t *testing.T) {
	w := newTestWorld()

	ice := NewMaterial("ice")
	rubber := NewMaterial("rubber")
	cm := NewContactMaterial(ice, rubber)
	cm.Friction = 0.01
	w.AddContactMaterial(cm)

	assert.Same(t, cm, w.GetContactMaterial(ice, rubber))
	assert.Same(t, cm, w.GetContactMaterial(rubber, ice))
	assert.Nil(t, w.GetContactMaterial(ice, ice))
}

func TestBouncyContactMaterial(t *testing.T) {
	w := newTestWorld()

	ground := NewMaterial("ground")
	bouncy := NewMaterial("bouncy")
	cm := NewContactMaterial(ground, bouncy)
	cm.Restitution = 0.9
	w.AddContactMaterial(cm)

	plane := NewBody(BodyOptions{Mass: 0, Material: ground})
	plane.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(plane)

	ball := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 3}, Material: bouncy, NoSleepDefaults: true})
	ball.AddShape(NewSphere(0.5), Vec3{}, QuatIdent())
	w.AddBody(ball)

	maxAfterBounce := 0.0
	bounced := false
	for i := 0; i < 600; i++ {
		w.Step(1.0/60.0, 0, 0)
		if ball.Velocity[2] > 0.5 {
			bounced = true
		}
		if bounced && ball.Position[2] > maxAfterBounce {
			maxAfterBounce = ball.Position[2]
		}
	}

	assert.True(t, bounced)
	// После упругого отскока мяч поднимается ощутимо выше радиуса.
	assert.Greater(t, maxAfterBounce, 1.0)
}

func TestDistanceConstraint(t *testing.T) {
	w := NewWorld(WorldOptions{})

	b1 := NewBody(BodyOptions{Mass: 0, Position: Vec3{0, 0, 0}})
	b1.AddShape(NewSphere(0.1), Vec3{}, QuatIdent())
	w.AddBody(b1)

	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{2, 0, 0}, NoDampingDefaults: true})
	b2.AddShape(NewSphere(0.1), Vec3{}, QuatIdent())
	w.AddBody(b2)

	w.AddConstraint(NewDistanceConstraint(b1, b2, 2, 0))

	// Толкаем второе тело наружу; ограничение должно удержать
	// расстояние около двух.
	b2.Velocity = Vec3{5, 0, 0}
	for i := 0; i < 120; i++ {
		w.Step(1.0/60.0, 0, 0)
	}

	dist := b2.Position.Sub(b1.Position).Len()
	assert.InDelta(t, 2.0, dist, 0.1)
}

func TestSleepAndWake(t *testing.T) {
	w := newTestWorld()

	plane := NewBody(BodyOptions{Mass: 0})
	plane.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(plane)

	b := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 1}})
	b.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b)
	w.AllowSleep = true

	sleepy, slept, woke := 0, 0, 0
	b.OnSleepy(func() { sleepy++ })
	b.OnSleep(func() { slept++ })
	b.OnWakeUp(func() { woke++ })

	for i := 0; i < 300; i++ {
		w.Step(1.0/60.0, 0, 0)
	}

	require.Equal(t, StateSleeping, b.SleepState)
	assert.Equal(t, 1, sleepy)
	assert.Equal(t, 1, slept)

	// Спящее тело не интегрируется.
	z := b.Position[2]
	for i := 0; i < 60; i++ {
		w.Step(1.0/60.0, 0, 0)
	}
	assert.Equal(t, z, b.Position[2])

	b.WakeUp()
	assert.Equal(t, StateAwake, b.SleepState)
	assert.Equal(t, 1, woke)
}

func TestQuaternionStaysNormalized(t *testing.T) {
	for _, fast := range []bool{false, true} {
		w := NewWorld(WorldOptions{QuatNormalizeFast: fast})
		b := NewBody(BodyOptions{Mass: 1, NoDampingDefaults: true, NoSleepDefaults: true})
		b.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
		b.AngularVelocity = Vec3{1, 2, 3}
		w.AddBody(b)

		for i := 0; i < 500; i++ {
			w.Step(1.0/60.0, 0, 0)
		}

		norm := math.Sqrt(b.Quaternion.W*b.Quaternion.W + b.Quaternion.V.LenSqr())
		assert.InDelta(t, 1.0, norm, 1e-3)
	}
}

func TestRaycastClosest(t *testing.T) {
	w := newTestWorld()

	near := NewBody(BodyOptions{Mass: 0, Position: Vec3{5, 0, 0}})
	near.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(near)

	far := NewBody(BodyOptions{Mass: 0, Position: Vec3{10, 0, 0}})
	far.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(far)

	var result RaycastResult
	hit := w.RaycastClosest(Vec3{0, 0, 0}, Vec3{20, 0, 0}, DefaultRayOptions(), &result)

	require.True(t, hit)
	assert.Same(t, near, result.Body)
	assert.InDelta(t, 4.0, result.Distance, 1e-9)
	assert.InDelta(t, -1.0, result.HitNormalWorld[0], 1e-9)
}

func TestRaycastAllAndAny(t *testing.T) {
	w := newTestWorld()

	for _, x := range []float64{3, 6, 9} {
		b := NewBody(BodyOptions{Mass: 0, Position: Vec3{x, 0, 0}})
		b.AddShape(NewSphere(0.5), Vec3{}, QuatIdent())
		w.AddBody(b)
	}

	hits := 0
	w.RaycastAll(Vec3{0, 0, 0}, Vec3{20, 0, 0}, DefaultRayOptions(), func(r *RaycastResult) {
		hits++
	})
	// Вход и выход из каждой из трех сфер.
	assert.Equal(t, 6, hits)

	var result RaycastResult
	assert.True(t, w.RaycastAny(Vec3{0, 0, 0}, Vec3{20, 0, 0}, DefaultRayOptions(), &result))
	assert.False(t, w.RaycastAny(Vec3{0, 0, 5}, Vec3{20, 0, 5}, DefaultRayOptions(), &result))
}
