package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNarrowphaseWorld() (*World, *Narrowphase) {
	w := NewWorld(WorldOptions{Gravity: Vec3{0, 0, -9.8}})
	w.dt = 1.0 / 60.0
	return w, w.Narrowphase
}

func TestSphereSphereContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	b1 := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0}})
	b1.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{1.5, 0, 0}})
	b2.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, frictions := np.GetContacts([]*Body{b1}, []*Body{b2})
	require.Len(t, contacts, 1)

	c := contacts[0]
	assert.InDelta(t, 1.0, c.Ni[0], 1e-12)
	// Точки контакта на поверхностях сфер.
	assert.InDelta(t, 1.0, c.Ri[0], 1e-12)
	assert.InDelta(t, -1.0, c.Rj[0], 1e-12)

	// Две касательные трения на контакт.
	require.Len(t, frictions, 2)
	for _, f := range frictions {
		assert.InDelta(t, 0.0, f.T.Dot(c.Ni), 1e-9)
	}
}

func TestSphereSphereNoContactWhenApart(t *testing.T) {
	w, np := newNarrowphaseWorld()

	b1 := NewBody(BodyOptions{Mass: 1})
	b1.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{3, 0, 0}})
	b2.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, _ := np.GetContacts([]*Body{b1}, []*Body{b2})
	assert.Empty(t, contacts)
}

func TestSpherePlaneContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	sphere := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0.5}})
	sphere.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	plane := NewBody(BodyOptions{Mass: 0})
	plane.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(sphere)
	w.AddBody(plane)

	contacts, _ := np.GetContacts([]*Body{sphere}, []*Body{plane})
	require.Len(t, contacts, 1)

	c := contacts[0]
	// Нормаль от сферы к плоскости: вниз.
	assert.InDelta(t, -1.0, c.Ni[2], 1e-12)
	// Проникновение: g < 0.
	g := c.Ni.Dot(c.Bj.Position.Add(c.Rj).Sub(c.Bi.Position).Sub(c.Ri))
	assert.Less(t, g, 0.0)
}

func TestBoxPlaneContactManifold(t *testing.T) {
	w, np := newNarrowphaseWorld()

	box := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0.9}})
	box.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
	plane := NewBody(BodyOptions{Mass: 0})
	plane.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(box)
	w.AddBody(plane)

	contacts, _ := np.GetContacts([]*Body{plane}, []*Body{box})
	// Все четыре нижних угла куба под плоскостью.
	require.Len(t, contacts, 4)
	for _, c := range contacts {
		assert.InDelta(t, 1.0, c.Ni[2], 1e-12)
	}
}

func TestBoxBoxContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	b1 := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0}})
	b1.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 1.8}})
	b2.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, _ := np.GetContacts([]*Body{b1}, []*Body{b2})
	require.NotEmpty(t, contacts)
	for _, c := range contacts {
		// Нормаль вдоль оси разведения кубов.
		assert.InDelta(t, 1.0, math.Abs(c.Ni[2]), 1e-9)
	}
}

func TestBoxBoxSeparated(t *testing.T) {
	w, np := newNarrowphaseWorld()

	b1 := NewBody(BodyOptions{Mass: 1})
	b1.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 2.5}})
	b2.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, _ := np.GetContacts([]*Body{b1}, []*Body{b2})
	assert.Empty(t, contacts)
}

func TestSphereBoxContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	sphere := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 1.8}})
	sphere.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	box := NewBody(BodyOptions{Mass: 0})
	box.AddShape(NewBox(Vec3{1, 1, 1}), Vec3{}, QuatIdent())
	w.AddBody(sphere)
	w.AddBody(box)

	contacts, _ := np.GetContacts([]*Body{sphere}, []*Body{box})
	require.Len(t, contacts, 1)
	// Сфера над верхней гранью: нормаль вниз (от сферы к кубу).
	assert.InDelta(t, -1.0, contacts[0].Ni[2], 1e-9)
}

func TestSphereParticleContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	sphere := NewBody(BodyOptions{Mass: 1})
	sphere.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	particle := NewBody(BodyOptions{Mass: 1, Position: Vec3{0.5, 0, 0}})
	particle.AddShape(NewParticle(), Vec3{}, QuatIdent())
	w.AddBody(sphere)
	w.AddBody(particle)

	contacts, _ := np.GetContacts([]*Body{sphere}, []*Body{particle})
	require.Len(t, contacts, 1)
	assert.InDelta(t, 1.0, contacts[0].Ni[0], 1e-12)
	assert.Equal(t, Vec3{}, contacts[0].Rj)
}

func TestCylinderDispatchesAsConvex(t *testing.T) {
	w, np := newNarrowphaseWorld()

	cyl := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0.8}})
	cyl.AddShape(NewCylinder(1, 1, 2, 12), Vec3{}, QuatIdent())
	plane := NewBody(BodyOptions{Mass: 0})
	plane.AddShape(NewPlane(), Vec3{}, QuatIdent())
	w.AddBody(cyl)
	w.AddBody(plane)

	contacts, _ := np.GetContacts([]*Body{cyl}, []*Body{plane})
	assert.NotEmpty(t, contacts)
}

func TestSphereHeightfieldContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	data := make([][]float64, 5)
	for i := range data {
		data[i] = make([]float64, 5)
	}
	hfBody := NewBody(BodyOptions{Mass: 0})
	hfBody.AddShape(NewHeightfield(data, 1), Vec3{}, QuatIdent())

	sphere := NewBody(BodyOptions{Mass: 1, Position: Vec3{2, 2, 0.5}})
	sphere.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(hfBody)
	w.AddBody(sphere)

	contacts, _ := np.GetContacts([]*Body{sphere}, []*Body{hfBody})
	require.NotEmpty(t, contacts)
	// В уравнении фигурирует само поле, а не временная колонна.
	assert.Equal(t, ShapeHeightfield, contacts[0].Sj.Type())
}

func TestSphereTrimeshContact(t *testing.T) {
	w, np := newNarrowphaseWorld()

	// Один треугольник в плоскости XY.
	mesh := NewTrimesh(
		[]float64{-5, -5, 0, 5, -5, 0, 0, 5, 0},
		[]int{0, 1, 2},
	)
	meshBody := NewBody(BodyOptions{Mass: 0})
	meshBody.AddShape(mesh, Vec3{}, QuatIdent())

	sphere := NewBody(BodyOptions{Mass: 1, Position: Vec3{0, 0, 0.5}})
	sphere.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(meshBody)
	w.AddBody(sphere)

	contacts, _ := np.GetContacts([]*Body{sphere}, []*Body{meshBody})
	require.Len(t, contacts, 1)
	assert.InDelta(t, -1.0, contacts[0].Ni[2], 1e-9)
}

func TestShapeCollisionFilter(t *testing.T) {
	w, np := newNarrowphaseWorld()

	b1 := NewBody(BodyOptions{Mass: 1})
	s1 := NewSphere(1)
	s1.Options().CollisionFilterGroup = 2
	s1.Options().CollisionFilterMask = 2
	b1.AddShape(s1, Vec3{}, QuatIdent())

	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{1, 0, 0}})
	s2 := NewSphere(1)
	s2.Options().CollisionFilterGroup = 4
	s2.Options().CollisionFilterMask = 4
	b2.AddShape(s2, Vec3{}, QuatIdent())

	w.AddBody(b1)
	w.AddBody(b2)

	contacts, _ := np.GetContacts([]*Body{b1}, []*Body{b2})
	assert.Empty(t, contacts)
}

func TestCollisionResponseFlagDisablesEquation(t *testing.T) {
	w, np := newNarrowphaseWorld()

	b1 := NewBody(BodyOptions{Mass: 1})
	b1.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{1, 0, 0}})
	b2.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b2.CollisionResponse = false
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, _ := np.GetContacts([]*Body{b1}, []*Body{b2})
	// Контакт зарегистрирован (для событий), но уравнение выключено.
	require.Len(t, contacts, 1)
	assert.False(t, contacts[0].Enabled)
}

func TestFrictionlessMaterialSkipsFrictionEquations(t *testing.T) {
	w, np := newNarrowphaseWorld()

	slippery := NewMaterial("slippery")
	cm := NewContactMaterial(slippery, slippery)
	cm.Friction = 0
	w.AddContactMaterial(cm)

	b1 := NewBody(BodyOptions{Mass: 1, Material: slippery})
	b1.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	b2 := NewBody(BodyOptions{Mass: 1, Position: Vec3{1, 0, 0}, Material: slippery})
	b2.AddShape(NewSphere(1), Vec3{}, QuatIdent())
	w.AddBody(b1)
	w.AddBody(b2)

	contacts, frictions := np.GetContacts([]*Body{b1}, []*Body{b2})
	require.Len(t, contacts, 1)
	assert.Empty(t, frictions)
}
