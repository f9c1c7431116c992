package world

import (
	"x-phys/internal/physics"
)

// Vector3 - 3D вектор протокола мира.
type Vector3 struct {
	X, Y, Z float64
}

// Quaternion - вращение объекта в протоколе мира.
type Quaternion struct {
	X, Y, Z, W float64
}

// ShapeType - тип геометрии объекта.
type ShapeType int

const (
	SPHERE ShapeType = iota
	BOX
	TERRAIN
)

func (t ShapeType) String() string {
	switch t {
	case SPHERE:
		return "sphere"
	case BOX:
		return "box"
	case TERRAIN:
		return "terrain"
	}
	return "unknown"
}

// SphereData описывает сферу.
type SphereData struct {
	Radius float64
	Mass   float64
	Color  string
}

// BoxData описывает ящик.
type BoxData struct {
	Width  float64
	Height float64
	Depth  float64
	Mass   float64
	Color  string
}

// TerrainData описывает террейн в виде карты высот.
type TerrainData struct {
	Width      int // количество узлов сетки по X
	Depth      int // количество узлов сетки по Z
	HeightData []float64
	ScaleX     float64
	ScaleY     float64
	ScaleZ     float64
}

// ShapeDescriptor объединяет все варианты геометрии объекта.
type ShapeDescriptor struct {
	Type    ShapeType
	Sphere  *SphereData
	Box     *BoxData
	Terrain *TerrainData
}

// WorldObject - игровой объект мира: описание для клиента плюс
// ссылка на тело в физическом движке.
type WorldObject struct {
	ID       string
	Position Vector3
	Rotation Quaternion
	Velocity Vector3
	Color    string
	Shape    *ShapeDescriptor

	// Диапазон высот террейна (для клиентского рендера).
	MinHeight float64
	MaxHeight float64

	// Тело в движке. nil до создания через Factory.
	Body *physics.Body
}

// ToVec3 переводит вектор протокола в вектор движка.
func (v Vector3) ToVec3() physics.Vec3 {
	return physics.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 переводит вектор движка в вектор протокола.
func FromVec3(v physics.Vec3) Vector3 {
	return Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// ToQuat переводит вращение протокола в кватернион движка.
func (q Quaternion) ToQuat() physics.Quat {
	if q == (Quaternion{}) {
		return physics.QuatIdent()
	}
	return physics.NewQuat(q.X, q.Y, q.Z, q.W)
}

// FromQuat переводит кватернион движка во вращение протокола.
func FromQuat(q physics.Quat) Quaternion {
	return Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}
