package physics

// ShapeType - битовая маска типа формы. Комбинация typeA|typeB дает
// уникальный ключ неупорядоченной пары типов для диспетчеризации
// в narrowphase.
type ShapeType int

const (
	ShapeSphere           ShapeType = 1
	ShapePlane            ShapeType = 2
	ShapeBox              ShapeType = 4
	ShapeConvexPolyhedron ShapeType = 16
	ShapeHeightfield      ShapeType = 32
	ShapeParticle         ShapeType = 64
	ShapeCylinder         ShapeType = 128
	ShapeTrimesh          ShapeType = 256
)

// Shape - общий интерфейс геометрической формы, прикрепляемой к телу.
type Shape interface {
	// Type возвращает битовый тип формы.
	Type() ShapeType

	// Options возвращает общие параметры формы (фильтры, материал,
	// радиус ограничивающей сферы).
	Options() *ShapeOptions

	// Volume возвращает объем формы.
	Volume() float64

	// CalculateLocalInertia вычисляет диагональ тензора инерции
	// в локальных координатах для заданной массы.
	CalculateLocalInertia(mass float64) Vec3

	// UpdateBoundingSphereRadius пересчитывает радиус ограничивающей
	// сферы. Обязателен к вызову после изменения геометрии.
	UpdateBoundingSphereRadius()

	// CalculateWorldAABB вычисляет мировой AABB формы в заданной
	// позиции и ориентации.
	CalculateWorldAABB(position Vec3, quaternion Quat) AABB
}

// ShapeOptions - параметры, общие для всех форм: фильтрация коллизий,
// материал и кэш радиуса ограничивающей сферы.
type ShapeOptions struct {
	ID                   int
	BoundingSphereRadius float64
	CollisionFilterGroup int
	CollisionFilterMask  int
	CollisionResponse    bool
	Material             *Material

	// Body - обратная ссылка на тело, к которому форма прикреплена.
	// Не владение: форма может переиспользоваться несколькими телами.
	Body *Body
}

var shapeIDCounter int

func newShapeOptions() ShapeOptions {
	shapeIDCounter++
	return ShapeOptions{
		ID:                   shapeIDCounter,
		CollisionFilterGroup: 1,
		CollisionFilterMask:  -1,
		CollisionResponse:    true,
	}
}
