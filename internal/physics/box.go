package physics

// Box - параллелепипед, заданный полуразмерами. Для SAT-коллизий
// хранит эквивалентное представление выпуклым многогранником
// (8 вершин, 6 граней, 3 главные оси).
type Box struct {
	opts        ShapeOptions
	HalfExtents Vec3

	// ConvexRepresentation используется narrowphase для box-box,
	// box-convex и box-heightfield пар.
	ConvexRepresentation *ConvexPolyhedron
}

// NewBox создает параллелепипед с заданными полуразмерами.
func NewBox(halfExtents Vec3) *Box {
	b := &Box{opts: newShapeOptions(), HalfExtents: halfExtents}
	b.updateConvexPolyhedronRepresentation()
	b.UpdateBoundingSphereRadius()
	return b
}

func (b *Box) Type() ShapeType        { return ShapeBox }
func (b *Box) Options() *ShapeOptions { return &b.opts }

// updateConvexPolyhedronRepresentation пересобирает выпуклый
// эквивалент. Вызывается при изменении полуразмеров.
func (b *Box) updateConvexPolyhedronRepresentation() {
	sx, sy, sz := b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]

	vertices := []Vec3{
		{-sx, -sy, -sz},
		{sx, -sy, -sz},
		{sx, sy, -sz},
		{-sx, sy, -sz},
		{-sx, -sy, sz},
		{sx, -sy, sz},
		{sx, sy, sz},
		{-sx, sy, sz},
	}

	faces := [][]int{
		{3, 2, 1, 0}, // -z
		{4, 5, 6, 7}, // +z
		{5, 4, 0, 1}, // -y
		{2, 3, 7, 6}, // +y
		{0, 4, 7, 3}, // -x
		{1, 2, 6, 5}, // +x
	}

	h := NewConvexPolyhedron(vertices, faces)
	h.UniqueAxes = []Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	// Представление разделяет фильтры и материал с самим боксом.
	h.opts.Material = b.opts.Material
	b.ConvexRepresentation = h
}

func (b *Box) Volume() float64 {
	return 8.0 * b.HalfExtents[0] * b.HalfExtents[1] * b.HalfExtents[2]
}

func (b *Box) CalculateLocalInertia(mass float64) Vec3 {
	return boxInertia(b.HalfExtents, mass)
}

// boxInertia - инерция сплошного параллелепипеда.
func boxInertia(halfExtents Vec3, mass float64) Vec3 {
	ex, ey, ez := 2*halfExtents[0], 2*halfExtents[1], 2*halfExtents[2]
	return Vec3{
		1.0 / 12.0 * mass * (ey*ey + ez*ez),
		1.0 / 12.0 * mass * (ex*ex + ez*ez),
		1.0 / 12.0 * mass * (ex*ex + ey*ey),
	}
}

func (b *Box) UpdateBoundingSphereRadius() {
	b.opts.BoundingSphereRadius = b.HalfExtents.Len()
}

func (b *Box) CalculateWorldAABB(position Vec3, quaternion Quat) AABB {
	var aabb AABB
	aabb.SetFromPoints(b.ConvexRepresentation.Vertices, position, quaternion, 0)
	return aabb
}
