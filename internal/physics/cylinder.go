package physics

import "math"

// Cylinder - цилиндр, аппроксимированный выпуклым многогранником.
// Ось направлена вдоль локальной Y, боковая поверхность разбита на
// numSegments граней. Все коллизии идут через convex-пути.
type Cylinder struct {
	*ConvexPolyhedron

	RadiusTop    float64
	RadiusBottom float64
	Height       float64
	NumSegments  int
}

// NewCylinder создает цилиндр (или усеченный конус при разных
// радиусах) с заданным числом сегментов.
func NewCylinder(radiusTop, radiusBottom, height float64, numSegments int) *Cylinder {
	if numSegments < 3 {
		numSegments = 3
	}

	n := numSegments
	vertices := make([]Vec3, 0, 2*n)
	bottom := make([]int, 0, n)
	top := make([]int, 0, n)

	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		cos, sin := math.Cos(theta), math.Sin(theta)
		vertices = append(vertices,
			Vec3{radiusBottom * cos, -height / 2, radiusBottom * sin},
			Vec3{radiusTop * cos, height / 2, radiusTop * sin},
		)
		bottom = append(bottom, 2*i)
		top = append(top, 2*(n-1-i)+1)
	}

	faces := make([][]int, 0, n+2)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		faces = append(faces, []int{2 * i, 2*i + 1, 2*j + 1, 2 * j})
	}
	faces = append(faces, bottom, top)

	return &Cylinder{
		ConvexPolyhedron: NewConvexPolyhedron(vertices, faces),
		RadiusTop:        radiusTop,
		RadiusBottom:     radiusBottom,
		Height:           height,
		NumSegments:      numSegments,
	}
}

func (c *Cylinder) Type() ShapeType { return ShapeCylinder }
