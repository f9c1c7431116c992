package physics

import "math"

// ConvexPolyhedron - выпуклый многогранник, заданный вершинами и
// гранями с обходом против часовой стрелки (нормали наружу).
// Основа для box-box, box-convex и convex-convex коллизий по теореме
// о разделяющей оси с отсечением граней.
type ConvexPolyhedron struct {
	opts ShapeOptions

	Vertices    []Vec3
	Faces       [][]int
	FaceNormals []Vec3

	// UniqueEdges - направления ребер без дубликатов, кандидаты
	// для осей-векторных произведений в SAT.
	UniqueEdges []Vec3

	// UniqueAxes - если заданы, заменяют полный перебор нормалей
	// граней (у куба всего три главных оси).
	UniqueAxes []Vec3

	localAABB AABB
}

// ConvexContactPoint - точка контактного многообразия, результат
// отсечения инцидентной грани.
type ConvexContactPoint struct {
	Point  Vec3
	Normal Vec3
	Depth  float64
}

// NewConvexPolyhedron создает многогранник и вычисляет нормали,
// ребра и ограничивающие объемы.
func NewConvexPolyhedron(vertices []Vec3, faces [][]int) *ConvexPolyhedron {
	c := &ConvexPolyhedron{
		opts:     newShapeOptions(),
		Vertices: vertices,
		Faces:    faces,
	}
	c.computeNormals()
	c.computeEdges()
	c.computeLocalAABB()
	c.UpdateBoundingSphereRadius()
	return c
}

func (c *ConvexPolyhedron) Type() ShapeType        { return ShapeConvexPolyhedron }
func (c *ConvexPolyhedron) Options() *ShapeOptions { return &c.opts }

// computeNormals вычисляет нормали граней по первым трем вершинам.
// Вырожденные грани (нулевая площадь) получают нулевую нормаль и
// далее игнорируются эпсилон-проверками.
func (c *ConvexPolyhedron) computeNormals() {
	c.FaceNormals = make([]Vec3, len(c.Faces))
	for i, face := range c.Faces {
		if len(face) < 3 {
			continue
		}
		va := c.Vertices[face[0]]
		vb := c.Vertices[face[1]]
		vc := c.Vertices[face[2]]
		n := vc.Sub(vb).Cross(va.Sub(vb))
		l := n.Len()
		if l > 1e-12 {
			n = n.Mul(1 / l)
		} else {
			n = Vec3{}
		}
		c.FaceNormals[i] = n
	}
}

// computeEdges собирает уникальные направления ребер.
func (c *ConvexPolyhedron) computeEdges() {
	c.UniqueEdges = c.UniqueEdges[:0]
	for _, face := range c.Faces {
		n := len(face)
		for i := 0; i < n; i++ {
			edge := c.Vertices[face[(i+1)%n]].Sub(c.Vertices[face[i]])
			l := edge.Len()
			if l < 1e-12 {
				continue
			}
			edge = edge.Mul(1 / l)
			found := false
			for _, e := range c.UniqueEdges {
				// Параллельные ребра (в обе стороны) считаем одним.
				if math.Abs(e.Dot(edge)) > 1-1e-6 {
					found = true
					break
				}
			}
			if !found {
				c.UniqueEdges = append(c.UniqueEdges, edge)
			}
		}
	}
}

func (c *ConvexPolyhedron) computeLocalAABB() {
	c.localAABB.SetFromPoints(c.Vertices, Vec3{}, QuatIdent(), 0)
}

func (c *ConvexPolyhedron) UpdateBoundingSphereRadius() {
	max2 := 0.0
	for _, v := range c.Vertices {
		if l2 := v.LenSqr(); l2 > max2 {
			max2 = l2
		}
	}
	c.opts.BoundingSphereRadius = math.Sqrt(max2)
}

func (c *ConvexPolyhedron) CalculateWorldAABB(position Vec3, quaternion Quat) AABB {
	var aabb AABB
	aabb.SetFromPoints(c.Vertices, position, quaternion, 0)
	return aabb
}

// Volume вычисляется суммой объемов тетраэдров (веер из начала
// координат; начало предполагается внутри).
func (c *ConvexPolyhedron) Volume() float64 {
	vol := 0.0
	for _, face := range c.Faces {
		for i := 1; i+1 < len(face); i++ {
			va := c.Vertices[face[0]]
			vb := c.Vertices[face[i]]
			vc := c.Vertices[face[i+1]]
			vol += va.Dot(vb.Cross(vc)) / 6.0
		}
	}
	return math.Abs(vol)
}

// CalculateLocalInertia приближает инерцию параллелепипедом,
// описанным вокруг локального AABB.
func (c *ConvexPolyhedron) CalculateLocalInertia(mass float64) Vec3 {
	ex := c.localAABB.Upper[0] - c.localAABB.Lower[0]
	ey := c.localAABB.Upper[1] - c.localAABB.Lower[1]
	ez := c.localAABB.Upper[2] - c.localAABB.Lower[2]
	return Vec3{
		1.0 / 12.0 * mass * (ey*ey + ez*ez),
		1.0 / 12.0 * mass * (ex*ex + ez*ez),
		1.0 / 12.0 * mass * (ex*ex + ey*ey),
	}
}

// project проецирует многогранник на мировую ось axis.
// Возвращает (min, max) проекции.
func (c *ConvexPolyhedron) project(position Vec3, quaternion Quat, axis Vec3) (float64, float64) {
	// Вместо поворота всех вершин переводим ось в локальные
	// координаты и добавляем смещение начала.
	localAxis := quaternion.Conjugate().Rotate(axis)
	offset := position.Dot(axis)

	min := c.Vertices[0].Dot(localAxis)
	max := min
	for _, v := range c.Vertices[1:] {
		val := v.Dot(localAxis)
		if val > max {
			max = val
		}
		if val < min {
			min = val
		}
	}
	return min + offset, max + offset
}

// TestSepAxis проверяет ось axis как разделяющую для пары (c, hullB).
// Возвращает глубину перекрытия и false, если ось разделяющая.
func (c *ConvexPolyhedron) TestSepAxis(axis Vec3, hullB *ConvexPolyhedron, posA Vec3, quatA Quat, posB Vec3, quatB Quat) (float64, bool) {
	minA, maxA := c.project(posA, quatA, axis)
	minB, maxB := hullB.project(posB, quatB, axis)
	d0 := maxA - minB
	d1 := maxB - minA
	if d0 < 0 || d1 < 0 {
		return 0, false
	}
	if d0 < d1 {
		return d0, true
	}
	return d1, true
}

// FindSeparatingAxis ищет ось минимального перекрытия среди нормалей
// граней обоих тел и векторных произведений их ребер. Возвращает
// false, если найдена разделяющая ось (контакта нет).
func (c *ConvexPolyhedron) FindSeparatingAxis(hullB *ConvexPolyhedron, posA Vec3, quatA Quat, posB Vec3, quatB Quat) (Vec3, bool) {
	dmin := math.Inf(1)
	var target Vec3

	test := func(axis Vec3) bool {
		d, ok := c.TestSepAxis(axis, hullB, posA, quatA, posB, quatB)
		if !ok {
			return false
		}
		if d < dmin {
			dmin = d
			target = axis
		}
		return true
	}

	axesA := c.UniqueAxes
	if axesA == nil {
		axesA = c.FaceNormals
	}
	for _, n := range axesA {
		if almostZero(n, 1e-12) {
			continue
		}
		if !test(quatA.Rotate(n)) {
			return Vec3{}, false
		}
	}

	axesB := hullB.UniqueAxes
	if axesB == nil {
		axesB = hullB.FaceNormals
	}
	for _, n := range axesB {
		if almostZero(n, 1e-12) {
			continue
		}
		if !test(quatB.Rotate(n)) {
			return Vec3{}, false
		}
	}

	// Векторные произведения ребер. Почти параллельные ребра
	// пропускаем: ось вырождена.
	for _, ea := range c.UniqueEdges {
		worldEA := quatA.Rotate(ea)
		for _, eb := range hullB.UniqueEdges {
			worldEB := quatB.Rotate(eb)
			cross := worldEA.Cross(worldEB)
			if almostZero(cross, 1e-6) {
				continue
			}
			if !test(cross.Normalize()) {
				return Vec3{}, false
			}
		}
	}

	// Ось всегда направляем от B к A.
	if posB.Sub(posA).Dot(target) > 0 {
		target = target.Mul(-1)
	}
	return target, true
}

// ClipAgainstHull строит контактное многообразие: выбирает на hullB
// грань, наиболее антипараллельную разделяющей нормали (инцидентную),
// и отсекает ее боковыми плоскостями опорной грани этого тела.
func (c *ConvexPolyhedron) ClipAgainstHull(posA Vec3, quatA Quat, hullB *ConvexPolyhedron, posB Vec3, quatB Quat, separatingNormal Vec3, minDist, maxDist float64) []ConvexContactPoint {
	closestFaceB := -1
	dmax := math.Inf(-1)
	for i, n := range hullB.FaceNormals {
		d := quatB.Rotate(n).Dot(separatingNormal)
		if d > dmax {
			dmax = d
			closestFaceB = i
		}
	}
	if closestFaceB < 0 {
		return nil
	}

	face := hullB.Faces[closestFaceB]
	worldVertsB := make([]Vec3, len(face))
	for i, vi := range face {
		worldVertsB[i] = quatB.Rotate(hullB.Vertices[vi]).Add(posB)
	}

	return c.clipFaceAgainstHull(separatingNormal, posA, quatA, worldVertsB, minDist, maxDist)
}

// clipFaceAgainstHull отсекает мировые вершины инцидентной грани
// боковыми плоскостями опорной грани тела c (Sutherland-Hodgman),
// затем оставляет точки с глубиной в [minDist, maxDist].
func (c *ConvexPolyhedron) clipFaceAgainstHull(separatingNormal Vec3, posA Vec3, quatA Quat, worldVertsB []Vec3, minDist, maxDist float64) []ConvexContactPoint {
	// Опорная грань: нормаль наиболее антипараллельна разделяющей.
	closestFaceA := -1
	dmin := math.Inf(1)
	for i, n := range c.FaceNormals {
		d := quatA.Rotate(n).Dot(separatingNormal)
		if d < dmin {
			dmin = d
			closestFaceA = i
		}
	}
	if closestFaceA < 0 {
		return nil
	}

	polyA := c.Faces[closestFaceA]
	faceNormalA := c.FaceNormals[closestFaceA]

	in := append([]Vec3(nil), worldVertsB...)
	var out []Vec3

	for e := 0; e < len(polyA); e++ {
		a := c.Vertices[polyA[e]]
		b := c.Vertices[polyA[(e+1)%len(polyA)]]

		worldEdge := quatA.Rotate(a.Sub(b))
		worldFaceNormal := quatA.Rotate(faceNormalA)

		planeNormal := worldEdge.Cross(worldFaceNormal).Mul(-1)
		worldA := quatA.Rotate(a).Add(posA)
		planeConst := -worldA.Dot(planeNormal)

		out = clipFaceAgainstPlane(in, out[:0], planeNormal, planeConst)
		in, out = out, in
	}

	// Плоскость опорной грани в мире: n·x + planeEq = 0.
	localPlaneEq := -faceNormalA.Dot(c.Vertices[polyA[0]])
	planeNormalWS := quatA.Rotate(faceNormalA)
	planeEqWS := localPlaneEq - planeNormalWS.Dot(posA)

	var result []ConvexContactPoint
	for _, p := range in {
		depth := planeNormalWS.Dot(p) + planeEqWS
		if depth <= minDist {
			depth = minDist
		}
		if depth <= maxDist {
			result = append(result, ConvexContactPoint{
				Point:  p,
				Normal: planeNormalWS,
				Depth:  depth,
			})
		}
	}
	return result
}

// clipFaceAgainstPlane - один проход Sutherland-Hodgman: отсечение
// полигона плоскостью n·x + planeConstant = 0 (остается сторона < 0).
func clipFaceAgainstPlane(in, out []Vec3, planeNormal Vec3, planeConstant float64) []Vec3 {
	if len(in) < 2 {
		return out
	}

	first := in[len(in)-1]
	dFirst := planeNormal.Dot(first) + planeConstant

	for _, last := range in {
		dLast := planeNormal.Dot(last) + planeConstant
		if dFirst < 0 {
			if dLast < 0 {
				out = append(out, last)
			} else {
				t := dFirst / (dFirst - dLast)
				out = append(out, first.Add(last.Sub(first).Mul(t)))
			}
		} else if dLast < 0 {
			t := dFirst / (dFirst - dLast)
			out = append(out, first.Add(last.Sub(first).Mul(t)))
			out = append(out, last)
		}
		first = last
		dFirst = dLast
	}
	return out
}

// PointIsInside проверяет, лежит ли мировая точка внутри многогранника.
func (c *ConvexPolyhedron) PointIsInside(p Vec3, position Vec3, quaternion Quat) bool {
	local := quaternion.Conjugate().Rotate(p.Sub(position))
	for i, face := range c.Faces {
		if len(face) == 0 {
			continue
		}
		n := c.FaceNormals[i]
		if n.Dot(local.Sub(c.Vertices[face[0]])) > 0 {
			return false
		}
	}
	return true
}
