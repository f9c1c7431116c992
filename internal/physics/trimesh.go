package physics

import "math"

// Trimesh - произвольная треугольная сетка. Треугольники индексируются
// AABB-октодеревом, так что narrowphase и raycast проверяют только
// треугольники из пересекаемых узлов.
type Trimesh struct {
	opts ShapeOptions

	// Vertices - плоский массив координат (x0,y0,z0, x1,y1,z1, ...).
	Vertices []float64
	// Indices - тройки индексов вершин на треугольник.
	Indices []int
	// Normals - нормали треугольников, плоский массив.
	Normals []float64

	Scale Vec3

	localAABB AABB
	tree      *octreeNode
}

// NewTrimesh создает сетку и строит вспомогательные структуры.
func NewTrimesh(vertices []float64, indices []int) *Trimesh {
	t := &Trimesh{
		opts:     newShapeOptions(),
		Vertices: vertices,
		Indices:  indices,
		Scale:    Vec3{1, 1, 1},
	}
	t.UpdateNormals()
	t.computeLocalAABB()
	t.UpdateBoundingSphereRadius()
	t.updateTree()
	return t
}

func (t *Trimesh) Type() ShapeType        { return ShapeTrimesh }
func (t *Trimesh) Options() *ShapeOptions { return &t.opts }

// NumTriangles возвращает число треугольников.
func (t *Trimesh) NumTriangles() int { return len(t.Indices) / 3 }

// GetVertex возвращает вершину с учетом масштаба.
func (t *Trimesh) GetVertex(i int) Vec3 {
	return Vec3{
		t.Vertices[3*i] * t.Scale[0],
		t.Vertices[3*i+1] * t.Scale[1],
		t.Vertices[3*i+2] * t.Scale[2],
	}
}

// GetTriangleVertices возвращает три вершины треугольника i.
func (t *Trimesh) GetTriangleVertices(i int) (Vec3, Vec3, Vec3) {
	return t.GetVertex(t.Indices[3*i]),
		t.GetVertex(t.Indices[3*i+1]),
		t.GetVertex(t.Indices[3*i+2])
}

// GetNormal возвращает нормаль треугольника i.
func (t *Trimesh) GetNormal(i int) Vec3 {
	return Vec3{t.Normals[3*i], t.Normals[3*i+1], t.Normals[3*i+2]}
}

// UpdateNormals пересчитывает нормали треугольников.
func (t *Trimesh) UpdateNormals() {
	t.Normals = make([]float64, len(t.Indices))
	for i := 0; i < t.NumTriangles(); i++ {
		va, vb, vc := t.GetTriangleVertices(i)
		n := vb.Sub(va).Cross(vc.Sub(va))
		l := n.Len()
		if l > 1e-12 {
			n = n.Mul(1 / l)
		}
		t.Normals[3*i] = n[0]
		t.Normals[3*i+1] = n[1]
		t.Normals[3*i+2] = n[2]
	}
}

func (t *Trimesh) computeLocalAABB() {
	t.localAABB = NewAABB()
	for i := 0; i < len(t.Vertices)/3; i++ {
		v := t.GetVertex(i)
		t.localAABB.Extend(AABB{Lower: v, Upper: v})
	}
}

func (t *Trimesh) UpdateBoundingSphereRadius() {
	max2 := 0.0
	for i := 0; i < len(t.Vertices)/3; i++ {
		if l2 := t.GetVertex(i).LenSqr(); l2 > max2 {
			max2 = l2
		}
	}
	t.opts.BoundingSphereRadius = math.Sqrt(max2)
}

func (t *Trimesh) Volume() float64 { return 0 }

// CalculateLocalInertia приближает инерцию параллелепипедом
// локального AABB.
func (t *Trimesh) CalculateLocalInertia(mass float64) Vec3 {
	he := t.localAABB.Upper.Sub(t.localAABB.Lower).Mul(0.5)
	return boxInertia(he, mass)
}

func (t *Trimesh) CalculateWorldAABB(position Vec3, quaternion Quat) AABB {
	corners := aabbCorners(t.localAABB)
	var aabb AABB
	aabb.SetFromPoints(corners[:], position, quaternion, 0)
	return aabb
}

func aabbCorners(a AABB) [8]Vec3 {
	l, u := a.Lower, a.Upper
	return [8]Vec3{
		{l[0], l[1], l[2]}, {u[0], l[1], l[2]}, {l[0], u[1], l[2]}, {u[0], u[1], l[2]},
		{l[0], l[1], u[2]}, {u[0], l[1], u[2]}, {l[0], u[1], u[2]}, {u[0], u[1], u[2]},
	}
}

// GetTrianglesInAABB возвращает индексы треугольников, чьи AABB
// пересекают локальный aabb.
func (t *Trimesh) GetTrianglesInAABB(aabb AABB) []int {
	if t.tree == nil {
		return nil
	}
	var result []int
	t.tree.aabbQuery(aabb, &result)
	return result
}

// updateTree перестраивает октодерево по AABB треугольников.
func (t *Trimesh) updateTree() {
	t.tree = &octreeNode{aabb: t.localAABB}
	for i := 0; i < t.NumTriangles(); i++ {
		va, vb, vc := t.GetTriangleVertices(i)
		tri := NewAABB()
		for _, v := range []Vec3{va, vb, vc} {
			tri.Extend(AABB{Lower: v, Upper: v})
		}
		t.tree.insert(i, tri, 0)
	}
}

const (
	octreeMaxDepth = 8
	octreeMaxItems = 8
)

// octreeNode - узел AABB-октодерева индексации треугольников.
type octreeNode struct {
	aabb     AABB
	items    []int
	itemAABB []AABB
	children []*octreeNode
}

func (n *octreeNode) insert(item int, aabb AABB, depth int) {
	if n.children == nil {
		if len(n.items) < octreeMaxItems || depth >= octreeMaxDepth {
			n.items = append(n.items, item)
			n.itemAABB = append(n.itemAABB, aabb)
			return
		}
		n.subdivide()
		items, aabbs := n.items, n.itemAABB
		n.items, n.itemAABB = nil, nil
		for i, it := range items {
			n.insertIntoChildren(it, aabbs[i], depth)
		}
	}
	n.insertIntoChildren(item, aabb, depth)
}

func (n *octreeNode) insertIntoChildren(item int, aabb AABB, depth int) {
	// Если элемент не помещается целиком ни в одного ребенка,
	// оставляем его в этом узле.
	for _, c := range n.children {
		if c.aabb.Contains(aabb) {
			c.insert(item, aabb, depth+1)
			return
		}
	}
	n.items = append(n.items, item)
	n.itemAABB = append(n.itemAABB, aabb)
}

func (n *octreeNode) subdivide() {
	mid := n.aabb.Lower.Add(n.aabb.Upper).Mul(0.5)
	n.children = make([]*octreeNode, 0, 8)
	for ix := 0; ix < 2; ix++ {
		for iy := 0; iy < 2; iy++ {
			for iz := 0; iz < 2; iz++ {
				lower := n.aabb.Lower
				upper := mid
				if ix == 1 {
					lower[0], upper[0] = mid[0], n.aabb.Upper[0]
				}
				if iy == 1 {
					lower[1], upper[1] = mid[1], n.aabb.Upper[1]
				}
				if iz == 1 {
					lower[2], upper[2] = mid[2], n.aabb.Upper[2]
				}
				n.children = append(n.children, &octreeNode{aabb: AABB{Lower: lower, Upper: upper}})
			}
		}
	}
}

func (n *octreeNode) aabbQuery(aabb AABB, result *[]int) {
	if !n.aabb.Overlaps(aabb) {
		return
	}
	for i, item := range n.items {
		if n.itemAABB[i].Overlaps(aabb) {
			*result = append(*result, item)
		}
	}
	for _, c := range n.children {
		c.aabbQuery(aabb, result)
	}
}
