package physics

import "math"

// Narrowphase превращает кандидатные пары тел в контактные уравнения.
// Для каждой пары форм выбирается процедура по битовой маске типов;
// меньший тип всегда слева, так что процедур вдвое меньше, чем пар
// типов. Уравнения берутся из пулов и живут один шаг.
type Narrowphase struct {
	world *World

	contactPool  contactEquationPool
	frictionPool frictionEquationPool

	// currentContactMaterial - материал обрабатываемой пары форм,
	// читается createContactEquation и фабрикой трения.
	currentContactMaterial *ContactMaterial

	// EnableFrictionReduction сворачивает трение многоточечного
	// контакта в одну усредненную пару уравнений.
	EnableFrictionReduction bool

	result         []*ContactEquation
	frictionResult []*FrictionEquation
}

func NewNarrowphase(world *World) *Narrowphase {
	return &Narrowphase{world: world}
}

// createContactEquation выдает уравнение из пула и заполняет общие
// поля. rsi/rsj подменяют формы в уравнении: нужен для полей высот,
// где реальная коллизия идет с временной выпуклой колонной.
func (n *Narrowphase) createContactEquation(bi, bj *Body, si, sj Shape, rsi, rsj Shape) *ContactEquation {
	c := n.contactPool.get(bi, bj)
	cm := n.currentContactMaterial

	c.Enabled = bi.CollisionResponse && bj.CollisionResponse &&
		si.Options().CollisionResponse && sj.Options().CollisionResponse
	c.Restitution = cm.Restitution
	c.SetSpookParams(cm.ContactEquationStiffness, cm.ContactEquationRelaxation, n.world.dt)

	c.Si = si
	if rsi != nil {
		c.Si = rsi
	}
	c.Sj = sj
	if rsj != nil {
		c.Sj = rsj
	}

	n.result = append(n.result, c)
	return c
}

// createFrictionEquationsFromContact добавляет два уравнения трения
// по касательным к нормали контакта. Сила проскальзывания берется из
// веса приведенной массы в поле тяжести мира.
func (n *Narrowphase) createFrictionEquationsFromContact(c *ContactEquation) bool {
	cm := n.currentContactMaterial
	friction := cm.Friction
	if friction <= 0 {
		return false
	}

	bi, bj := c.Bi, c.Bj
	mug := friction * n.world.Gravity.Len()
	reducedMass := bi.InvMass + bj.InvMass
	if reducedMass > 0 {
		reducedMass = 1.0 / reducedMass
	}
	slipForce := mug * reducedMass

	t1, t2 := tangents(c.Ni)
	for _, t := range []Vec3{t1, t2} {
		f := n.frictionPool.get(bi, bj, slipForce)
		f.Ri = c.Ri
		f.Rj = c.Rj
		f.T = t
		f.ContactEquation = c
		f.Enabled = c.Enabled
		f.SetSpookParams(cm.FrictionEquationStiffness, cm.FrictionEquationRelaxation, n.world.dt)
		n.frictionResult = append(n.frictionResult, f)
	}
	return true
}

// createFrictionFromAverage сводит трение последних numContacts
// контактов пары к одной усредненной паре уравнений.
func (n *Narrowphase) createFrictionFromAverage(numContacts int) {
	if numContacts == 0 {
		return
	}
	c := n.result[len(n.result)-1]
	if !n.createFrictionEquationsFromContact(c) || numContacts == 1 {
		return
	}

	f1 := n.frictionResult[len(n.frictionResult)-2]
	f2 := n.frictionResult[len(n.frictionResult)-1]

	var averageNormal, averageContactPointRi, averageContactPointRj Vec3
	for i := 0; i < numContacts; i++ {
		cc := n.result[len(n.result)-1-i]
		if cc.Bi == c.Bi {
			averageNormal = averageNormal.Add(cc.Ni)
			averageContactPointRi = averageContactPointRi.Add(cc.Ri)
			averageContactPointRj = averageContactPointRj.Add(cc.Rj)
		} else {
			averageNormal = averageNormal.Sub(cc.Ni)
			averageContactPointRi = averageContactPointRi.Add(cc.Rj)
			averageContactPointRj = averageContactPointRj.Add(cc.Ri)
		}
	}

	inv := 1.0 / float64(numContacts)
	averageNormal = normalizeOrZ(averageNormal)
	t1, t2 := tangents(averageNormal)
	for i, f := range []*FrictionEquation{f1, f2} {
		f.Ri = averageContactPointRi.Mul(inv)
		f.Rj = averageContactPointRj.Mul(inv)
		if i == 0 {
			f.T = t1
		} else {
			f.T = t2
		}
	}
}

// GetContacts обрабатывает пары (pairsA[k], pairsB[k]) и возвращает
// контактные уравнения и уравнения трения шага. Уравнения предыдущего
// шага возвращаются в пулы.
func (n *Narrowphase) GetContacts(pairsA, pairsB []*Body) ([]*ContactEquation, []*FrictionEquation) {
	n.contactPool.release(n.result)
	n.frictionPool.release(n.frictionResult)
	n.result = n.result[:0]
	n.frictionResult = n.frictionResult[:0]

	world := n.world
	for k := range pairsA {
		bi, bj := pairsA[k], pairsB[k]

		var bodyContactMaterial *ContactMaterial
		if bi.Material != nil && bj.Material != nil {
			bodyContactMaterial = world.GetContactMaterial(bi.Material, bj.Material)
		}

		for i, si := range bi.Shapes {
			xi := bi.Quaternion.Rotate(bi.ShapeOffsets[i]).Add(bi.Position)
			qi := bi.Quaternion.Mul(bi.ShapeOrientations[i])

			for j, sj := range bj.Shapes {
				xj := bj.Quaternion.Rotate(bj.ShapeOffsets[j]).Add(bj.Position)
				qj := bj.Quaternion.Mul(bj.ShapeOrientations[j])

				oi, oj := si.Options(), sj.Options()
				if oi.CollisionFilterGroup&oj.CollisionFilterMask == 0 ||
					oj.CollisionFilterGroup&oi.CollisionFilterMask == 0 {
					continue
				}
				if xi.Sub(xj).Len() > oi.BoundingSphereRadius+oj.BoundingSphereRadius {
					continue
				}

				var shapeContactMaterial *ContactMaterial
				if oi.Material != nil && oj.Material != nil {
					shapeContactMaterial = world.GetContactMaterial(oi.Material, oj.Material)
				}
				n.currentContactMaterial = world.DefaultContactMaterial
				if bodyContactMaterial != nil {
					n.currentContactMaterial = bodyContactMaterial
				}
				if shapeContactMaterial != nil {
					n.currentContactMaterial = shapeContactMaterial
				}

				n.resolve(si, sj, xi, xj, qi, qj, bi, bj)
			}
		}
	}

	return n.result, n.frictionResult
}

// resolve упорядочивает формы (меньший тип слева) и выбирает процедуру.
// Цилиндр с точки зрения диспетчеризации - выпуклый многогранник.
func (n *Narrowphase) resolve(si, sj Shape, xi, xj Vec3, qi, qj Quat, bi, bj *Body) {
	ti, tj := canonicalType(si), canonicalType(sj)
	if ti > tj {
		si, sj = sj, si
		xi, xj = xj, xi
		qi, qj = qj, qi
		bi, bj = bj, bi
		ti, tj = tj, ti
	}

	switch ti | tj {
	case ShapeSphere:
		n.sphereSphere(si.(*Sphere), sj.(*Sphere), xi, xj, bi, bj)
	case ShapeSphere | ShapePlane:
		n.spherePlane(si.(*Sphere), sj.(*Plane), xi, xj, qj, bi, bj)
	case ShapeSphere | ShapeBox:
		n.sphereConvex(si.(*Sphere), sj.(*Box).ConvexRepresentation, xi, xj, qj, bi, bj, nil, sj)
	case ShapeSphere | ShapeConvexPolyhedron:
		n.sphereConvex(si.(*Sphere), asConvex(sj), xi, xj, qj, bi, bj, nil, sj)
	case ShapeSphere | ShapeParticle:
		n.sphereParticle(si.(*Sphere), sj.(*Particle), xi, xj, bi, bj)
	case ShapeSphere | ShapeHeightfield:
		n.sphereHeightfield(si.(*Sphere), sj.(*Heightfield), xi, xj, qi, qj, bi, bj)
	case ShapeSphere | ShapeTrimesh:
		n.sphereTrimesh(si.(*Sphere), sj.(*Trimesh), xi, xj, qj, bi, bj)
	case ShapePlane | ShapeBox:
		n.planeConvex(si.(*Plane), sj.(*Box).ConvexRepresentation, xi, xj, qi, qj, bi, bj, sj)
	case ShapePlane | ShapeConvexPolyhedron:
		n.planeConvex(si.(*Plane), asConvex(sj), xi, xj, qi, qj, bi, bj, sj)
	case ShapePlane | ShapeParticle:
		n.planeParticle(si.(*Plane), sj.(*Particle), xi, xj, qi, bi, bj)
	case ShapePlane | ShapeTrimesh:
		n.planeTrimesh(si.(*Plane), sj.(*Trimesh), xi, xj, qi, qj, bi, bj)
	case ShapeBox, ShapeBox | ShapeConvexPolyhedron, ShapeConvexPolyhedron:
		n.convexConvex(toConvex(si), toConvex(sj), xi, xj, qi, qj, bi, bj, si, sj)
	case ShapeBox | ShapeParticle:
		n.convexParticle(toConvex(si), sj.(*Particle), xi, xj, qi, bi, bj, si)
	case ShapeConvexPolyhedron | ShapeParticle:
		n.convexParticle(toConvex(si), sj.(*Particle), xi, xj, qi, bi, bj, si)
	case ShapeBox | ShapeHeightfield, ShapeConvexPolyhedron | ShapeHeightfield:
		n.convexHeightfield(toConvex(si), sj.(*Heightfield), xi, xj, qi, qj, bi, bj, si)
	}
}

func canonicalType(s Shape) ShapeType {
	if s.Type() == ShapeCylinder {
		return ShapeConvexPolyhedron
	}
	return s.Type()
}

// asConvex достает многогранник из формы, объявляющей себя выпуклой.
func asConvex(s Shape) *ConvexPolyhedron {
	switch v := s.(type) {
	case *ConvexPolyhedron:
		return v
	case *Cylinder:
		return v.ConvexPolyhedron
	}
	return nil
}

// toConvex приводит любую convex-подобную форму к многограннику.
func toConvex(s Shape) *ConvexPolyhedron {
	if b, ok := s.(*Box); ok {
		return b.ConvexRepresentation
	}
	return asConvex(s)
}

// makeRelative переводит ri/rj из координат центров форм в координаты
// центров масс тел.
func makeRelative(r *ContactEquation, xi, xj Vec3) {
	r.Ri = r.Ri.Add(xi).Sub(r.Bi.Position)
	r.Rj = r.Rj.Add(xj).Sub(r.Bj.Position)
}

func normalizeOrZ(v Vec3) Vec3 {
	if v.LenSqr() < 1e-24 {
		return Vec3{0, 0, 1}
	}
	return v.Normalize()
}

func (n *Narrowphase) sphereSphere(si, sj *Sphere, xi, xj Vec3, bi, bj *Body) {
	r := si.Radius + sj.Radius
	if xj.Sub(xi).LenSqr() > r*r {
		return
	}

	c := n.createContactEquation(bi, bj, si, sj, nil, nil)
	c.Ni = normalizeOrZ(xj.Sub(xi))
	c.Ri = c.Ni.Mul(si.Radius)
	c.Rj = c.Ni.Mul(-sj.Radius)
	makeRelative(c, xi, xj)

	n.createFrictionEquationsFromContact(c)
}

func (n *Narrowphase) spherePlane(si *Sphere, sj *Plane, xi, xj Vec3, qj Quat, bi, bj *Body) {
	// Нормаль контакта - от сферы к плоскости.
	ni := sj.WorldNormal(qj).Mul(-1)

	planeToSphere := xi.Sub(xj)
	if -planeToSphere.Dot(ni) > si.Radius {
		return
	}

	c := n.createContactEquation(bi, bj, si, sj, nil, nil)
	c.Ni = ni
	c.Ri = ni.Mul(si.Radius)
	// Проекция центра сферы на плоскость.
	ortho := ni.Mul(ni.Dot(planeToSphere))
	c.Rj = planeToSphere.Sub(ortho)
	makeRelative(c, xi, xj)

	n.createFrictionEquationsFromContact(c)
}

func (n *Narrowphase) sphereParticle(si *Sphere, sj *Particle, xi, xj Vec3, bi, bj *Body) {
	d := xj.Sub(xi)
	if d.LenSqr() > si.Radius*si.Radius {
		return
	}

	c := n.createContactEquation(bi, bj, si, sj, nil, nil)
	c.Ni = normalizeOrZ(d)
	c.Ri = c.Ni.Mul(si.Radius)
	c.Rj = Vec3{}
	makeRelative(c, xi, xj)

	n.createFrictionEquationsFromContact(c)
}

func (n *Narrowphase) sphereConvex(si *Sphere, sj *ConvexPolyhedron, xi, xj Vec3, qj Quat, bi, bj *Body, rsi, rsj Shape) {
	radius := si.Radius

	// Углы.
	for _, v := range sj.Vertices {
		worldCorner := qj.Rotate(v).Add(xj)
		d := worldCorner.Sub(xi)
		if d.LenSqr() < radius*radius {
			c := n.createContactEquation(bi, bj, si, sj, rsi, rsj)
			c.Ni = normalizeOrZ(d)
			c.Ri = c.Ni.Mul(radius)
			c.Rj = worldCorner.Sub(xj)
			makeRelative(c, xi, xj)
			n.createFrictionEquationsFromContact(c)
			return
		}
	}

	// Грани.
	for fi, face := range sj.Faces {
		worldNormal := qj.Rotate(sj.FaceNormals[fi])
		worldPoint := qj.Rotate(sj.Vertices[face[0]]).Add(xj)

		// Ближайшая к грани точка сферы.
		closest := xi.Sub(worldNormal.Mul(radius))
		penetration := closest.Sub(worldPoint).Dot(worldNormal)
		if penetration >= 0 {
			continue
		}

		worldFace := make([]Vec3, len(face))
		for k, vi := range face {
			worldFace[k] = qj.Rotate(sj.Vertices[vi]).Add(xj)
		}

		if pointInPolygon(worldFace, worldNormal, xi) {
			c := n.createContactEquation(bi, bj, si, sj, rsi, rsj)
			c.Ni = worldNormal.Mul(-1)
			c.Ri = c.Ni.Mul(radius)
			// Точка на поверхности многогранника: центр сферы,
			// спроецированный на плоскость грани.
			contactPoint := xi.Sub(worldNormal.Mul(radius - penetration))
			c.Rj = contactPoint.Sub(xj)
			makeRelative(c, xi, xj)
			n.createFrictionEquationsFromContact(c)
			return
		}

		// Ребра грани.
		for k := range face {
			v1 := qj.Rotate(sj.Vertices[face[k]]).Add(xj)
			v2 := qj.Rotate(sj.Vertices[face[(k+1)%len(face)]]).Add(xj)
			edge := v2.Sub(v1)
			edgeLen := edge.Len()
			if edgeLen < 1e-12 {
				continue
			}
			edgeUnit := edge.Mul(1 / edgeLen)

			dot := xi.Sub(v1).Dot(edgeUnit)
			if dot <= 0 || dot >= edgeLen {
				continue
			}
			p := v1.Add(edgeUnit.Mul(dot))
			if p.Sub(xi).LenSqr() < radius*radius {
				c := n.createContactEquation(bi, bj, si, sj, rsi, rsj)
				c.Ni = normalizeOrZ(p.Sub(xi))
				c.Ri = c.Ni.Mul(radius)
				c.Rj = p.Sub(xj)
				makeRelative(c, xi, xj)
				n.createFrictionEquationsFromContact(c)
				return
			}
		}
	}
}

// pointInPolygon проверяет, лежит ли проекция точки p внутри выпуклого
// многоугольника verts с нормалью normal: знак векторного произведения
// ребра и направления к точке одинаков для всех ребер.
func pointInPolygon(verts []Vec3, normal Vec3, p Vec3) bool {
	positive := false
	for i, v := range verts {
		edge := verts[(i+1)%len(verts)].Sub(v)
		r := edge.Cross(p.Sub(v)).Dot(normal)
		if i == 0 {
			positive = r > 0
			continue
		}
		if (r > 0) != positive {
			return false
		}
	}
	return true
}

func (n *Narrowphase) planeParticle(si *Plane, sj *Particle, xi, xj Vec3, qi Quat, bi, bj *Body) {
	worldNormal := si.WorldNormal(qi)
	relpos := xj.Sub(xi)
	if worldNormal.Dot(relpos) > 0 {
		return
	}

	c := n.createContactEquation(bi, bj, si, sj, nil, nil)
	c.Ni = worldNormal
	c.Ri = relpos.Sub(worldNormal.Mul(worldNormal.Dot(relpos)))
	c.Rj = Vec3{}
	makeRelative(c, xi, xj)

	n.createFrictionEquationsFromContact(c)
}

func (n *Narrowphase) planeConvex(si *Plane, sj *ConvexPolyhedron, xi, xj Vec3, qi, qj Quat, bi, bj *Body, rsj Shape) {
	worldNormal := si.WorldNormal(qi)

	numContacts := 0
	for _, v := range sj.Vertices {
		worldVertex := qj.Rotate(v).Add(xj)
		depth := worldNormal.Dot(worldVertex.Sub(xi))
		if depth > 0 {
			continue
		}

		c := n.createContactEquation(bi, bj, si, sj, nil, rsj)
		c.Ni = worldNormal
		// Точка на плоскости: вершина, спроецированная вдоль нормали.
		projected := worldVertex.Sub(worldNormal.Mul(depth))
		c.Ri = projected.Sub(xi)
		c.Rj = worldVertex.Sub(xj)
		makeRelative(c, xi, xj)

		numContacts++
		if !n.EnableFrictionReduction {
			n.createFrictionEquationsFromContact(c)
		}
	}
	if n.EnableFrictionReduction {
		n.createFrictionFromAverage(numContacts)
	}
}

func (n *Narrowphase) planeTrimesh(si *Plane, sj *Trimesh, xi, xj Vec3, qi, qj Quat, bi, bj *Body) {
	worldNormal := si.WorldNormal(qi)

	for i := 0; i < len(sj.Vertices)/3; i++ {
		worldVertex := qj.Rotate(sj.GetVertex(i)).Add(xj)
		depth := worldNormal.Dot(worldVertex.Sub(xi))
		if depth > 0 {
			continue
		}

		c := n.createContactEquation(bi, bj, si, sj, nil, nil)
		c.Ni = worldNormal
		projected := worldVertex.Sub(worldNormal.Mul(depth))
		c.Ri = projected.Sub(xi)
		c.Rj = worldVertex.Sub(xj)
		makeRelative(c, xi, xj)

		n.createFrictionEquationsFromContact(c)
	}
}

func (n *Narrowphase) convexConvex(si, sj *ConvexPolyhedron, xi, xj Vec3, qi, qj Quat, bi, bj *Body, rsi, rsj Shape) {
	if xi.Sub(xj).Len() > si.Options().BoundingSphereRadius+sj.Options().BoundingSphereRadius {
		return
	}

	sepAxis, touching := si.FindSeparatingAxis(sj, xi, qi, xj, qj)
	if !touching {
		return
	}

	res := si.ClipAgainstHull(xi, qi, sj, xj, qj, sepAxis, -100, 100)
	numContacts := 0
	for _, q := range res {
		c := n.createContactEquation(bi, bj, si, sj, rsi, rsj)
		c.Ni = sepAxis.Mul(-1)
		// Точка для тела i поднимается из глубины на опорную грань.
		c.Ri = q.Point.Sub(q.Normal.Mul(q.Depth)).Sub(bi.Position)
		c.Rj = q.Point.Sub(bj.Position)

		numContacts++
		if !n.EnableFrictionReduction {
			n.createFrictionEquationsFromContact(c)
		}
	}
	if n.EnableFrictionReduction {
		n.createFrictionFromAverage(numContacts)
	}
}

func (n *Narrowphase) convexParticle(si *ConvexPolyhedron, sj *Particle, xi, xj Vec3, qi Quat, bi, bj *Body, rsi Shape) {
	// Частица в локальных координатах многогранника.
	local := qi.Conjugate().Rotate(xj.Sub(xi))

	penetratedFace := -1
	minPenetration := 0.0
	for fi, face := range si.Faces {
		normal := si.FaceNormals[fi]
		d := normal.Dot(local.Sub(si.Vertices[face[0]]))
		if d >= 0 {
			return
		}
		if penetratedFace == -1 || d > minPenetration {
			minPenetration = d
			penetratedFace = fi
		}
	}
	if penetratedFace == -1 {
		return
	}

	worldNormal := qi.Rotate(si.FaceNormals[penetratedFace])
	surfaceLocal := local.Add(si.FaceNormals[penetratedFace].Mul(-minPenetration))
	worldSurface := qi.Rotate(surfaceLocal).Add(xi)

	c := n.createContactEquation(bi, bj, si, sj, rsi, nil)
	c.Ni = worldNormal
	c.Ri = worldSurface.Sub(xi)
	c.Rj = Vec3{}
	makeRelative(c, xi, xj)

	n.createFrictionEquationsFromContact(c)
}

func (n *Narrowphase) sphereHeightfield(si *Sphere, sj *Heightfield, xi, xj Vec3, qi, qj Quat, bi, bj *Body) {
	n.convexLikeHeightfield(si, nil, sj, si.Radius, xi, xj, qi, qj, bi, bj)
}

func (n *Narrowphase) convexHeightfield(si *ConvexPolyhedron, sj *Heightfield, xi, xj Vec3, qi, qj Quat, bi, bj *Body, rsi Shape) {
	n.convexLikeHeightfield(rsi, si, sj, si.Options().BoundingSphereRadius, xi, xj, qi, qj, bi, bj)
}

// convexLikeHeightfield - общий путь коллизии с полем высот: найти
// накрытые ячейки, для каждого треугольника построить выпуклую колонну
// и прогнать обычную процедуру сферы или многогранника против нее.
func (n *Narrowphase) convexLikeHeightfield(shape Shape, convex *ConvexPolyhedron, hf *Heightfield, radius float64, xi, xj Vec3, qi, qj Quat, bi, bj *Body) {
	w := hf.ElementSize

	// Позиция формы в локальных координатах поля.
	local := qj.Conjugate().Rotate(xi.Sub(xj))

	iMinX := int(math.Floor((local[0]-radius)/w)) - 1
	iMaxX := int(math.Ceil((local[0]+radius)/w)) + 1
	iMinY := int(math.Floor((local[1]-radius)/w)) - 1
	iMaxY := int(math.Ceil((local[1]+radius)/w)) + 1

	if iMaxX < 0 || iMaxY < 0 || iMinX >= len(hf.Data) || (len(hf.Data) > 0 && iMinY >= len(hf.Data[0])) {
		return
	}

	clampIdx := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	maxX := len(hf.Data) - 2
	maxY := len(hf.Data[0]) - 2
	iMinX, iMaxX = clampIdx(iMinX, maxX), clampIdx(iMaxX, maxX)
	iMinY, iMaxY = clampIdx(iMinY, maxY), clampIdx(iMaxY, maxY)

	minH, maxH := hf.GetRectMinMax(iMinX, iMinY, iMaxX, iMaxY)
	if local[2]-radius > maxH || local[2]+radius < minH {
		return
	}

	for ix := iMinX; ix <= iMaxX; ix++ {
		for iy := iMinY; iy <= iMaxY; iy++ {
			before := len(n.result)

			for _, upper := range []bool{false, true} {
				pillar, offset := hf.GetConvexTrianglePillar(ix, iy, upper)
				worldPillarOffset := qj.Rotate(offset).Add(xj)

				if xi.Sub(worldPillarOffset).Len() >= pillar.Options().BoundingSphereRadius+radius {
					continue
				}
				if convex == nil {
					n.sphereConvex(shape.(*Sphere), pillar, xi, worldPillarOffset, qj, bi, bj, nil, hf)
				} else {
					n.convexConvex(convex, pillar, xi, worldPillarOffset, qi, qj, bi, bj, shape, hf)
				}
			}

			if len(n.result)-before > 2 {
				return
			}
		}
	}
}

func (n *Narrowphase) sphereTrimesh(si *Sphere, sj *Trimesh, xi, xj Vec3, qj Quat, bi, bj *Body) {
	// Сфера в локальных координатах сетки.
	local := qj.Conjugate().Rotate(xi.Sub(xj))
	r := si.Radius
	sphereAABB := AABB{
		Lower: local.Sub(Vec3{r, r, r}),
		Upper: local.Add(Vec3{r, r, r}),
	}

	for _, tri := range sj.GetTrianglesInAABB(sphereAABB) {
		va, vb, vc := sj.GetTriangleVertices(tri)
		closest := closestPointOnTriangle(local, va, vb, vc)
		d := closest.Sub(local)
		if d.LenSqr() > r*r {
			continue
		}

		worldClosest := qj.Rotate(closest).Add(xj)
		c := n.createContactEquation(bi, bj, si, sj, nil, nil)
		c.Ni = normalizeOrZ(worldClosest.Sub(xi))
		c.Ri = c.Ni.Mul(r)
		c.Rj = worldClosest.Sub(xj)
		makeRelative(c, xi, xj)
		n.createFrictionEquationsFromContact(c)
	}
}

// closestPointOnTriangle возвращает ближайшую к p точку треугольника
// (a, b, c) по областям Вороного его вершин, ребер и внутренности.
func closestPointOnTriangle(p, a, b, c Vec3) Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
