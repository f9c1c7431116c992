package physics

import "math"

// RayMode определяет, когда луч прекращает поиск пересечений.
type RayMode int

const (
	// RayModeAny - остановиться на первом найденном пересечении.
	RayModeAny RayMode = iota
	// RayModeAll - сообщить о каждом пересечении через callback.
	RayModeAll
	// RayModeClosest - найти ближайшее к началу луча пересечение.
	RayModeClosest
)

// RaycastResult - итог трассировки луча.
type RaycastResult struct {
	RayFromWorld Vec3
	RayToWorld   Vec3

	HitNormalWorld Vec3
	HitPointWorld  Vec3

	HasHit bool
	Shape  Shape
	Body   *Body

	// HitFaceIndex - индекс грани или треугольника, -1 если
	// неприменимо.
	HitFaceIndex int

	// Distance - расстояние от начала луча до точки попадания, -1
	// пока попадания нет.
	Distance float64

	shouldStop bool
}

// Reset приводит результат к состоянию "нет попадания".
func (r *RaycastResult) Reset() {
	*r = RaycastResult{HitFaceIndex: -1, Distance: -1}
}

// Abort прекращает дальнейший обход пересечений (из callback).
func (r *RaycastResult) Abort() { r.shouldStop = true }

func (r *RaycastResult) set(from, to, normal, point Vec3, shape Shape, body *Body, distance float64) {
	r.RayFromWorld = from
	r.RayToWorld = to
	r.HitNormalWorld = normal
	r.HitPointWorld = point
	r.Shape = shape
	r.Body = body
	r.Distance = distance
}

// RayOptions - фильтры трассировки.
type RayOptions struct {
	CollisionFilterMask  int
	CollisionFilterGroup int

	// SkipBackfaces пропускает грани, повернутые от луча.
	SkipBackfaces bool

	// CheckCollisionResponse исключает формы с выключенным откликом.
	CheckCollisionResponse bool
}

// DefaultRayOptions - луч видит все, отклик учитывается.
func DefaultRayOptions() RayOptions {
	return RayOptions{
		CollisionFilterMask:    -1,
		CollisionFilterGroup:   -1,
		CheckCollisionResponse: true,
	}
}

// Ray - отрезок из From в To, трассируемый по формам мира.
type Ray struct {
	From Vec3
	To   Vec3

	Mode    RayMode
	Options RayOptions

	// Precision - допуск при проверке попадания в грань.
	Precision float64

	// Callback вызывается на каждое пересечение в режиме RayModeAll.
	Callback func(*RaycastResult)

	direction Vec3
	hasHit    bool
	result    *RaycastResult
}

func NewRay(from, to Vec3) *Ray {
	return &Ray{
		From:      from,
		To:        to,
		Mode:      RayModeAny,
		Options:   DefaultRayOptions(),
		Precision: 0.0001,
	}
}

func (r *Ray) updateDirection() {
	r.direction = normalizeOrZ(r.To.Sub(r.From))
}

// GetAABB возвращает AABB отрезка луча.
func (r *Ray) GetAABB() AABB {
	aabb := NewAABB()
	for _, p := range []Vec3{r.From, r.To} {
		aabb.Extend(AABB{Lower: p, Upper: p})
	}
	return aabb
}

// IntersectWorld трассирует луч по телам мира, отобранным broadphase.
func (r *Ray) IntersectWorld(world *World, result *RaycastResult) bool {
	r.result = result
	r.hasHit = false
	result.Reset()
	r.updateDirection()

	bodies := world.Broadphase.AABBQuery(world, r.GetAABB(), nil)
	for _, body := range bodies {
		if result.shouldStop {
			break
		}
		r.intersectBody(body)
	}
	return r.hasHit
}

func (r *Ray) intersectBody(body *Body) {
	opts := r.Options
	for i, shape := range body.Shapes {
		o := shape.Options()
		if opts.CheckCollisionResponse && !o.CollisionResponse {
			continue
		}
		if o.CollisionFilterGroup&opts.CollisionFilterMask == 0 ||
			opts.CollisionFilterGroup&o.CollisionFilterMask == 0 {
			continue
		}
		x := body.Quaternion.Rotate(body.ShapeOffsets[i]).Add(body.Position)
		q := body.Quaternion.Mul(body.ShapeOrientations[i])
		r.intersectShape(shape, q, x, body)
		if r.result.shouldStop {
			return
		}
	}
}

func (r *Ray) intersectShape(shape Shape, quat Quat, position Vec3, body *Body) {
	// Отсечение по перпендикуляру от центра формы к лучу.
	d := position.Sub(r.From).Dot(r.direction)
	closest := r.From.Add(r.direction.Mul(math.Max(d, 0)))
	radius := shape.Options().BoundingSphereRadius
	if closest.Sub(position).LenSqr() > radius*radius {
		return
	}

	switch s := shape.(type) {
	case *Sphere:
		r.intersectSphere(s, position, body)
	case *Plane:
		r.intersectPlane(s, quat, position, body)
	case *Box:
		r.intersectConvex(s.ConvexRepresentation, quat, position, body, s)
	case *Cylinder:
		r.intersectConvex(s.ConvexPolyhedron, quat, position, body, s)
	case *ConvexPolyhedron:
		r.intersectConvex(s, quat, position, body, s)
	case *Heightfield:
		r.intersectHeightfield(s, quat, position, body)
	case *Trimesh:
		r.intersectTrimesh(s, quat, position, body)
	}
}

func (r *Ray) intersectSphere(s *Sphere, position Vec3, body *Body) {
	from, to := r.From, r.To
	d := to.Sub(from)

	a := d.LenSqr()
	b := 2 * d.Dot(from.Sub(position))
	c := from.Sub(position).LenSqr() - s.Radius*s.Radius

	delta := b*b - 4*a*c
	if delta < 0 || a == 0 {
		return
	}

	sqrtDelta := math.Sqrt(delta)
	for _, t := range []float64{(-b - sqrtDelta) / (2 * a), (-b + sqrtDelta) / (2 * a)} {
		if t < 0 || t > 1 {
			continue
		}
		point := from.Add(d.Mul(t))
		normal := normalizeOrZ(point.Sub(position))
		r.reportIntersection(normal, point, s, body, -1)
		if r.result.shouldStop {
			return
		}
	}
}

func (r *Ray) intersectPlane(s *Plane, quat Quat, position Vec3, body *Body) {
	worldNormal := s.WorldNormal(quat)

	from, to := r.From, r.To
	nDotFrom := worldNormal.Dot(from.Sub(position))
	nDotTo := worldNormal.Dot(to.Sub(position))
	if nDotFrom*nDotTo > 0 || from.Sub(to).LenSqr() < 1e-24 {
		// Отрезок целиком по одну сторону плоскости.
		return
	}
	if r.Options.SkipBackfaces && nDotFrom < 0 {
		return
	}

	nDotDir := worldNormal.Dot(r.direction)
	if math.Abs(nDotDir) < 1e-12 {
		return
	}
	t := -nDotFrom / nDotDir
	point := from.Add(r.direction.Mul(t))
	r.reportIntersection(worldNormal, point, s, body, -1)
}

func (r *Ray) intersectConvex(s *ConvexPolyhedron, quat Quat, position Vec3, body *Body, reportShape Shape) {
	from, to := r.From, r.To

	for fi, face := range s.Faces {
		normal := quat.Rotate(s.FaceNormals[fi])
		pointOnFace := quat.Rotate(s.Vertices[face[0]]).Add(position)

		if r.Options.SkipBackfaces && normal.Dot(r.direction) > 0 {
			continue
		}

		dot := r.direction.Dot(normal)
		if math.Abs(dot) < 1e-12 {
			continue
		}
		scalar := normal.Dot(pointOnFace.Sub(from)) / dot
		if scalar < 0 {
			continue
		}
		point := from.Add(r.direction.Mul(scalar))
		if point.Sub(from).LenSqr() > to.Sub(from).LenSqr() {
			continue
		}

		worldFace := make([]Vec3, len(face))
		for k, vi := range face {
			worldFace[k] = quat.Rotate(s.Vertices[vi]).Add(position)
		}
		if !pointInPolygon(worldFace, normal, point) {
			continue
		}

		r.reportIntersection(normal, point, reportShape, body, fi)
		if r.result.shouldStop {
			return
		}
	}
}

func (r *Ray) intersectHeightfield(s *Heightfield, quat Quat, position Vec3, body *Body) {
	// Луч в локальных координатах поля.
	localFrom := quat.Conjugate().Rotate(r.From.Sub(position))
	localTo := quat.Conjugate().Rotate(r.To.Sub(position))

	iMinX, iMinY, _ := s.GetIndexOfPosition(math.Min(localFrom[0], localTo[0]), math.Min(localFrom[1], localTo[1]), true)
	iMaxX, iMaxY, _ := s.GetIndexOfPosition(math.Max(localFrom[0], localTo[0]), math.Max(localFrom[1], localTo[1]), true)

	for ix := iMinX; ix <= iMaxX; ix++ {
		for iy := iMinY; iy <= iMaxY; iy++ {
			if r.result.shouldStop {
				return
			}
			for _, upper := range []bool{false, true} {
				pillar, offset := s.GetConvexTrianglePillar(ix, iy, upper)
				worldOffset := quat.Rotate(offset).Add(position)
				r.intersectConvex(pillar, quat, worldOffset, body, s)
			}
		}
	}
}

func (r *Ray) intersectTrimesh(s *Trimesh, quat Quat, position Vec3, body *Body) {
	localFrom := quat.Conjugate().Rotate(r.From.Sub(position))
	localTo := quat.Conjugate().Rotate(r.To.Sub(position))

	segAABB := NewAABB()
	for _, p := range []Vec3{localFrom, localTo} {
		segAABB.Extend(AABB{Lower: p, Upper: p})
	}

	localDir := localTo.Sub(localFrom)
	for _, tri := range s.GetTrianglesInAABB(segAABB) {
		va, vb, vc := s.GetTriangleVertices(tri)
		normal := s.GetNormal(tri)

		if r.Options.SkipBackfaces && normal.Dot(localDir) > 0 {
			continue
		}

		// Пересечение с плоскостью треугольника.
		denom := normal.Dot(localDir)
		if math.Abs(denom) < 1e-12 {
			continue
		}
		t := normal.Dot(va.Sub(localFrom)) / denom
		if t < 0 || t > 1 {
			continue
		}
		point := localFrom.Add(localDir.Mul(t))

		if !pointInTriangle(point, va, vb, vc) {
			continue
		}

		worldPoint := quat.Rotate(point).Add(position)
		worldNormal := quat.Rotate(normal)
		r.reportIntersection(worldNormal, worldPoint, s, body, tri)
		if r.result.shouldStop {
			return
		}
	}
}

// pointInTriangle - барицентрическая проверка принадлежности точки
// треугольнику (точка предполагается в его плоскости).
func pointInTriangle(p, a, b, c Vec3) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < 1e-24 {
		return false
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom
	return u >= -r3eps && v >= -r3eps && u+v <= 1+r3eps
}

const r3eps = 1e-9

func (r *Ray) reportIntersection(normal, point Vec3, shape Shape, body *Body, faceIndex int) {
	from, to := r.From, r.To
	distance := from.Sub(point).Len()
	result := r.result

	switch r.Mode {
	case RayModeAll:
		r.hasHit = true
		result.HasHit = true
		result.set(from, to, normal, point, shape, body, distance)
		result.HitFaceIndex = faceIndex
		if r.Callback != nil {
			r.Callback(result)
		}
	case RayModeAny:
		r.hasHit = true
		result.HasHit = true
		result.set(from, to, normal, point, shape, body, distance)
		result.HitFaceIndex = faceIndex
		result.shouldStop = true
	case RayModeClosest:
		if result.Distance < 0 || distance < result.Distance {
			r.hasHit = true
			result.HasHit = true
			result.set(from, to, normal, point, shape, body, distance)
			result.HitFaceIndex = faceIndex
		}
	}
}
