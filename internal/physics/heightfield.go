package physics

import "math"

// Heightfield - прямоугольная сетка высот в локальной плоскости XY
// (высота вдоль +Z). Для коллизий каждая ячейка разбивается по
// диагонали на два треугольника, и каждый треугольник превращается
// в тонкую выпуклую "колонну" (призму), после чего работает обычный
// convex-путь narrowphase.
type Heightfield struct {
	opts ShapeOptions

	// Data - высоты, Data[xi][yi].
	Data [][]float64

	// ElementSize - шаг сетки по X и Y.
	ElementSize float64

	MinValue float64
	MaxValue float64

	pillarCache map[pillarKey]*pillarEntry
}

type pillarKey struct {
	xi, yi int
	upper  bool
}

type pillarEntry struct {
	convex *ConvexPolyhedron
	offset Vec3
}

// NewHeightfield создает поле высот. Минимум и максимум вычисляются
// из данных.
func NewHeightfield(data [][]float64, elementSize float64) *Heightfield {
	h := &Heightfield{
		opts:        newShapeOptions(),
		Data:        data,
		ElementSize: elementSize,
		pillarCache: make(map[pillarKey]*pillarEntry),
	}
	h.Update()
	return h
}

func (h *Heightfield) Type() ShapeType        { return ShapeHeightfield }
func (h *Heightfield) Options() *ShapeOptions { return &h.opts }

// Update пересчитывает min/max, радиус ограничивающей сферы и
// сбрасывает кэш колонн. Обязателен после изменения высот.
func (h *Heightfield) Update() {
	h.MinValue = math.Inf(1)
	h.MaxValue = math.Inf(-1)
	for _, row := range h.Data {
		for _, v := range row {
			h.MinValue = math.Min(h.MinValue, v)
			h.MaxValue = math.Max(h.MaxValue, v)
		}
	}
	h.pillarCache = make(map[pillarKey]*pillarEntry)
	h.UpdateBoundingSphereRadius()
}

func (h *Heightfield) UpdateBoundingSphereRadius() {
	nx := float64(len(h.Data)) * h.ElementSize
	ny := 0.0
	if len(h.Data) > 0 {
		ny = float64(len(h.Data[0])) * h.ElementSize
	}
	hz := math.Max(math.Abs(h.MinValue), math.Abs(h.MaxValue))
	h.opts.BoundingSphereRadius = math.Sqrt(nx*nx+ny*ny) + hz
}

func (h *Heightfield) Volume() float64 { return math.Inf(1) }

// CalculateLocalInertia: поле высот используется только статически.
func (h *Heightfield) CalculateLocalInertia(_ float64) Vec3 { return Vec3{} }

func (h *Heightfield) CalculateWorldAABB(position Vec3, quaternion Quat) AABB {
	sx := float64(len(h.Data)-1) * h.ElementSize
	sy := 0.0
	if len(h.Data) > 0 {
		sy = float64(len(h.Data[0])-1) * h.ElementSize
	}
	corners := []Vec3{
		{0, 0, h.MinValue}, {sx, 0, h.MinValue}, {0, sy, h.MinValue}, {sx, sy, h.MinValue},
		{0, 0, h.MaxValue}, {sx, 0, h.MaxValue}, {0, sy, h.MaxValue}, {sx, sy, h.MaxValue},
	}
	var aabb AABB
	aabb.SetFromPoints(corners, position, quaternion, 0)
	return aabb
}

// GetIndexOfPosition переводит локальные координаты (x, y) в индексы
// ячейки. При clamp выход за границы прижимается к краю.
func (h *Heightfield) GetIndexOfPosition(x, y float64, clamp bool) (int, int, bool) {
	xi := int(math.Floor(x / h.ElementSize))
	yi := int(math.Floor(y / h.ElementSize))

	maxX := len(h.Data) - 2
	maxY := 0
	if len(h.Data) > 0 {
		maxY = len(h.Data[0]) - 2
	}

	if clamp {
		if xi < 0 {
			xi = 0
		}
		if yi < 0 {
			yi = 0
		}
		if xi > maxX {
			xi = maxX
		}
		if yi > maxY {
			yi = maxY
		}
	}
	if xi < 0 || yi < 0 || xi > maxX || yi > maxY {
		return xi, yi, false
	}
	return xi, yi, true
}

// GetRectMinMax возвращает минимальную и максимальную высоту на
// прямоугольнике ячеек [iMinX..iMaxX]x[iMinY..iMaxY].
func (h *Heightfield) GetRectMinMax(iMinX, iMinY, iMaxX, iMaxY int) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for xi := iMinX; xi <= iMaxX+1 && xi < len(h.Data); xi++ {
		if xi < 0 {
			continue
		}
		for yi := iMinY; yi <= iMaxY+1 && yi < len(h.Data[xi]); yi++ {
			if yi < 0 {
				continue
			}
			v := h.Data[xi][yi]
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return min, max
}

// GetHeightAt возвращает интерполированную высоту в локальной точке.
func (h *Heightfield) GetHeightAt(x, y float64) float64 {
	xi, yi, _ := h.GetIndexOfPosition(x, y, true)

	fx := x/h.ElementSize - float64(xi)
	fy := y/h.ElementSize - float64(yi)
	fx = math.Max(0, math.Min(1, fx))
	fy = math.Max(0, math.Min(1, fy))

	h00 := h.Data[xi][yi]
	h10 := h.Data[xi+1][yi]
	h01 := h.Data[xi][yi+1]
	h11 := h.Data[xi+1][yi+1]

	if fx+fy < 1 {
		// Нижний треугольник.
		return h00 + (h10-h00)*fx + (h01-h00)*fy
	}
	// Верхний треугольник.
	return h11 + (h01-h11)*(1-fx) + (h10-h11)*(1-fy)
}

// GetConvexTrianglePillar возвращает выпуклую колонну для треугольника
// ячейки (xi, yi) и смещение колонны в локальных координатах поля.
// upper выбирает верхний треугольник диагонального разбиения.
func (h *Heightfield) GetConvexTrianglePillar(xi, yi int, upper bool) (*ConvexPolyhedron, Vec3) {
	key := pillarKey{xi: xi, yi: yi, upper: upper}
	if e, ok := h.pillarCache[key]; ok {
		return e.convex, e.offset
	}

	s := h.ElementSize
	x0 := float64(xi) * s
	y0 := float64(yi) * s

	h00 := h.Data[xi][yi]
	h10 := h.Data[xi+1][yi]
	h01 := h.Data[xi][yi+1]
	h11 := h.Data[xi+1][yi+1]

	var p0, p1, p2 Vec3
	if !upper {
		// Нижний треугольник: (0,0), (s,0), (0,s).
		p0 = Vec3{x0, y0, h00}
		p1 = Vec3{x0 + s, y0, h10}
		p2 = Vec3{x0, y0 + s, h01}
	} else {
		// Верхний треугольник: (s,0), (s,s), (0,s).
		p0 = Vec3{x0 + s, y0, h10}
		p1 = Vec3{x0 + s, y0 + s, h11}
		p2 = Vec3{x0, y0 + s, h01}
	}

	base := h.MinValue - s
	convex, offset := buildTrianglePillar(p0, p1, p2, base)

	h.pillarCache[key] = &pillarEntry{convex: convex, offset: offset}
	return convex, offset
}

// buildTrianglePillar строит призму: треугольник на своих высотах
// сверху, его проекция на уровне base снизу. Вершины хранятся
// относительно центроида призмы.
func buildTrianglePillar(p0, p1, p2 Vec3, base float64) (*ConvexPolyhedron, Vec3) {
	b0 := Vec3{p0[0], p0[1], base}
	b1 := Vec3{p1[0], p1[1], base}
	b2 := Vec3{p2[0], p2[1], base}

	offset := p0.Add(p1).Add(p2).Add(b0).Add(b1).Add(b2).Mul(1.0 / 6.0)

	vertices := []Vec3{
		p0.Sub(offset), p1.Sub(offset), p2.Sub(offset),
		b0.Sub(offset), b1.Sub(offset), b2.Sub(offset),
	}

	faces := [][]int{
		{0, 1, 2}, // верхний треугольник
		{5, 4, 3}, // нижний треугольник
		{0, 3, 4, 1},
		{1, 4, 5, 2},
		{2, 5, 3, 0},
	}

	return NewConvexPolyhedron(vertices, faces), offset
}
