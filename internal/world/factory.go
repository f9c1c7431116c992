package world

import (
	"fmt"
	"log"
	"math"

	"x-phys/internal/physics"
)

// NewSphere создает описание объекта-сферы
func NewSphere(id string, position Vector3, radius, mass float64, color string) *WorldObject {
	return &WorldObject{
		ID:       id,
		Position: position,
		Rotation: Quaternion{W: 1},
		Color:    color,
		Shape: &ShapeDescriptor{
			Type:   SPHERE,
			Sphere: &SphereData{Radius: radius, Mass: mass, Color: color},
		},
	}
}

// NewBox создает описание объекта-ящика
func NewBox(id string, position Vector3, width, height, depth, mass float64, color string) *WorldObject {
	return &WorldObject{
		ID:       id,
		Position: position,
		Rotation: Quaternion{W: 1},
		Color:    color,
		Shape: &ShapeDescriptor{
			Type: BOX,
			Box:  &BoxData{Width: width, Height: height, Depth: depth, Mass: mass, Color: color},
		},
	}
}

// NewTerrain создает описание террейна по сетке высот
func NewTerrain(id string, position Vector3, heightData [][]float64, elementSize float64, minHeight, maxHeight float64) *WorldObject {
	w := len(heightData)
	d := 0
	if w > 0 {
		d = len(heightData[0])
	}
	return &WorldObject{
		ID:        id,
		Position:  position,
		Rotation:  Quaternion{W: 1},
		MinHeight: minHeight,
		MaxHeight: maxHeight,
		Shape: &ShapeDescriptor{
			Type: TERRAIN,
			Terrain: &TerrainData{
				Width:      w,
				Depth:      d,
				HeightData: FlattenHeightData(heightData),
				ScaleX:     elementSize,
				ScaleY:     1.0,
				ScaleZ:     elementSize,
			},
		},
	}
}

// Factory создает тела объектов в физическом движке и регистрирует
// объекты в менеджере мира.
type Factory struct {
	manager *Manager

	// Поверхности: свойства пары задаются относительно земли
	groundMaterial  *physics.Material
	defaultMaterial *physics.Material

	// Активный террейн для расчета высоты спауна
	terrain     *physics.Heightfield
	terrainBody *physics.Body
}

// NewFactory создает фабрику и базовые материалы поверхностей
func NewFactory(manager *Manager) *Factory {
	cfg := GetWorldConfig()
	engine := manager.Engine()

	f := &Factory{
		manager:         manager,
		groundMaterial:  physics.NewMaterial("ground"),
		defaultMaterial: physics.NewMaterial("object"),
	}

	cm := physics.NewContactMaterial(f.groundMaterial, f.defaultMaterial)
	cm.Friction = cfg.Friction
	cm.Restitution = cfg.Restitution
	engine.AddContactMaterial(cm)

	manager.SetFactory(f)
	return f
}

// registerSurface создает материал поверхности и контактную пару
// с землей.
func (f *Factory) registerSurface(name string, friction, restitution float64) *physics.Material {
	m := physics.NewMaterial(name)
	cm := physics.NewContactMaterial(f.groundMaterial, m)
	cm.Friction = friction
	cm.Restitution = restitution
	f.manager.Engine().AddContactMaterial(cm)
	return m
}

// CreateObject создает тело в движке по описанию и добавляет объект
// в мир. Материал nil означает материал по умолчанию.
func (f *Factory) CreateObject(obj *WorldObject, material *physics.Material) error {
	if obj.Shape == nil {
		return fmt.Errorf("объект %s без геометрии", obj.ID)
	}
	if material == nil {
		material = f.defaultMaterial
	}

	cfg := GetWorldConfig()

	switch obj.Shape.Type {
	case SPHERE:
		s := obj.Shape.Sphere
		body := physics.NewBody(physics.BodyOptions{
			Mass:           s.Mass,
			Position:       obj.Position.ToVec3(),
			Material:       material,
			LinearDamping:  cfg.LinearDamping,
			AngularDamping: cfg.AngularDamping,
		})
		body.AddShape(physics.NewSphere(s.Radius), physics.Vec3{}, physics.QuatIdent())
		obj.Body = body

	case BOX:
		b := obj.Shape.Box
		body := physics.NewBody(physics.BodyOptions{
			Mass:           b.Mass,
			Position:       obj.Position.ToVec3(),
			Material:       material,
			LinearDamping:  cfg.LinearDamping,
			AngularDamping: cfg.AngularDamping,
		})
		half := physics.Vec3{b.Width / 2, b.Height / 2, b.Depth / 2}
		body.AddShape(physics.NewBox(half), physics.Vec3{}, physics.QuatIdent())
		obj.Body = body

	case TERRAIN:
		body, hf, err := f.buildTerrainBody(obj)
		if err != nil {
			return err
		}
		obj.Body = body
		f.terrain = hf
		f.terrainBody = body

	default:
		return fmt.Errorf("неизвестный тип геометрии объекта %s", obj.ID)
	}

	f.manager.AddWorldObject(obj)
	log.Printf("[Factory] Создан объект %s (%s) в (%.1f, %.1f, %.1f)",
		obj.ID, obj.Shape.Type, obj.Position.X, obj.Position.Y, obj.Position.Z)
	return nil
}

// buildTerrainBody строит статическое тело карты высот. Локальная
// сетка лежит в плоскости XY движка, поворотом -90° вокруг X она
// укладывается в горизонтальную плоскость мира, высоты смотрят по Y.
func (f *Factory) buildTerrainBody(obj *WorldObject) (*physics.Body, *physics.Heightfield, error) {
	t := obj.Shape.Terrain
	if t == nil || t.Width < 2 || t.Depth < 2 {
		return nil, nil, fmt.Errorf("террейн %s: сетка высот пуста", obj.ID)
	}
	if len(t.HeightData) != t.Width*t.Depth {
		return nil, nil, fmt.Errorf("террейн %s: размер данных %d не равен %dx%d",
			obj.ID, len(t.HeightData), t.Width, t.Depth)
	}

	grid := make([][]float64, t.Width)
	for i := range grid {
		grid[i] = make([]float64, t.Depth)
		for j := 0; j < t.Depth; j++ {
			grid[i][j] = t.HeightData[j*t.Width+i]
		}
	}

	hf := physics.NewHeightfield(grid, t.ScaleX)

	// Центрируем сетку относительно позиции объекта. После поворота
	// локальная ось Y сетки идет вдоль мировой -Z.
	spanX := float64(t.Width-1) * t.ScaleX
	spanZ := float64(t.Depth-1) * t.ScaleX
	position := physics.Vec3{
		obj.Position.X - spanX/2,
		obj.Position.Y,
		obj.Position.Z + spanZ/2,
	}

	q := physics.NewQuat(-math.Sqrt2/2, 0, 0, math.Sqrt2/2)

	body := physics.NewBody(physics.BodyOptions{
		Mass:       0,
		Position:   position,
		Quaternion: q,
		Material:   f.groundMaterial,
	})
	body.AddShape(hf, physics.Vec3{}, physics.QuatIdent())
	return body, hf, nil
}

// GetSpawnHeight возвращает высоту поверхности террейна в мировой
// точке (x, z). Вне террейна возвращается MinValue.
func (f *Factory) GetSpawnHeight(x, z float64) float64 {
	if f.terrain == nil || f.terrainBody == nil {
		return 0
	}
	localX := x - f.terrainBody.Position[0]
	localY := f.terrainBody.Position[2] - z

	w := float64(len(f.terrain.Data)-1) * f.terrain.ElementSize
	d := float64(len(f.terrain.Data[0])-1) * f.terrain.ElementSize
	if localX < 0 || localX > w || localY < 0 || localY > d {
		return f.terrain.MinValue
	}
	return f.terrain.GetHeightAt(localX, localY)
}

// NewSphereWithPhysics создает сферу со стандартной поверхностью
func (f *Factory) NewSphereWithPhysics(id string, position Vector3, radius, mass float64, color string) (*WorldObject, error) {
	obj := NewSphere(id, position, radius, mass, color)
	if err := f.CreateObject(obj, nil); err != nil {
		return nil, err
	}
	return obj, nil
}

// NewBouncySphere создает прыгучую сферу
func (f *Factory) NewBouncySphere(id string, position Vector3, radius, mass float64, color string) (*WorldObject, error) {
	obj := NewSphere(id, position, radius, mass, color)
	m := f.registerSurface("bouncy_"+id, GetWorldConfig().Friction, 0.8)
	if err := f.CreateObject(obj, m); err != nil {
		return nil, err
	}
	return obj, nil
}

// NewDeadSphere создает неподвижную сферу-препятствие
func (f *Factory) NewDeadSphere(id string, position Vector3, radius float64, color string) (*WorldObject, error) {
	obj := NewSphere(id, position, radius, 0, color)
	if err := f.CreateObject(obj, nil); err != nil {
		return nil, err
	}
	return obj, nil
}

// NewSlippySphere создает скользкую сферу
func (f *Factory) NewSlippySphere(id string, position Vector3, radius, mass float64, color string) (*WorldObject, error) {
	obj := NewSphere(id, position, radius, mass, color)
	m := f.registerSurface("slippy_"+id, 0.05, GetWorldConfig().Restitution)
	if err := f.CreateObject(obj, m); err != nil {
		return nil, err
	}
	return obj, nil
}

// NewPlayerWithBounceSkill создает сферу игрока с индивидуальным
// скиллом прыгучести.
func (f *Factory) NewPlayerWithBounceSkill(id string, position Vector3, radius, mass, bounceSkill float64, color string) (*WorldObject, error) {
	obj := NewSphere(id, position, radius, mass, color)
	m := f.registerSurface("player_"+id, GetWorldConfig().Friction, bounceSkill)
	if err := f.CreateObject(obj, m); err != nil {
		return nil, err
	}
	return obj, nil
}

// UpdateObjectMassAndRadius пересчитывает массу и радиус сферы
// игрока в движке (рост при поедании еды).
func (f *Factory) UpdateObjectMassAndRadius(id string, mass, radius float64) error {
	obj, ok := f.manager.GetWorldObject(id)
	if !ok || obj.Body == nil {
		return fmt.Errorf("объект %s не найден", id)
	}
	if obj.Shape == nil || obj.Shape.Type != SPHERE {
		return fmt.Errorf("объект %s не является сферой", id)
	}

	body := obj.Body
	sphere, ok := body.Shapes[0].(*physics.Sphere)
	if !ok {
		return fmt.Errorf("объект %s: тело без формы сферы", id)
	}

	sphere.Radius = radius
	sphere.UpdateBoundingSphereRadius()
	body.Mass = mass
	body.UpdateMassProperties()
	body.UpdateBoundingRadius()
	body.AABBNeedsUpdate = true
	body.WakeUp()

	obj.Shape.Sphere.Radius = radius
	obj.Shape.Sphere.Mass = mass

	log.Printf("[Factory] Объект %s: масса %.1f, радиус %.2f", id, mass, radius)
	return nil
}
