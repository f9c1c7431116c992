package world

import (
	"math"
	"testing"

	"x-phys/internal/physics"
)

func newTestManager(t *testing.T) (*Manager, *Factory) {
	t.Helper()
	m := NewManager()
	f := NewFactory(m)
	return m, f
}

func stepSeconds(m *Manager, seconds float64) {
	steps := int(seconds / DefaultFixedTimeStep)
	for i := 0; i < steps; i++ {
		m.Step(DefaultFixedTimeStep)
	}
}

func TestManagerSphereFallsUnderGravity(t *testing.T) {
	m, f := newTestManager(t)

	obj, err := f.NewSphereWithPhysics("ball", Vector3{X: 0, Y: 10, Z: 0}, 1, 5, "#ffffff")
	if err != nil {
		t.Fatalf("Ошибка создания сферы: %v", err)
	}

	stepSeconds(m, 0.5)

	if obj.Position.Y >= 10 {
		t.Errorf("Сфера не падает: y=%f", obj.Position.Y)
	}
	if obj.Velocity.Y >= 0 {
		t.Errorf("Скорость не направлена вниз: vy=%f", obj.Velocity.Y)
	}
}

func TestManagerSphereRestsOnTerrain(t *testing.T) {
	m, f := newTestManager(t)

	// Плоский террейн высотой 0
	grid := make([][]float64, 8)
	for i := range grid {
		grid[i] = make([]float64, 8)
	}
	terrain := NewTerrain("terrain", Vector3{}, grid, 4.0, 0, 0)
	if err := f.CreateObject(terrain, nil); err != nil {
		t.Fatalf("Ошибка создания террейна: %v", err)
	}
	if terrain.Body.Type != physics.BodyStatic {
		t.Errorf("Террейн должен быть статическим")
	}

	obj, err := f.NewSphereWithPhysics("ball", Vector3{X: 0, Y: 5, Z: 0}, 1, 5, "#ffffff")
	if err != nil {
		t.Fatalf("Ошибка создания сферы: %v", err)
	}

	stepSeconds(m, 3.0)

	// Сфера лежит на поверхности: центр примерно на высоте радиуса
	if math.Abs(obj.Position.Y-1.0) > 0.3 {
		t.Errorf("Сфера не легла на террейн: y=%f", obj.Position.Y)
	}
}

func TestManagerApplyImpulse(t *testing.T) {
	m, f := newTestManager(t)

	obj, err := f.NewSphereWithPhysics("ball", Vector3{Y: 100}, 1, 10, "#ffffff")
	if err != nil {
		t.Fatalf("Ошибка создания сферы: %v", err)
	}

	if !m.ApplyImpulse("ball", Vector3{X: 50}) {
		t.Fatal("Импульс не применен")
	}

	// v = J / m
	if math.Abs(obj.Body.Velocity[0]-5.0) > 1e-9 {
		t.Errorf("Ожидалась скорость 5, получена %f", obj.Body.Velocity[0])
	}

	if m.ApplyImpulse("missing", Vector3{X: 1}) {
		t.Error("Импульс к несуществующему объекту не должен применяться")
	}
}

func TestManagerRemoveObject(t *testing.T) {
	m, f := newTestManager(t)

	obj, err := f.NewSphereWithPhysics("ball", Vector3{}, 1, 1, "#ffffff")
	if err != nil {
		t.Fatalf("Ошибка создания сферы: %v", err)
	}

	bodyID := obj.Body.ID
	m.RemoveObject("ball")

	if _, ok := m.GetWorldObject("ball"); ok {
		t.Error("Объект остался в реестре после удаления")
	}
	if m.Engine().GetBodyByID(bodyID) != nil {
		t.Error("Тело осталось в движке после удаления")
	}
}

func TestFactoryUpdateObjectMassAndRadius(t *testing.T) {
	_, f := newTestManager(t)

	obj, err := f.NewSphereWithPhysics("ball", Vector3{Y: 10}, 2, 8, "#ffffff")
	if err != nil {
		t.Fatalf("Ошибка создания сферы: %v", err)
	}

	if err := f.UpdateObjectMassAndRadius("ball", 27, 3); err != nil {
		t.Fatalf("Ошибка обновления: %v", err)
	}

	if obj.Body.Mass != 27 {
		t.Errorf("Масса тела не обновлена: %f", obj.Body.Mass)
	}
	sphere := obj.Body.Shapes[0].(*physics.Sphere)
	if sphere.Radius != 3 {
		t.Errorf("Радиус формы не обновлен: %f", sphere.Radius)
	}
	if obj.Shape.Sphere.Radius != 3 || obj.Shape.Sphere.Mass != 27 {
		t.Errorf("Описание объекта не обновлено")
	}
	if math.Abs(obj.Body.InvMass-1.0/27.0) > 1e-12 {
		t.Errorf("Обратная масса не пересчитана: %f", obj.Body.InvMass)
	}

	if err := f.UpdateObjectMassAndRadius("missing", 1, 1); err == nil {
		t.Error("Ожидалась ошибка для несуществующего объекта")
	}
}

func TestFactoryGetSpawnHeight(t *testing.T) {
	_, f := newTestManager(t)

	grid := GenerateTerrainData(16, 16, -5, 5)
	terrain := NewTerrain("terrain", Vector3{}, grid, 2.0, -5, 5)
	if err := f.CreateObject(terrain, nil); err != nil {
		t.Fatalf("Ошибка создания террейна: %v", err)
	}

	h := f.GetSpawnHeight(0, 0)
	if h < -5-1e-9 || h > 5+1e-9 {
		t.Errorf("Высота спауна вне диапазона высот: %f", h)
	}

	// Далеко за пределами террейна возвращается минимум
	if far := f.GetSpawnHeight(1e6, 1e6); math.Abs(far-(-5)) > 1e-9 {
		t.Errorf("За пределами террейна ожидался минимум, получено %f", far)
	}
}

func TestGenerateTerrainDataRange(t *testing.T) {
	grid := GenerateTerrainData(32, 32, -10, 10)

	if len(grid) != 32 || len(grid[0]) != 32 {
		t.Fatalf("Неверный размер сетки: %dx%d", len(grid), len(grid[0]))
	}

	// Генератор воспроизводим
	again := GenerateTerrainData(32, 32, -10, 10)
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] != again[i][j] {
				t.Fatalf("Генератор не детерминирован в (%d, %d)", i, j)
			}
		}
	}

	flat := FlattenHeightData(grid)
	if len(flat) != 32*32 {
		t.Fatalf("Неверная длина плоских данных: %d", len(flat))
	}
	// Порядок построчно по Z: flat[j*w+i] == grid[i][j]
	if flat[5*32+7] != grid[7][5] {
		t.Error("Неверный порядок разворачивания сетки")
	}
}
