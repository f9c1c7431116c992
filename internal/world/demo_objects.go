package world

import (
	"fmt"
	"log"
)

// DemoObjectsCreator создает стартовые объекты сцены
type DemoObjectsCreator struct {
	factory *Factory
}

// NewDemoObjectsCreator создает новый экземпляр DemoObjectsCreator
func NewDemoObjectsCreator(factory *Factory) *DemoObjectsCreator {
	return &DemoObjectsCreator{factory: factory}
}

// CreateAll создает террейн и набор демонстрационных объектов
func (d *DemoObjectsCreator) CreateAll() {
	d.CreateTerrain()
	d.CreateDemoSpheres()
	d.CreateDemoBoxes()
}

// CreateTerrain создает террейн сцены
func (d *DemoObjectsCreator) CreateTerrain() {
	heightData := GenerateTerrainData(TerrainGridSize, TerrainGridSize, TerrainMinHeight, TerrainMaxHeight)

	terrain := NewTerrain(
		"terrain_1",
		Vector3{X: 0, Y: 0, Z: 0},
		heightData,
		TerrainElementSize,
		TerrainMinHeight,
		TerrainMaxHeight,
	)

	if err := d.factory.CreateObject(terrain, nil); err != nil {
		log.Printf("[World] Ошибка при создании террейна: %v", err)
	}
}

// CreateDemoSpheres создает сферы с разными поверхностями
func (d *DemoObjectsCreator) CreateDemoSpheres() {
	spawn := func(x, z float64) Vector3 {
		return Vector3{X: x, Y: d.factory.GetSpawnHeight(x, z) + 30, Z: z}
	}

	if _, err := d.factory.NewBouncySphere("demo_bouncy", spawn(-20, 0), 3, 10, "#ff8800"); err != nil {
		log.Printf("[World] Ошибка создания прыгучей сферы: %v", err)
	}
	if _, err := d.factory.NewSlippySphere("demo_slippy", spawn(20, 0), 3, 10, "#00aaff"); err != nil {
		log.Printf("[World] Ошибка создания скользкой сферы: %v", err)
	}
	if _, err := d.factory.NewDeadSphere("demo_dead", spawn(0, 20), 5, "#888888"); err != nil {
		log.Printf("[World] Ошибка создания мертвой сферы: %v", err)
	}
}

// CreateDemoBoxes создает небольшую стопку ящиков
func (d *DemoObjectsCreator) CreateDemoBoxes() {
	baseY := d.factory.GetSpawnHeight(0, -20)
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("demo_box_%d", i+1)
		pos := Vector3{X: 0, Y: baseY + 5 + float64(i)*4.2, Z: -20}
		box := NewBox(id, pos, 4, 4, 4, 5, "#44cc44")
		if err := d.factory.CreateObject(box, nil); err != nil {
			log.Printf("[World] Ошибка создания ящика %s: %v", id, err)
		}
	}
}
