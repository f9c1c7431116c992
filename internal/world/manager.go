package world

import (
	"log"
	"sync"

	"x-phys/internal/physics"
)

// Шаг симуляции фиксированный, реальное время добирается подшагами.
const (
	DefaultFixedTimeStep = 1.0 / 60.0
	DefaultMaxSubSteps   = 10
)

// Manager управляет объектами игрового мира и владеет физическим
// движком. Все операции над реестром объектов потокобезопасны.
type Manager struct {
	engine  *physics.World
	objects map[string]*WorldObject
	mu      sync.RWMutex

	factory *Factory

	fixedTimeStep float64
	maxSubSteps   int
}

// NewManager создает менеджер мира с настроенным физическим движком
func NewManager() *Manager {
	cfg := GetWorldConfig()

	solver := physics.NewGSSolver()
	solver.Iterations = cfg.SolverIterations
	if cfg.SolverTolerance > 0 {
		solver.Tolerance = cfg.SolverTolerance
	}

	engine := physics.NewWorld(physics.WorldOptions{
		Gravity:    physics.Vec3{cfg.GravityX, cfg.GravityY, cfg.GravityZ},
		Broadphase: physics.NewSAPBroadphase(),
		Solver:     solver,
		AllowSleep: true,
	})

	// Коэффициенты пары поверхностей по умолчанию
	engine.DefaultContactMaterial.Friction = cfg.Friction
	engine.DefaultContactMaterial.Restitution = cfg.Restitution

	m := &Manager{
		engine:        engine,
		objects:       make(map[string]*WorldObject),
		fixedTimeStep: DefaultFixedTimeStep,
		maxSubSteps:   DefaultMaxSubSteps,
	}

	log.Printf("[World] Менеджер мира создан: гравитация (%.2f, %.2f, %.2f), решатель %d итераций",
		cfg.GravityX, cfg.GravityY, cfg.GravityZ, solver.Iterations)

	return m
}

// Engine возвращает физический движок мира
func (m *Manager) Engine() *physics.World {
	return m.engine
}

// SetFactory устанавливает фабрику объектов для обратного доступа
func (m *Manager) SetFactory(f *Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factory = f
}

// GetFactory возвращает фабрику объектов
func (m *Manager) GetFactory() *Factory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.factory
}

// AddWorldObject добавляет объект в реестр и его тело в движок
func (m *Manager) AddWorldObject(obj *WorldObject) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.objects[obj.ID]; exists {
		log.Printf("[World] Объект %s уже существует, замена", obj.ID)
		m.removeLocked(obj.ID)
	}

	m.objects[obj.ID] = obj
	if obj.Body != nil {
		m.engine.AddBody(obj.Body)
	}
}

// GetWorldObject возвращает объект по ID
func (m *Manager) GetWorldObject(id string) (*WorldObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[id]
	return obj, ok
}

// GetAllWorldObjects возвращает срез всех объектов мира
func (m *Manager) GetAllWorldObjects() []*WorldObject {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make([]*WorldObject, 0, len(m.objects))
	for _, obj := range m.objects {
		objects = append(objects, obj)
	}
	return objects
}

// ObjectCount возвращает количество объектов в мире
func (m *Manager) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// RemoveObject удаляет объект из реестра и его тело из движка
func (m *Manager) RemoveObject(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *Manager) removeLocked(id string) {
	obj, ok := m.objects[id]
	if !ok {
		return
	}
	if obj.Body != nil {
		m.engine.RemoveBody(obj.Body)
	}
	delete(m.objects, id)
}

// UpdateObjectPosition телепортирует объект в новую позицию
func (m *Manager) UpdateObjectPosition(id string, position Vector3) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[id]
	if !ok {
		return
	}
	obj.Position = position
	if obj.Body != nil {
		obj.Body.Position = position.ToVec3()
		obj.Body.AABBNeedsUpdate = true
		obj.Body.WakeUp()
	}
}

// UpdateObjectRotation задает вращение объекта
func (m *Manager) UpdateObjectRotation(id string, rotation Quaternion) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[id]
	if !ok {
		return
	}
	obj.Rotation = rotation
	if obj.Body != nil {
		obj.Body.Quaternion = rotation.ToQuat()
		obj.Body.AABBNeedsUpdate = true
	}
}

// ApplyImpulse применяет импульс к центру масс объекта
func (m *Manager) ApplyImpulse(id string, impulse Vector3) bool {
	m.mu.RLock()
	obj, ok := m.objects[id]
	m.mu.RUnlock()

	if !ok || obj.Body == nil {
		return false
	}

	obj.Body.WakeUp()
	obj.Body.ApplyImpulse(impulse.ToVec3(), physics.Vec3{})
	return true
}

// Step продвигает физику на deltaTime секунд реального времени и
// синхронизирует позиции объектов из движка.
func (m *Manager) Step(deltaTime float64) {
	m.engine.Step(m.fixedTimeStep, deltaTime, m.maxSubSteps)
	m.syncFromEngine()
}

// syncFromEngine переносит состояние тел движка в объекты мира
func (m *Manager) syncFromEngine() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, obj := range m.objects {
		if obj.Body == nil {
			continue
		}
		obj.Position = FromVec3(obj.Body.InterpolatedPosition)
		obj.Rotation = FromQuat(obj.Body.InterpolatedQuaternion)
		obj.Velocity = FromVec3(obj.Body.Velocity)
	}
}

// RaycastGround находит высоту поверхности под точкой. Возвращает
// Y точки попадания и признак попадания.
func (m *Manager) RaycastGround(x, z float64, fromHeight float64) (float64, bool) {
	from := physics.Vec3{x, fromHeight, z}
	to := physics.Vec3{x, -fromHeight, z}

	var result physics.RaycastResult
	hit := m.engine.RaycastClosest(from, to, physics.DefaultRayOptions(), &result)
	if !hit {
		return 0, false
	}
	return result.HitPointWorld[1], true
}
