package game

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"x-phys/internal/world"
)

// PlayerUpdateBroadcaster интерфейс для отправки обновлений игрока клиентам
type PlayerUpdateBroadcaster interface {
	BroadcastPlayerSizeUpdate(playerID string, newRadius float64, newMass float64)
}

// TickSystem интерфейс для всех игровых систем
type TickSystem interface {
	Update(deltaTime time.Duration) error
	GetName() string
	GetPriority() int // Приоритет выполнения (меньше = раньше)
}

// GameTicker основной менеджер игрового цикла
type GameTicker struct {
	// Конфигурация
	targetTPS    int           // Целевая частота тиков в секунду
	tickDuration time.Duration // Длительность одного тика
	maxTickTime  time.Duration // Максимальное время на один тик

	// Состояние
	isRunning    bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time

	// Компоненты игры
	worldManager *world.Manager
	players      map[string]*Player
	playersMutex sync.RWMutex

	// Системы
	systems      []TickSystem
	systemsMutex sync.RWMutex

	// Мониторинг производительности
	perfMonitor *PerformanceMonitor

	// Управление
	ctx    context.Context
	cancel context.CancelFunc

	// Метрики
	averageTickTime time.Duration
	maxObservedTick time.Duration
	slowTicks       uint64

	// Логирование
	logger           *log.Logger
	warningThreshold time.Duration

	// Интерфейс для отправки обновлений игроков
	playerBroadcaster PlayerUpdateBroadcaster
}

// Player представляет игрока в системе
type Player struct {
	ID       string
	ObjectID string
	Radius   float64
	Mass     float64
	Score    int64
	JoinTime time.Time
}

// NewGameTicker создает новый игровой тикер
func NewGameTicker(targetTPS int, worldManager *world.Manager, logger *log.Logger) *GameTicker {
	if targetTPS <= 0 {
		targetTPS = 20 // По умолчанию 20 TPS
	}
	if logger == nil {
		logger = log.Default()
	}

	tickDuration := time.Second / time.Duration(targetTPS)
	ctx, cancel := context.WithCancel(context.Background())

	gt := &GameTicker{
		targetTPS:        targetTPS,
		tickDuration:     tickDuration,
		maxTickTime:      tickDuration * 2,
		worldManager:     worldManager,
		players:          make(map[string]*Player),
		systems:          make([]TickSystem, 0),
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4),
		ctx:              ctx,
		cancel:           cancel,
		logger:           logger,
		warningThreshold: tickDuration / 2,
	}

	// Физика всегда выполняется первой
	gt.RegisterSystem(&physicsSystem{manager: worldManager})

	return gt
}

// physicsSystem продвигает физический мир на время тика
type physicsSystem struct {
	manager *world.Manager
}

func (p *physicsSystem) GetName() string  { return "physics" }
func (p *physicsSystem) GetPriority() int { return 0 }

func (p *physicsSystem) Update(deltaTime time.Duration) error {
	p.manager.Step(deltaTime.Seconds())
	return nil
}

// Start запускает игровой цикл
func (gt *GameTicker) Start() error {
	if gt.isRunning {
		return nil // Уже запущен
	}

	gt.isRunning = true
	gt.startTime = time.Now()
	gt.lastTickTime = gt.startTime

	gt.logger.Printf("[GameTicker] Запуск игрового цикла: %d TPS (тик каждые %v)",
		gt.targetTPS, gt.tickDuration)

	go gt.gameLoop()
	return nil
}

// Stop останавливает игровой цикл
func (gt *GameTicker) Stop() {
	if !gt.isRunning {
		return
	}

	gt.logger.Printf("[GameTicker] Остановка игрового цикла (выполнено тиков: %d)", gt.tickCount)
	gt.cancel()
	gt.isRunning = false
}

// RegisterSystem добавляет систему в игровой цикл
func (gt *GameTicker) RegisterSystem(system TickSystem) {
	gt.systemsMutex.Lock()
	defer gt.systemsMutex.Unlock()

	gt.systems = append(gt.systems, system)

	// Сортируем по приоритету (меньше = выше приоритет)
	for i := len(gt.systems) - 1; i > 0; i-- {
		if gt.systems[i].GetPriority() < gt.systems[i-1].GetPriority() {
			gt.systems[i], gt.systems[i-1] = gt.systems[i-1], gt.systems[i]
		} else {
			break
		}
	}

	gt.perfMonitor.initSystemMetrics(system.GetName())

	gt.logger.Printf("[GameTicker] Зарегистрирована система: %s (приоритет: %d)",
		system.GetName(), system.GetPriority())
}

// Systems возвращает имена систем в порядке выполнения
func (gt *GameTicker) Systems() []string {
	gt.systemsMutex.RLock()
	defer gt.systemsMutex.RUnlock()

	names := make([]string, len(gt.systems))
	for i, s := range gt.systems {
		names[i] = s.GetName()
	}
	return names
}

// gameLoop основной игровой цикл
func (gt *GameTicker) gameLoop() {
	ticker := time.NewTicker(gt.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-gt.ctx.Done():
			return
		case tickTime := <-ticker.C:
			gt.executeTick(tickTime)
		}
	}
}

// executeTick выполняет один игровой тик
func (gt *GameTicker) executeTick(tickTime time.Time) {
	tickStart := time.Now()
	deltaTime := tickTime.Sub(gt.lastTickTime)

	if deltaTime > gt.tickDuration*2 {
		gt.logger.Printf("[GameTicker] ПРЕДУПРЕЖДЕНИЕ: Большая задержка между тиками: %v (ожидалось: %v)",
			deltaTime, gt.tickDuration)
	}

	gt.tickCount++
	gt.lastTickTime = tickTime

	gt.executeAllSystems(deltaTime)

	totalTickTime := time.Since(tickStart)
	gt.updateTickMetrics(totalTickTime)
	gt.checkPerformance(totalTickTime)
}

// executeAllSystems выполняет все зарегистрированные системы
func (gt *GameTicker) executeAllSystems(deltaTime time.Duration) {
	gt.systemsMutex.RLock()
	systems := make([]TickSystem, len(gt.systems))
	copy(systems, gt.systems)
	gt.systemsMutex.RUnlock()

	for _, system := range systems {
		gt.executeSystem(system, deltaTime)
	}
}

// executeSystem выполняет одну систему с замером времени
func (gt *GameTicker) executeSystem(system TickSystem, deltaTime time.Duration) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			gt.logger.Printf("[GameTicker] КРИТИЧЕСКАЯ ОШИБКА в системе %s: %v", systemName, r)
			gt.perfMonitor.recordError(systemName)
		}
	}()

	err := system.Update(deltaTime)
	gt.perfMonitor.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		gt.logger.Printf("[GameTicker] Ошибка в системе %s: %v", systemName, err)
		gt.perfMonitor.recordError(systemName)
	}
}

// AddPlayer регистрирует игрока и его объект мира в игровом цикле
func (gt *GameTicker) AddPlayer(playerID string, obj *world.WorldObject) error {
	if obj == nil || obj.Shape == nil || obj.Shape.Sphere == nil {
		return fmt.Errorf("объект игрока %s должен содержать геометрию сферы", playerID)
	}

	gt.playersMutex.Lock()
	defer gt.playersMutex.Unlock()

	gt.players[playerID] = &Player{
		ID:       playerID,
		ObjectID: obj.ID,
		Radius:   obj.Shape.Sphere.Radius,
		Mass:     obj.Shape.Sphere.Mass,
		JoinTime: time.Now(),
	}

	gt.logger.Printf("[GameTicker] Добавлен игрок %s (объект %s, радиус %.1f, масса %.1f)",
		playerID, obj.ID, obj.Shape.Sphere.Radius, obj.Shape.Sphere.Mass)
	return nil
}

// RemovePlayer удаляет игрока из игрового цикла
func (gt *GameTicker) RemovePlayer(playerID string) {
	gt.playersMutex.Lock()
	defer gt.playersMutex.Unlock()

	delete(gt.players, playerID)
	gt.logger.Printf("[GameTicker] Удален игрок %s", playerID)
}

// GetPlayer возвращает игрока по ID
func (gt *GameTicker) GetPlayer(playerID string) *Player {
	gt.playersMutex.RLock()
	defer gt.playersMutex.RUnlock()
	return gt.players[playerID]
}

// GetAllPlayers возвращает копию карты игроков
func (gt *GameTicker) GetAllPlayers() map[string]*Player {
	gt.playersMutex.RLock()
	defer gt.playersMutex.RUnlock()

	players := make(map[string]*Player, len(gt.players))
	for id, player := range gt.players {
		cp := *player
		players[id] = &cp
	}
	return players
}

// SetPlayerBroadcaster устанавливает интерфейс для отправки обновлений игроков
func (gt *GameTicker) SetPlayerBroadcaster(broadcaster PlayerUpdateBroadcaster) {
	gt.playerBroadcaster = broadcaster
}

// UpdatePlayerMass изменяет массу игрока и пересчитывает радиус.
// Радиус растет как корень кубический из отношения масс.
func (gt *GameTicker) UpdatePlayerMass(playerID string, massChange float64) {
	gt.playersMutex.Lock()
	defer gt.playersMutex.Unlock()

	player, exists := gt.players[playerID]
	if !exists {
		gt.logger.Printf("[GameTicker] Игрок %s не найден для обновления массы", playerID)
		return
	}

	oldMass := math.Max(player.Mass, 1.0)
	oldRadius := player.Radius
	player.Mass += massChange

	newRadius := oldRadius * math.Pow(player.Mass/oldMass, 1.0/3.0)
	player.Radius = newRadius

	gt.logger.Printf("[GameTicker] Игрок %s: масса %.1f->%.1f, радиус %.2f->%.2f",
		playerID, oldMass, player.Mass, oldRadius, newRadius)

	// Синхронизация с физическим движком
	if gt.worldManager != nil {
		if factory := gt.worldManager.GetFactory(); factory != nil {
			if err := factory.UpdateObjectMassAndRadius(player.ObjectID, player.Mass, newRadius); err != nil {
				gt.logger.Printf("[GameTicker] Ошибка обновления тела игрока %s: %v", playerID, err)
				return
			}
		}
	}

	// Отправляем обновление клиентам при заметном изменении радиуса
	if math.Abs(newRadius-oldRadius) <= 0.1 || gt.playerBroadcaster == nil {
		return
	}
	gt.playerBroadcaster.BroadcastPlayerSizeUpdate(playerID, newRadius, player.Mass)
}

// GetTickCount возвращает текущее количество тиков
func (gt *GameTicker) GetTickCount() uint64 {
	return gt.tickCount
}

// GetStats возвращает статистику игрового цикла
func (gt *GameTicker) GetStats() map[string]interface{} {
	gt.playersMutex.RLock()
	defer gt.playersMutex.RUnlock()

	uptime := time.Since(gt.startTime)
	actualTPS := 0.0
	if uptime > 0 {
		actualTPS = float64(gt.tickCount) / uptime.Seconds()
	}

	return map[string]interface{}{
		"target_tps":        gt.targetTPS,
		"actual_tps":        actualTPS,
		"tick_count":        gt.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": gt.averageTickTime,
		"max_observed_tick": gt.maxObservedTick,
		"slow_ticks":        gt.slowTicks,
		"is_running":        gt.isRunning,
		"systems_count":     len(gt.systems),
		"players_count":     len(gt.players),
	}
}

func (gt *GameTicker) updateTickMetrics(tickTime time.Duration) {
	if tickTime > gt.maxObservedTick {
		gt.maxObservedTick = tickTime
	}

	// Простое скользящее среднее
	if gt.averageTickTime == 0 {
		gt.averageTickTime = tickTime
	} else {
		gt.averageTickTime = (gt.averageTickTime*9 + tickTime) / 10
	}
}

func (gt *GameTicker) checkPerformance(tickTime time.Duration) {
	if tickTime > gt.maxTickTime {
		gt.slowTicks++
		gt.logger.Printf("[GameTicker] КРИТИЧЕСКОЕ ПРЕДУПРЕЖДЕНИЕ: Тик превысил максимальное время! %v > %v (цель: %v)",
			tickTime, gt.maxTickTime, gt.tickDuration)
	} else if tickTime > gt.warningThreshold {
		gt.slowTicks++
		gt.logger.Printf("[GameTicker] ПРЕДУПРЕЖДЕНИЕ: Медленный тик: %v (цель: %v)",
			tickTime, gt.tickDuration)
	}
}
