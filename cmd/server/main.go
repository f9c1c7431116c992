package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"x-phys/internal/game"
	"x-phys/internal/transport/ws"
	"x-phys/internal/world"
)

// Config описывает конфигурацию сервера
type Config struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	TargetTPS int    `yaml:"target_tps"`

	Physics struct {
		GravityY         float64 `yaml:"gravity_y"`
		LinearDamping    float64 `yaml:"linear_damping"`
		AngularDamping   float64 `yaml:"angular_damping"`
		Friction         float64 `yaml:"friction"`
		Restitution      float64 `yaml:"restitution"`
		SolverIterations int     `yaml:"solver_iterations"`
	} `yaml:"physics"`

	Control struct {
		BaseImpulse float64 `yaml:"base_impulse"`
		MaxImpulse  float64 `yaml:"max_impulse"`
	} `yaml:"control"`
}

// defaultConfig возвращает конфигурацию по умолчанию
func defaultConfig() Config {
	cfg := Config{
		Addr:      ":8080",
		StaticDir: "./dist",
		TargetTPS: 20,
	}
	phys := world.GetPhysicsConfig()
	cfg.Physics.GravityY = phys.World.GravityY
	cfg.Physics.LinearDamping = phys.World.LinearDamping
	cfg.Physics.AngularDamping = phys.World.AngularDamping
	cfg.Physics.Friction = phys.World.Friction
	cfg.Physics.Restitution = phys.World.Restitution
	cfg.Physics.SolverIterations = phys.World.SolverIterations
	cfg.Control.BaseImpulse = phys.Control.BaseImpulse
	cfg.Control.MaxImpulse = phys.Control.MaxImpulse
	return cfg
}

// loadConfig читает YAML-конфигурацию, отсутствие файла не ошибка
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Server] Конфигурация %s не найдена, используются значения по умолчанию", path)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	log.Printf("[Server] Загружена конфигурация из %s", path)
	return cfg, nil
}

// applyPhysicsConfig переносит настройки из файла в глобальную конфигурацию физики
func applyPhysicsConfig(cfg Config) {
	phys := world.GetPhysicsConfig()
	phys.World.GravityY = cfg.Physics.GravityY
	phys.World.LinearDamping = cfg.Physics.LinearDamping
	phys.World.AngularDamping = cfg.Physics.AngularDamping
	phys.World.Friction = cfg.Physics.Friction
	phys.World.Restitution = cfg.Physics.Restitution
	phys.World.SolverIterations = cfg.Physics.SolverIterations
	phys.Control.BaseImpulse = cfg.Control.BaseImpulse
	phys.Control.MaxImpulse = cfg.Control.MaxImpulse
	world.SetPhysicsConfig(phys)
}

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("[Server] Ошибка чтения конфигурации: %v", err)
	}
	applyPhysicsConfig(cfg)

	// Менеджер мира с физическим движком и фабрика объектов
	worldManager := world.NewManager()
	factory := world.NewFactory(worldManager)

	// Стартовая сцена: террейн и демонстрационные объекты
	demo := world.NewDemoObjectsCreator(factory)
	demo.CreateAll()

	// Игровой цикл
	gameTicker := game.NewGameTicker(cfg.TargetTPS, worldManager, log.Default())
	if err := gameTicker.Start(); err != nil {
		log.Fatalf("[Server] Ошибка запуска игрового цикла: %v", err)
	}
	defer gameTicker.Stop()

	// WebSocket сервер
	serializer := ws.NewWorldSerializer(worldManager)
	wsServer := ws.NewWSServer(worldManager, factory, serializer, gameTicker)

	http.HandleFunc("/ws", wsServer.HandleWS)

	// Статика клиента
	if _, err := os.Stat(cfg.StaticDir); os.IsNotExist(err) {
		log.Printf("[Server] Предупреждение: директория %s не существует", cfg.StaticDir)
	}
	http.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	log.Printf("[Server] Статика: %s", cfg.StaticDir)
	log.Printf("[Server] Запуск на %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatal(err)
	}
}
