package ws

import (
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"x-phys/internal/game"
	"x-phys/internal/physics"
	"x-phys/internal/telemetry"
	"x-phys/internal/world"
)

const (
	DefaultUpdateInterval = 50 * time.Millisecond // Интервал отправки обновлений
)

// MessageHandler - тип функции обработчика сообщений
type MessageHandler func(conn *PlayerConnection, message interface{}) error

// PlayerConnection представляет подключенного игрока
type PlayerConnection struct {
	ID       string      // Уникальный ID подключения
	ObjectID string      // ID объекта игрока в мире
	Conn     *SafeWriter // WebSocket соединение
	JoinTime time.Time   // Время подключения
}

// WSServer представляет WebSocket сервер с поддержкой потокобезопасной записи
type WSServer struct {
	upgrader       websocket.Upgrader
	worldManager   *world.Manager
	factory        *world.Factory
	serializer     *WorldSerializer
	gameTicker     *game.GameTicker
	handlers       map[string]MessageHandler
	updateInterval time.Duration

	// Управление игроками
	players   map[string]*PlayerConnection // connectionID -> PlayerConnection
	playersMu sync.RWMutex
}

// NewWSServer создает новый экземпляр WebSocket сервера
func NewWSServer(worldManager *world.Manager, factory *world.Factory, serializer *WorldSerializer, gameTicker *game.GameTicker) *WSServer {
	s := &WSServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		worldManager:   worldManager,
		factory:        factory,
		serializer:     serializer,
		gameTicker:     gameTicker,
		handlers:       make(map[string]MessageHandler),
		updateInterval: DefaultUpdateInterval,
		players:        make(map[string]*PlayerConnection),
	}

	// Стандартные обработчики
	s.RegisterHandler(MessageTypePing, s.handlePing)
	s.RegisterHandler(MessageTypeCommand, s.handleCmd)

	if gameTicker != nil {
		gameTicker.SetPlayerBroadcaster(s)
	}

	return s
}

// RegisterHandler регистрирует обработчик для типа сообщения
func (s *WSServer) RegisterHandler(messageType string, handler MessageHandler) {
	s.handlers[messageType] = handler
}

// HandleWS обрабатывает WebSocket соединения
func (s *WSServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WSServer] Ошибка при установке WebSocket соединения: %v", err)
		return
	}

	writer := NewSafeWriter(conn)
	player, err := s.createPlayer(writer)
	if err != nil {
		log.Printf("[WSServer] Ошибка создания игрока: %v", err)
		writer.Close()
		return
	}

	s.playersMu.Lock()
	s.players[player.ID] = player
	s.playersMu.Unlock()

	log.Printf("[WSServer] Подключен игрок %s (объект %s)", player.ID, player.ObjectID)

	// Сообщаем клиенту его ID и отправляем начальное состояние мира
	writer.WriteJSON(map[string]interface{}{
		"type":        "player_id",
		"player_id":   player.ID,
		"object_id":   player.ObjectID,
		"server_time": GetCurrentServerTime(),
	})
	if err := s.serializer.SendCreateForAllObjects(writer); err != nil {
		log.Printf("[WSServer] Ошибка при отправке существующих объектов: %v", err)
	}

	// Стрим обновлений до закрытия соединения
	done := make(chan struct{})
	go s.streamStates(player, done)

	defer func() {
		close(done)
		s.removePlayer(player)
		writer.Close()
	}()

	// Обрабатываем входящие сообщения
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[WSServer] Соединение %s закрыто: %v", player.ID, err)
			return
		}

		msg, err := ParseMessage(data)
		if err != nil {
			log.Printf("[WSServer] Ошибка разбора сообщения от %s: %v", player.ID, err)
			continue
		}

		msgType, err := GetMessageType(data)
		if err != nil {
			continue
		}

		handler, ok := s.handlers[msgType]
		if !ok {
			log.Printf("[WSServer] Нет обработчика для типа сообщения: %s", msgType)
			continue
		}

		if err := handler(player, msg); err != nil {
			log.Printf("[WSServer] Ошибка обработки сообщения типа %s: %v", msgType, err)
		}
	}
}

// createPlayer создает объект игрока над террейном
func (s *WSServer) createPlayer(writer *SafeWriter) (*PlayerConnection, error) {
	playerID := uuid.NewString()
	objectID := "player_obj_" + playerID

	// Случайная точка спауна над поверхностью
	spawnX := float64(rand.Intn(200) - 100)
	spawnZ := float64(rand.Intn(200) - 100)
	spawnY := s.factory.GetSpawnHeight(spawnX, spawnZ) + 50

	// Случайный радиус (2.0 - 20.0), масса линейно от радиуса
	radius := 2.0 + rand.Float64()*18.0
	mass := radius * 1.0

	// Случайный скилл прыгучести (0.0 - 0.8)
	bounceSkill := rand.Float64() * 0.8

	colors := []string{"#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff00ff", "#00ffff", "#ffa500", "#800080"}
	color := colors[rand.Intn(len(colors))]

	obj, err := s.factory.NewPlayerWithBounceSkill(
		objectID,
		world.Vector3{X: spawnX, Y: spawnY, Z: spawnZ},
		radius, mass, bounceSkill, color,
	)
	if err != nil {
		return nil, err
	}

	player := &PlayerConnection{
		ID:       playerID,
		ObjectID: objectID,
		Conn:     writer,
		JoinTime: time.Now(),
	}

	if s.gameTicker != nil {
		if err := s.gameTicker.AddPlayer(playerID, obj); err != nil {
			log.Printf("[WSServer] Ошибка регистрации игрока в тикере: %v", err)
		}
	}

	// Остальным клиентам объект игрока приходит отдельным create
	s.broadcastExcept(player.ID, func(w *SafeWriter) error {
		return s.serializer.SendCreateForObject(w, obj)
	})

	return player, nil
}

// removePlayer удаляет игрока и его объект из мира
func (s *WSServer) removePlayer(player *PlayerConnection) {
	s.playersMu.Lock()
	delete(s.players, player.ID)
	s.playersMu.Unlock()

	s.worldManager.RemoveObject(player.ObjectID)
	if s.gameTicker != nil {
		s.gameTicker.RemovePlayer(player.ID)
	}

	s.broadcastExcept(player.ID, func(w *SafeWriter) error {
		return w.WriteJSON(map[string]interface{}{
			"type":        MessageTypeRemove,
			"id":          player.ObjectID,
			"server_time": GetCurrentServerTime(),
		})
	})

	log.Printf("[WSServer] Игрок %s отключен, объект %s удален", player.ID, player.ObjectID)
}

// broadcastExcept выполняет send для всех клиентов, кроме указанного
func (s *WSServer) broadcastExcept(exceptID string, send func(*SafeWriter) error) {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()

	for id, p := range s.players {
		if id == exceptID {
			continue
		}
		if err := send(p.Conn); err != nil {
			log.Printf("[WSServer] Ошибка отправки клиенту %s: %v", id, err)
		}
	}
}

// BroadcastPlayerSizeUpdate отправляет всем клиентам новый размер игрока
func (s *WSServer) BroadcastPlayerSizeUpdate(playerID string, newRadius, newMass float64) {
	var objectID string
	if s.gameTicker != nil {
		if p := s.gameTicker.GetPlayer(playerID); p != nil {
			objectID = p.ObjectID
		}
	}
	if objectID == "" {
		return
	}

	msg := map[string]interface{}{
		"type":        "size_update",
		"id":          objectID,
		"radius":      newRadius,
		"mass":        newMass,
		"server_time": GetCurrentServerTime(),
	}

	s.broadcastExcept("", func(w *SafeWriter) error {
		return w.WriteJSON(msg)
	})
}

// streamStates стримит состояние объектов подключенному клиенту
func (s *WSServer) streamStates(player *PlayerConnection, done <-chan struct{}) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			for _, obj := range s.worldManager.GetAllWorldObjects() {
				// Статика не двигается, обновления не нужны
				if obj.Body == nil || obj.Body.Type != physics.BodyDynamic {
					continue
				}

				if err := s.serializer.SendUpdateForObject(player.Conn, obj); err != nil {
					return
				}

				if obj.ID == player.ObjectID {
					telemetry.GlobalTelemetry.LogObjectState(
						obj.ID, "player", sleepStateName(obj.Body.SleepState),
						telemetry.Vector3{X: obj.Position.X, Y: obj.Position.Y, Z: obj.Position.Z},
						telemetry.Vector3{X: obj.Velocity.X, Y: obj.Velocity.Y, Z: obj.Velocity.Z},
						obj.Body.Mass, playerRadius(obj),
					)
				}
			}
			telemetry.GlobalTelemetry.PrintSummary()
		}
	}
}

func playerRadius(obj *world.WorldObject) float64 {
	if obj.Shape != nil && obj.Shape.Sphere != nil {
		return obj.Shape.Sphere.Radius
	}
	return 0
}

func sleepStateName(state physics.SleepState) string {
	switch state {
	case physics.StateAwake:
		return "awake"
	case physics.StateSleepy:
		return "sleepy"
	case physics.StateSleeping:
		return "sleeping"
	}
	return "unknown"
}

// handlePing отвечает pong с временными метками
func (s *WSServer) handlePing(conn *PlayerConnection, message interface{}) error {
	ping, ok := message.(*PingMessage)
	if !ok {
		return nil
	}
	return conn.Conn.WriteJSON(NewPongMessage(ping.ClientTime))
}

// handleCmd применяет импульс к объекту игрока по команде клиента
func (s *WSServer) handleCmd(conn *PlayerConnection, message interface{}) error {
	cmd, ok := message.(*CommandMessage)
	if !ok {
		return nil
	}

	control := world.GetControlConfig()
	strength := control.BaseImpulse * control.ImpulseMultiplier
	var dir world.Vector3

	switch cmd.Cmd {
	case "LEFT":
		dir = world.Vector3{X: -1}
	case "RIGHT":
		dir = world.Vector3{X: 1}
	case "UP":
		dir = world.Vector3{Z: -1}
	case "DOWN":
		dir = world.Vector3{Z: 1}
	case "SPACE":
		dir = world.Vector3{Y: 1}
		strength *= control.DistanceMultiplier
	case "MOUSE_VECTOR":
		data, ok := cmd.Data.(map[string]interface{})
		if !ok {
			log.Printf("[WSServer] Неверный формат вектора мыши от %s", conn.ID)
			return nil
		}
		x, _ := data["x"].(float64)
		y, _ := data["y"].(float64)
		z, _ := data["z"].(float64)

		length := math.Sqrt(x*x + y*y + z*z)
		if length > 0 {
			x, y, z = x/length, y/length, z/length
		}
		dir = world.Vector3{X: x, Y: y, Z: z}
	default:
		log.Printf("[WSServer] Неизвестная команда от %s: %s", conn.ID, cmd.Cmd)
		return nil
	}

	if strength > control.MaxImpulse {
		strength = control.MaxImpulse
	}

	impulse := world.Vector3{X: dir.X * strength, Y: dir.Y * strength, Z: dir.Z * strength}
	if s.worldManager.ApplyImpulse(conn.ObjectID, impulse) {
		if obj, ok := s.worldManager.GetWorldObject(conn.ObjectID); ok && obj.Body != nil {
			telemetry.GlobalTelemetry.LogImpulse(
				obj.ID, "player",
				telemetry.Vector3{X: obj.Position.X, Y: obj.Position.Y, Z: obj.Position.Z},
				telemetry.Vector3{X: obj.Velocity.X, Y: obj.Velocity.Y, Z: obj.Velocity.Z},
				obj.Body.Mass, playerRadius(obj),
				telemetry.Vector3{X: impulse.X, Y: impulse.Y, Z: impulse.Z},
			)
		}
	} else {
		log.Printf("[WSServer] Не удалось применить импульс к объекту %s", conn.ObjectID)
	}

	return conn.Conn.WriteJSON(NewAckMessage(cmd.Cmd, cmd.ClientTime))
}
