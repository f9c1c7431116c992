package ws

import (
	"log"
	"math"

	"x-phys/internal/world"
)

// WorldSerializer отвечает за сериализацию объектов мира для отправки клиенту
type WorldSerializer struct {
	worldManager *world.Manager
}

// NewWorldSerializer создает новый экземпляр WorldSerializer
func NewWorldSerializer(worldManager *world.Manager) *WorldSerializer {
	return &WorldSerializer{worldManager: worldManager}
}

// Вспомогательная функция для проверки и замены NaN
func safeFloat(val, defaultVal float64) float64 {
	if math.IsNaN(val) {
		return defaultVal
	}
	return val
}

// SendCreateForAllObjects отправляет информацию о всех объектах клиенту
func (s *WorldSerializer) SendCreateForAllObjects(wsWriter *SafeWriter) error {
	for _, obj := range s.worldManager.GetAllWorldObjects() {
		if err := s.SendCreateForObject(wsWriter, obj); err != nil {
			return err
		}
	}
	return nil
}

// SendCreateForObject отправляет сообщение о создании одного объекта
func (s *WorldSerializer) SendCreateForObject(wsWriter *SafeWriter, obj *world.WorldObject) error {
	if obj.Shape == nil {
		return nil
	}

	msg := &ObjectMessage{
		Type:       MessageTypeCreate,
		ID:         obj.ID,
		ObjectType: obj.Shape.Type.String(),
		X:          safeFloat(obj.Position.X, 0.0),
		Y:          safeFloat(obj.Position.Y, 0.0),
		Z:          safeFloat(obj.Position.Z, 0.0),
		Color:      obj.Color,
		ServerTime: GetCurrentServerTime(),
	}

	switch obj.Shape.Type {
	case world.SPHERE:
		msg.Radius = safeFloat(obj.Shape.Sphere.Radius, 1.0)
		msg.Mass = safeFloat(obj.Shape.Sphere.Mass, 1.0)

	case world.BOX:
		msg.Width = safeFloat(obj.Shape.Box.Width, 1.0)
		msg.Height = safeFloat(obj.Shape.Box.Height, 1.0)
		msg.Depth = safeFloat(obj.Shape.Box.Depth, 1.0)
		msg.Mass = safeFloat(obj.Shape.Box.Mass, 1.0)

	case world.TERRAIN:
		t := obj.Shape.Terrain
		safeHeightData := make([]float64, len(t.HeightData))
		for i, h := range t.HeightData {
			safeHeightData[i] = safeFloat(h, 0.0)
		}
		msg.HeightData = safeHeightData
		msg.HeightmapW = t.Width
		msg.HeightmapH = t.Depth
		msg.ScaleX = safeFloat(t.ScaleX, 1.0)
		msg.ScaleY = safeFloat(t.ScaleY, 1.0)
		msg.ScaleZ = safeFloat(t.ScaleZ, 1.0)
		msg.MinHeight = safeFloat(obj.MinHeight, 0.0)
		msg.MaxHeight = safeFloat(obj.MaxHeight, 10.0)
	}

	if err := wsWriter.WriteJSON(msg); err != nil {
		log.Printf("[Serialize] Ошибка отправки объекта %s: %v", obj.ID, err)
		return err
	}
	return nil
}

// SendUpdateForObject отправляет обновление состояния объекта клиенту
func (s *WorldSerializer) SendUpdateForObject(wsWriter *SafeWriter, obj *world.WorldObject) error {
	msg := &ObjectMessage{
		Type:       MessageTypeUpdate,
		ID:         obj.ID,
		X:          safeFloat(obj.Position.X, 0.0),
		Y:          safeFloat(obj.Position.Y, 0.0),
		Z:          safeFloat(obj.Position.Z, 0.0),
		QX:         safeFloat(obj.Rotation.X, 0.0),
		QY:         safeFloat(obj.Rotation.Y, 0.0),
		QZ:         safeFloat(obj.Rotation.Z, 0.0),
		QW:         safeFloat(obj.Rotation.W, 1.0), // 1.0 как значение по умолчанию для w
		VX:         safeFloat(obj.Velocity.X, 0.0),
		VY:         safeFloat(obj.Velocity.Y, 0.0),
		VZ:         safeFloat(obj.Velocity.Z, 0.0),
		ServerTime: GetCurrentServerTime(),
	}

	if err := wsWriter.WriteJSON(msg); err != nil {
		log.Printf("[Serialize] Ошибка отправки обновления для объекта %s: %v", obj.ID, err)
		return err
	}
	return nil
}
