package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetCurrentServerTime возвращает текущее серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// ParseMessage разбирает входящее сообщение в соответствующий тип
func ParseMessage(data []byte) (interface{}, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	switch baseMessage.Type {
	case MessageTypeCreate, MessageTypeUpdate, MessageTypeRemove:
		var msg ObjectMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing object message: %w", err)
		}
		return &msg, nil

	case MessageTypeCommand:
		var msg CommandMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing command message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ping message: %w", err)
		}
		return &msg, nil

	case MessageTypePong:
		var msg PongMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing pong message: %w", err)
		}
		return &msg, nil

	case MessageTypeAck:
		var msg AckMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ack message: %w", err)
		}
		return &msg, nil

	case MessageTypeInfo:
		var msg InfoMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing info message: %w", err)
		}
		return &msg, nil

	default:
		return nil, errors.New("unknown message type: " + baseMessage.Type)
	}
}

// GetMessageType возвращает тип сообщения на основе входных данных
func GetMessageType(data []byte) (string, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return "", err
	}
	return baseMessage.Type, nil
}

// NewObjectMessage создает новое сообщение о создании объекта
func NewObjectMessage(objectType, id string, x, y, z float64) *ObjectMessage {
	return &ObjectMessage{
		Type:       MessageTypeCreate,
		ID:         id,
		ObjectType: objectType,
		X:          x,
		Y:          y,
		Z:          z,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewUpdateMessage создает новое сообщение об обновлении объекта
func NewUpdateMessage(id string, x, y, z, qx, qy, qz, qw float64) *ObjectMessage {
	return &ObjectMessage{
		Type:       MessageTypeUpdate,
		ID:         id,
		X:          x,
		Y:          y,
		Z:          z,
		QX:         qx,
		QY:         qy,
		QZ:         qz,
		QW:         qw,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewPongMessage создает новый ответ на пинг
func NewPongMessage(clientTime int64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewAckMessage создает новое сообщение-подтверждение команды
func NewAckMessage(cmd string, clientTime int64) *AckMessage {
	return &AckMessage{
		Type:       MessageTypeAck,
		Cmd:        cmd,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewInfoMessage создает новое информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{
		Type:    MessageTypeInfo,
		Message: message,
	}
}
