package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Простой тестовый клиент: подключается к серверу, шлет пинг и
// несколько команд движения, печатает входящие сообщения.
func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "адрес WebSocket сервера")
	flag.Parse()

	log.Printf("Подключение к %s", *addr)

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("Ошибка подключения: %v", err)
	}
	defer conn.Close()

	log.Printf("Успешно подключен")

	// Отдельная горутина шлет команды
	go func() {
		commands := []string{"RIGHT", "RIGHT", "SPACE", "LEFT", "UP", "DOWN"}
		for _, cmd := range commands {
			msg := map[string]interface{}{
				"type":        "cmd",
				"cmd":         cmd,
				"client_time": time.Now().UnixMilli(),
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Ошибка отправки команды: %v", err)
				return
			}
			time.Sleep(500 * time.Millisecond)
		}

		// Пинг в конце для замера задержки
		conn.WriteJSON(map[string]interface{}{
			"type":        "ping",
			"client_time": time.Now().UnixMilli(),
		})
	}()

	// Читаем сообщения от сервера
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			log.Printf("Тест завершен")
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Ошибка чтения сообщения: %v", err)
			return
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ошибка разбора сообщения: %v", err)
			continue
		}

		msgType, ok := msg["type"].(string)
		if !ok {
			log.Printf("Сообщение без типа: %v", msg)
			continue
		}

		switch msgType {
		case "player_id":
			log.Printf("PLAYER_ID: %v, OBJECT_ID: %v", msg["player_id"], msg["object_id"])

		case "create":
			log.Printf("CREATE: %v (%v)", msg["id"], msg["object_type"])

		case "update":
			log.Printf("UPDATE: %v -> (%.2f, %.2f, %.2f)",
				msg["id"], msg["x"], msg["y"], msg["z"])

		case "cmd_ack":
			log.Printf("ACK: %v", msg["cmd"])

		case "pong":
			log.Printf("PONG: задержка %d мс",
				time.Now().UnixMilli()-int64(msg["client_time"].(float64)))

		default:
			log.Printf("Сообщение типа %s", msgType)
		}
	}
}
