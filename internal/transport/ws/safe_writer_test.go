package ws

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestSafeWriter_WriteJSON_Concurrency(t *testing.T) {
	// Создаем тестовый сервер
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		// Читаем все сообщения, убеждаемся, что все дошли корректно
		var receivedMsgs []string
		for i := 0; i < 10; i++ {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				t.Errorf("Error reading message: %v", err)
				return
			}
			receivedMsgs = append(receivedMsgs, string(msg))
		}

		if len(receivedMsgs) != 10 {
			t.Errorf("Expected 10 messages, got %d", len(receivedMsgs))
		}

		// Все сообщения должны быть разными
		uniq := make(map[string]struct{})
		for _, msg := range receivedMsgs {
			uniq[msg] = struct{}{}
		}
		if len(uniq) != 10 {
			t.Errorf("Expected 10 unique messages, got %d", len(uniq))
		}
	}))
	defer server.Close()

	// Подключаемся к тестовому серверу
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	defer wsConn.Close()

	writer := NewSafeWriter(wsConn)

	// Запускаем 10 горутин, каждая отправляет свое сообщение
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			// Случайная задержка увеличивает вероятность параллельной записи
			time.Sleep(time.Duration(id) * time.Millisecond)

			msg := struct {
				ID  int    `json:"id"`
				Msg string `json:"msg"`
			}{
				ID:  id,
				Msg: "Test message",
			}

			if err := writer.WriteJSON(msg); err != nil {
				t.Errorf("Error writing message: %v", err)
			}
		}(i)
	}

	wg.Wait()
}

func TestSafeWriter_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		// Ожидаем ошибку чтения: соединение будет закрыто клиентом
		conn.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}

	writer := NewSafeWriter(wsConn)
	if err := writer.Close(); err != nil {
		t.Errorf("Error closing connection: %v", err)
	}

	// Попытка записи в закрытое соединение должна вернуть ошибку
	if err := writer.WriteJSON("test"); err == nil {
		t.Error("Expected error when writing to closed connection, got nil")
	}
}

func TestSanitizeMapValues(t *testing.T) {
	data := map[string]interface{}{
		"ok":  1.5,
		"bad": math.NaN(),
		"nested": map[string]interface{}{
			"bad": math.NaN(),
		},
		"list": []interface{}{math.NaN(), 2.0},
	}

	sanitizeMapValues(data)

	if data["bad"] != 0.0 {
		t.Errorf("Expected NaN replaced with 0, got %v", data["bad"])
	}
	if data["nested"].(map[string]interface{})["bad"] != 0.0 {
		t.Errorf("Expected nested NaN replaced with 0")
	}
	if data["list"].([]interface{})[0] != 0.0 {
		t.Errorf("Expected NaN in list replaced with 0")
	}
	if data["ok"] != 1.5 {
		t.Errorf("Expected valid value untouched, got %v", data["ok"])
	}
}
