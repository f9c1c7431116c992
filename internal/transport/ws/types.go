package ws

// Константы для WebSocket сообщений
const (
	// Типы сообщений
	MessageTypeCreate  = "create"  // Создание объекта
	MessageTypeUpdate  = "update"  // Обновление объекта
	MessageTypeRemove  = "remove"  // Удаление объекта
	MessageTypePing    = "ping"    // Пинг для измерения задержки
	MessageTypePong    = "pong"    // Ответ на пинг
	MessageTypeCommand = "cmd"     // Команда от клиента
	MessageTypeAck     = "cmd_ack" // Подтверждение команды
	MessageTypeInfo    = "info"    // Информационное сообщение
)

// ObjectMessage представляет сообщение о создании или обновлении объекта
type ObjectMessage struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	ObjectType string    `json:"object_type,omitempty"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Z          float64   `json:"z"`
	QX         float64   `json:"qx,omitempty"`
	QY         float64   `json:"qy,omitempty"`
	QZ         float64   `json:"qz,omitempty"`
	QW         float64   `json:"qw,omitempty"`
	VX         float64   `json:"vx,omitempty"`
	VY         float64   `json:"vy,omitempty"`
	VZ         float64   `json:"vz,omitempty"`
	Mass       float64   `json:"mass,omitempty"`
	Radius     float64   `json:"radius,omitempty"`
	Width      float64   `json:"width,omitempty"`
	Height     float64   `json:"height,omitempty"`
	Depth      float64   `json:"depth,omitempty"`
	Color      string    `json:"color,omitempty"`
	ServerTime int64     `json:"server_time"`
	HeightData []float64 `json:"height_data,omitempty"`
	HeightmapW int       `json:"heightmap_w,omitempty"`
	HeightmapH int       `json:"heightmap_h,omitempty"`
	ScaleX     float64   `json:"scale_x,omitempty"`
	ScaleY     float64   `json:"scale_y,omitempty"`
	ScaleZ     float64   `json:"scale_z,omitempty"`
	MinHeight  float64   `json:"min_height,omitempty"`
	MaxHeight  float64   `json:"max_height,omitempty"`
}

// CommandMessage представляет команду от клиента
type CommandMessage struct {
	Type       string      `json:"type"`
	Cmd        string      `json:"cmd,omitempty"`
	ClientTime int64       `json:"client_time,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// AckMessage представляет подтверждение команды сервером
type AckMessage struct {
	Type       string `json:"type"`
	Cmd        string `json:"cmd"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// PingMessage представляет пинг от клиента
type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
}

// PongMessage представляет ответ на пинг от сервера
type PongMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// InfoMessage представляет информационное сообщение от сервера
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
