package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteWait время на запись одного сообщения
const DefaultWriteWait = 2 * time.Second

// SafeWriter обеспечивает потокобезопасную запись в WebSocket соединение
type SafeWriter struct {
	conn      *websocket.Conn
	mutex     sync.Mutex
	writeWait time.Duration
}

// NewSafeWriter создает новый экземпляр SafeWriter
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{
		conn:      conn,
		writeWait: DefaultWriteWait,
	}
}

// WriteJSON потокобезопасно записывает JSON данные в WebSocket соединение
func (w *SafeWriter) WriteJSON(v interface{}) error {
	// NaN и бесконечность вычищаются при сборке сообщений, здесь они дают ошибку
	jsonData, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessage(websocket.TextMessage, jsonData)
}

// WriteMessage потокобезопасно записывает сообщение в WebSocket соединение
func (w *SafeWriter) WriteMessage(messageType int, data []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.setDeadline()
	return w.conn.WriteMessage(messageType, data)
}

// WritePrepared отправляет заранее сериализованное сообщение, используется для рассылки
func (w *SafeWriter) WritePrepared(pm *websocket.PreparedMessage) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.setDeadline()
	return w.conn.WritePreparedMessage(pm)
}

func (w *SafeWriter) setDeadline() {
	if w.writeWait > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	}
}

// Close закрывает WebSocket соединение
func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}

// RemoteAddr адрес клиента
func (w *SafeWriter) RemoteAddr() string {
	return w.conn.RemoteAddr().String()
}
