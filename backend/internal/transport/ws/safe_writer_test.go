package ws

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer поднимает сервер, который складывает n полученных сообщений в канал
func echoServer(t *testing.T, n int) (*httptest.Server, <-chan []byte) {
	t.Helper()
	received := make(chan []byte, n)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		for i := 0; i < n; i++ {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
		}
	}))
	t.Cleanup(server.Close)
	return server, received
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSafeWriter_WriteJSON_Concurrency(t *testing.T) {
	server, received := echoServer(t, 10)
	writer := NewSafeWriter(dial(t, server))

	// Запускаем 10 горутин, каждая отправляет свое сообщение
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			time.Sleep(time.Duration(id) * time.Millisecond)

			msg := struct {
				ID  int    `json:"id"`
				Msg string `json:"msg"`
			}{ID: id, Msg: "Test message"}

			assert.NoError(t, writer.WriteJSON(msg))
		}(i)
	}
	wg.Wait()

	// Все сообщения должны дойти целыми и быть разными
	uniq := make(map[int]struct{})
	for i := 0; i < 10; i++ {
		select {
		case raw := <-received:
			var msg struct {
				ID int `json:"id"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			uniq[msg.ID] = struct{}{}
		case <-time.After(2 * time.Second):
			t.Fatalf("получено только %d сообщений", i)
		}
	}
	assert.Len(t, uniq, 10)
}

func TestSafeWriter_WriteJSON_RejectsNonFinite(t *testing.T) {
	server, received := echoServer(t, 1)
	writer := NewSafeWriter(dial(t, server))

	assert.Error(t, writer.WriteJSON(map[string]interface{}{"speed": math.NaN()}))
	assert.Error(t, writer.WriteJSON(struct{ V float64 }{V: math.Inf(1)}))

	// соединение живо, следующее сообщение доходит
	require.NoError(t, writer.WriteJSON(map[string]interface{}{"speed": 1.5}))
	raw := <-received
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 1.5, decoded["speed"])
}

func TestSafeWriter_WriteJSON_StructWithNaNFails(t *testing.T) {
	server, _ := echoServer(t, 1)
	writer := NewSafeWriter(dial(t, server))

	err := writer.WriteJSON(struct{ V float64 }{V: math.NaN()})
	assert.Error(t, err)
}

func TestSafeWriter_WritePrepared(t *testing.T) {
	server, received := echoServer(t, 2)
	writer := NewSafeWriter(dial(t, server))

	pm, err := websocket.NewPreparedMessage(websocket.TextMessage, []byte(`{"type":"frame"}`))
	require.NoError(t, err)

	require.NoError(t, writer.WritePrepared(pm))
	require.NoError(t, writer.WritePrepared(pm))

	assert.JSONEq(t, `{"type":"frame"}`, string(<-received))
	assert.JSONEq(t, `{"type":"frame"}`, string(<-received))
}

func TestSafeWriter_Close(t *testing.T) {
	server, _ := echoServer(t, 1)
	writer := NewSafeWriter(dial(t, server))

	require.NoError(t, writer.Close())

	// Попытка записи в закрытое соединение должна вернуть ошибку
	assert.Error(t, writer.WriteJSON("test"))
}
