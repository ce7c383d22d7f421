package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
)

// Status is one row of the status table, shown in the editor status bar
// until its key is finished.
type Status struct {
	Key      string    `json:"key"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
	Type     int       `json:"type"`
	Progress float32   `json:"progress"`
}

func (s Status) String() string {
	if s.Type == PROGRESS {
		return fmt.Sprintf("%s: %s %.0f%%", s.Key, s.Message, s.Progress*100)
	}
	return fmt.Sprintf("%s: %s", s.Key, s.Message)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump(t *Table) {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		t.unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames and drops the client once the peer goes away.
func (c *client) readPump(t *Table) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			t.unregisterClient(c)
			return
		}
	}
}

// Table is a keyed set of statuses with observers and websocket subscribers.
type Table struct {
	// held while a snapshot is taken and delivered
	notifyLock sync.Mutex

	lock      sync.Mutex
	entries   map[string]Status
	observers map[int]func([]Status)
	nextID    int
	clients   map[*client]bool
	last      []byte
}

func NewTable() *Table {
	t := &Table{
		entries:   make(map[string]Status),
		observers: make(map[int]func([]Status)),
		clients:   make(map[*client]bool),
	}
	t.last, _ = json.Marshal([]Status{})
	return t
}

// NewClient subscribes a websocket connection. It immediately receives the current table.
func (t *Table) NewClient(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 32)}
	t.lock.Lock()
	t.clients[c] = true
	c.send <- t.last
	t.lock.Unlock()

	go c.writePump(t)
	go c.readPump(t)
}

func (t *Table) unregisterClient(c *client) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.clients[c] {
		delete(t.clients, c)
		close(c.send)
	}
}

func (t *Table) Clients() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.clients)
}

func (t *Table) snapshotLocked() []Status {
	list := make([]Status, 0, len(t.entries))
	for _, s := range t.entries {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list
}

func (t *Table) Snapshot() []Status {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.snapshotLocked()
}

// Observe registers fn to receive the whole table after every change.
// fn must not change the table.
func (t *Table) Observe(fn func([]Status)) (cancel func()) {
	t.lock.Lock()
	defer t.lock.Unlock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	return func() {
		t.lock.Lock()
		defer t.lock.Unlock()
		delete(t.observers, id)
	}
}

func (t *Table) changed() {
	t.notifyLock.Lock()
	defer t.notifyLock.Unlock()

	t.lock.Lock()
	list := t.snapshotLocked()
	data, err := json.Marshal(list)
	if err != nil {
		panic(err)
	}
	t.last = data
	for c := range t.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("[status] ws client is too slow, dropping update")
		}
	}
	observers := make([]func([]Status), 0, len(t.observers))
	for _, o := range t.observers {
		observers = append(observers, o)
	}
	t.lock.Unlock()

	for _, o := range observers {
		o(list)
	}
}

func (t *Table) Set(key, msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	t.lock.Lock()
	t.entries[key] = Status{
		Key:      key,
		Message:  msg,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress}
	t.lock.Unlock()
	t.changed()
}

func (t *Table) Update(key, msg string) {
	t.Set(key, msg, INFO, 0)
}

// Finish removes key. Finishing an unknown key still notifies observers.
func (t *Table) Finish(key string) {
	t.lock.Lock()
	delete(t.entries, key)
	t.lock.Unlock()
	t.changed()
}

var defaultTable = NewTable()

func Default() *Table { return defaultTable }

func Info(key, format string, a ...interface{}) {
	defaultTable.Set(key, fmt.Sprintf(format, a...), INFO, 0.0)
}

func Error(key, format string, a ...interface{}) {
	defaultTable.Set(key, fmt.Sprintf(format, a...), ERROR, 0.0)
}

func Progress(key string, progress float32, format string, a ...interface{}) {
	defaultTable.Set(key, fmt.Sprintf(format, a...), PROGRESS, progress)
}

func Finish(key string) {
	defaultTable.Finish(key)
}
