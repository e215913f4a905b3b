package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationIcon is shown on every push notification.
const NotificationIcon = "/images/icon.jpg"

// Notification is a displayed push message.
type Notification struct {
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Icon    string           `json:"icon"`
	Badge   string           `json:"badge"`
	Vibrate []int            `json:"vibrate"`
	Data    NotificationData `json:"data"`
}

type NotificationData struct {
	DateOfArrival time.Time       `json:"dateOfArrival"`
	PrimaryKey    json.RawMessage `json:"primaryKey,omitempty"`
}

// PushPayload is the JSON body of a server push.
type PushPayload struct {
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	PrimaryKey json.RawMessage `json:"primaryKey"`
}

// Notifier displays notifications.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
}

// Client is a page controlled by the worker.
type Client struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Focused    bool   `json:"focused"`
	Controlled bool   `json:"controlled"`
}

// Clients tracks open pages.
type Clients interface {
	MatchAll(ctx context.Context) ([]Client, error)
	Focus(ctx context.Context, id string) error
	OpenWindow(ctx context.Context, url string) (Client, error)
	Claim(ctx context.Context) error
}

// Push shows the notification carried by payload. An empty payload is
// ignored.
func (w *Worker) Push(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var p PushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding push payload: %w", err)
	}
	if w.notifier == nil {
		w.logger.Warnf("push %q dropped: no notifier", p.Title)
		return nil
	}
	n := Notification{
		Title:   p.Title,
		Body:    p.Body,
		Icon:    NotificationIcon,
		Badge:   NotificationIcon,
		Vibrate: []int{100, 50, 100},
		Data:    NotificationData{DateOfArrival: w.now(), PrimaryKey: p.PrimaryKey},
	}
	if err := w.notifier.Show(ctx, n); err != nil {
		w.logger.Warnf("showing notification %q: %v", p.Title, err)
		return err
	}
	return nil
}

// NotificationClick focuses an open window on the worker's origin, or opens
// the home page when there is none.
func (w *Worker) NotificationClick(ctx context.Context, _ Notification) (Client, error) {
	if w.clients == nil {
		return Client{}, errors.New("notification click: no client registry")
	}
	all, err := w.clients.MatchAll(ctx)
	if err != nil {
		return Client{}, fmt.Errorf("listing clients: %w", err)
	}
	for _, c := range all {
		u, err := url.Parse(c.URL)
		if err != nil || u.Host != w.origin.Host {
			continue
		}
		if err := w.clients.Focus(ctx, c.ID); err != nil {
			return Client{}, err
		}
		c.Focused = true
		return c, nil
	}
	return w.clients.OpenWindow(ctx, w.origin.ResolveReference(&url.URL{Path: "/"}).String())
}

// ClientRegistry is an in-memory Clients.
type ClientRegistry struct {
	mu      sync.Mutex
	clients []Client
}

var _ Clients = (*ClientRegistry)(nil)

// Register records an open page and returns it with a new ID.
func (r *ClientRegistry) Register(pageURL string) Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := Client{ID: uuid.NewString(), URL: pageURL}
	r.clients = append(r.clients, c)
	return c
}

func (r *ClientRegistry) MatchAll(context.Context) ([]Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Client(nil), r.clients...), nil
}

func (r *ClientRegistry) Focus(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for i := range r.clients {
		r.clients[i].Focused = r.clients[i].ID == id
		found = found || r.clients[i].Focused
	}
	if !found {
		return fmt.Errorf("client %s not found", id)
	}
	return nil
}

func (r *ClientRegistry) OpenWindow(_ context.Context, pageURL string) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.clients {
		r.clients[i].Focused = false
	}
	c := Client{ID: uuid.NewString(), URL: pageURL, Focused: true, Controlled: true}
	r.clients = append(r.clients, c)
	return c, nil
}

func (r *ClientRegistry) Claim(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.clients {
		r.clients[i].Controlled = true
	}
	return nil
}

// NotificationLog is a Notifier that keeps the most recent notifications.
type NotificationLog struct {
	mu    sync.Mutex
	limit int
	items []Notification
}

var _ Notifier = (*NotificationLog)(nil)

// NewNotificationLog keeps up to limit notifications.
func NewNotificationLog(limit int) *NotificationLog {
	if limit <= 0 {
		limit = 50
	}
	return &NotificationLog{limit: limit}
}

func (l *NotificationLog) Show(_ context.Context, n Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
	if len(l.items) > l.limit {
		l.items = l.items[len(l.items)-l.limit:]
	}
	return nil
}

// List returns the kept notifications, oldest first.
func (l *NotificationLog) List() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notification(nil), l.items...)
}
