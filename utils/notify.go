package utils

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

// Notification is a fire-and-forget push to a single user.
type Notification struct {
	UserID uint
	Title  string
	Body   string
}

// Dispatcher consumes enqueued notifications on its own goroutine, after the
// triggering transaction has committed. Delivery is best-effort: missing
// tokens are a silent no-op, failures are logged and never retried, and the
// enqueuing mutation has already returned before delivery starts.
type Dispatcher struct {
	db     *gorm.DB
	sender *PushSender
	queue  chan Notification
	wg     sync.WaitGroup
}

// NewDispatcher builds a dispatcher with a bounded queue.
func NewDispatcher(db *gorm.DB, sender *PushSender) *Dispatcher {
	return &Dispatcher{
		db:     db,
		sender: sender,
		queue:  make(chan Notification, 256),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for n := range d.queue {
			d.deliver(n)
		}
	}()
}

// Enqueue schedules a notification without blocking the caller. When the
// queue is full the notification is dropped; best-effort by contract.
func (d *Dispatcher) Enqueue(n Notification) {
	select {
	case d.queue <- n:
	default:
		if Sugar != nil {
			Sugar.Warnf("notification queue full, dropping push for user %d", n.UserID)
		}
	}
}

// Close stops accepting notifications and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) deliver(n Notification) {
	var pt models.PushToken
	err := d.db.Where("user_id = ?", n.UserID).First(&pt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return // user never registered a token
	}
	if err != nil {
		if Sugar != nil {
			Sugar.Warnf("push token lookup failed for user %d: %v", n.UserID, err)
		}
		return
	}
	if pt.Token == "" {
		return
	}

	if err := d.sender.Send(pt.Token, n.Title, n.Body); err != nil {
		if Sugar != nil {
			Sugar.Warnf("push delivery failed for user %d: %v", n.UserID, err)
		}
	}
}
