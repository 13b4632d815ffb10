package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/checkoutd/database"
	"github.com/harborline/checkoutd/events"
	"github.com/harborline/checkoutd/models"
	"github.com/jinzhu/gorm"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("NOTF")

type notificationWrapper struct {
	Notification interface{} `json:"notification"`
}

// Notifier manages translating payment flow events into notifications and
// sending them to websockets.
type Notifier struct {
	notifyFunc func(interface{}) error
	bus        events.Bus
	db         database.Database
	shutdown   chan struct{}
}

// NewNotifier returns a new notifier.
func NewNotifier(bus events.Bus, db database.Database, notifyFunc func(interface{}) error) *Notifier {
	return &Notifier{
		bus:        bus,
		db:         db,
		notifyFunc: notifyFunc,
		shutdown:   make(chan struct{}),
	}
}

// Start will start up the notifier. This should use its own goroutine.
func (n *Notifier) Start() {
	notifications := []interface{}{
		&events.PaymentRequestReady{},
		&events.CheckoutCompleted{},
		&events.ChargeFailed{},
	}

	notificationSub, err := n.bus.Subscribe(notifications)
	if err != nil {
		log.Errorf("Error subscribing to events: %s", err)
		return
	}
	defer notificationSub.Close()

	for {
		select {
		case event := <-notificationSub.Out():
			out, err := json.MarshalIndent(event, "", "    ")
			if err != nil {
				log.Errorf("Error serializing notification: %s", err)
				continue
			}

			err = n.db.Update(func(tx *gorm.DB) error {
				return tx.Save(&models.NotificationRecord{
					ID:           uuid.New().String(),
					CheckoutID:   checkoutID(event),
					Timestamp:    time.Now(),
					Read:         false,
					Notification: out,
				}).Error
			})
			if err != nil {
				log.Errorf("Error saving notification to the database: %s", err)
				continue
			}

			if err := n.notifyFunc(notificationWrapper{event}); err != nil {
				log.Errorf("Error sending notification: %s", err)
			}
		case <-n.shutdown:
			return
		}
	}
}

// Stop shuts down the notifier.
func (n *Notifier) Stop() {
	close(n.shutdown)
}

func checkoutID(event interface{}) string {
	switch e := event.(type) {
	case *events.PaymentRequestReady:
		return e.CheckoutID
	case *events.ChargeFailed:
		return e.CheckoutID
	case *events.CheckoutCompleted:
		if e.Checkout != nil {
			return e.Checkout.ID
		}
	}
	return ""
}
