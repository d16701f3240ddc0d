package events

import (
	"sync"
	"time"

	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/sirupsen/logrus"
)

// Listener receives transfer lifecycle events.
type Listener func(event types.TransferEvent)

// registration ties a listener to a removable id.
type registration struct {
	id       int64
	listener Listener
}

// Dispatcher broadcasts transfer-state transitions synchronously to
// registered listeners, in registration order. A panicking listener is
// recovered and logged so it cannot break dispatch for the others.
type Dispatcher struct {
	logger *logrus.Logger

	listenersMutex sync.RWMutex
	listeners      map[types.TransferEventType][]registration
	anyListeners   []registration
	nextID         int64
}

// NewDispatcher creates a new event dispatcher.
//
// Parameters:
// - logger: the logger for logging purposes.
//
// Returns:
// - *Dispatcher: the new dispatcher instance.
func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		logger:    logger,
		listeners: make(map[types.TransferEventType][]registration),
	}
}

// On registers a listener for one event type.
//
// Parameters:
// - eventType: the event type to listen for.
// - listener: the listener to invoke.
//
// Returns:
// - int64: the registration id usable with Off.
func (d *Dispatcher) On(eventType types.TransferEventType, listener Listener) int64 {
	d.listenersMutex.Lock()
	defer d.listenersMutex.Unlock()

	d.nextID++
	d.listeners[eventType] = append(d.listeners[eventType], registration{id: d.nextID, listener: listener})
	return d.nextID
}

// OnAny registers a listener for every event type.
//
// Parameters:
// - listener: the listener to invoke.
//
// Returns:
// - int64: the registration id usable with Off.
func (d *Dispatcher) OnAny(listener Listener) int64 {
	d.listenersMutex.Lock()
	defer d.listenersMutex.Unlock()

	d.nextID++
	d.anyListeners = append(d.anyListeners, registration{id: d.nextID, listener: listener})
	return d.nextID
}

// Off removes a previously registered listener by id.
func (d *Dispatcher) Off(id int64) {
	d.listenersMutex.Lock()
	defer d.listenersMutex.Unlock()

	for eventType, regs := range d.listeners {
		d.listeners[eventType] = removeRegistration(regs, id)
	}
	d.anyListeners = removeRegistration(d.anyListeners, id)
}

// Emit broadcasts the event synchronously to matching listeners.
// The event timestamp is set if the caller left it zero.
func (d *Dispatcher) Emit(event types.TransferEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.listenersMutex.RLock()
	regs := make([]registration, 0, len(d.listeners[event.Type])+len(d.anyListeners))
	regs = append(regs, d.listeners[event.Type]...)
	regs = append(regs, d.anyListeners...)
	d.listenersMutex.RUnlock()

	for _, reg := range regs {
		d.dispatch(reg.listener, event)
	}
}

// dispatch invokes one listener, recovering panics.
func (d *Dispatcher) dispatch(listener Listener, event types.TransferEvent) {
	defer func() {
		if r := recover(); r != nil && d.logger != nil {
			d.logger.WithFields(logrus.Fields{
				"eventType":  event.Type,
				"transferID": event.TransferID,
				"panic":      r,
			}).Error("Event listener panicked")
		}
	}()

	listener(event)
}

// removeRegistration drops the registration with the given id, keeping order.
func removeRegistration(regs []registration, id int64) []registration {
	for i, reg := range regs {
		if reg.id == id {
			return append(regs[:i], regs[i+1:]...)
		}
	}
	return regs
}
