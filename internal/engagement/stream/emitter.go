package stream

import (
	"context"
	"sync"
)

// Update is pushed to connected moderator sessions after the hub has
// refreshed an aggregate. Payload carries the freshly re-read view.
type Update struct {
	EventID        string      `json:"event_id"`
	AnnouncementID string      `json:"announcement_id,omitempty"`
	Table          string      `json:"table"`
	Payload        interface{} `json:"payload"`
}

// Emitter fans hub refreshes out to many concurrently connected sessions.
type Emitter struct {
	// Event channel clients map - key: eventID, value: slice of client channels
	eventClients     map[string][]chan Update
	eventClientMutex sync.RWMutex

	// Announcement channel clients map - key: announcementID
	announcementClients     map[string][]chan Update
	announcementClientMutex sync.RWMutex
}

func NewEmitter() *Emitter {
	return &Emitter{
		eventClients:        make(map[string][]chan Update),
		announcementClients: make(map[string][]chan Update),
	}
}

// SubscribeToEvent adds a session to an event's engagement updates.
func (e *Emitter) SubscribeToEvent(ctx context.Context, eventID string) chan Update {
	clientChan := make(chan Update, 10)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// SubscribeToAnnouncement adds a session to one announcement's updates.
func (e *Emitter) SubscribeToAnnouncement(ctx context.Context, announcementID string) chan Update {
	clientChan := make(chan Update, 10)

	e.announcementClientMutex.Lock()
	e.announcementClients[announcementID] = append(e.announcementClients[announcementID], clientChan)
	e.announcementClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeAnnouncementClient(announcementID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts an update to all sessions watching its event and, when
// it concerns one announcement, to sessions watching that announcement.
func (e *Emitter) Emit(update Update) {
	e.eventClientMutex.RLock()
	clients := e.eventClients[update.EventID]
	e.eventClientMutex.RUnlock()

	for _, clientChan := range clients {
		// Non-blocking send to avoid slowing down the hub if a client is slow
		select {
		case clientChan <- update:
		default:
			// Channel buffer full, skip this client for now
		}
	}

	if update.AnnouncementID == "" {
		return
	}

	e.announcementClientMutex.RLock()
	annClients := e.announcementClients[update.AnnouncementID]
	e.announcementClientMutex.RUnlock()

	for _, clientChan := range annClients {
		select {
		case clientChan <- update:
		default:
		}
	}
}

func (e *Emitter) removeEventClient(eventID string, clientChan chan Update) {
	e.eventClientMutex.Lock()
	defer e.eventClientMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}

func (e *Emitter) removeAnnouncementClient(announcementID string, clientChan chan Update) {
	e.announcementClientMutex.Lock()
	defer e.announcementClientMutex.Unlock()

	clients := e.announcementClients[announcementID]
	for i, ch := range clients {
		if ch == clientChan {
			e.announcementClients[announcementID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.announcementClients[announcementID]) == 0 {
		delete(e.announcementClients, announcementID)
	}
}

// GetEventClientCount returns the number of sessions watching an event.
func (e *Emitter) GetEventClientCount(eventID string) int {
	e.eventClientMutex.RLock()
	defer e.eventClientMutex.RUnlock()
	return len(e.eventClients[eventID])
}

// GetAnnouncementClientCount returns the number of sessions watching an
// announcement.
func (e *Emitter) GetAnnouncementClientCount(announcementID string) int {
	e.announcementClientMutex.RLock()
	defer e.announcementClientMutex.RUnlock()
	return len(e.announcementClients[announcementID])
}
