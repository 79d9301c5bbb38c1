package sse

import (
	"context"
	"sync"

	"ms-boxoffice/internal/models"
)

// PurchaseEventEmitter manages SSE connections for the admin
// dashboard's live purchase feed, keyed by offering.
type PurchaseEventEmitter struct {
	clients     map[string][]chan models.PurchaseWithUnits
	clientMutex sync.RWMutex
}

func NewPurchaseEventEmitter() *PurchaseEventEmitter {
	return &PurchaseEventEmitter{
		clients: make(map[string][]chan models.PurchaseWithUnits),
	}
}

// SubscribeToOffering adds a client to an offering's purchase feed. The
// client is removed when its context ends.
func (e *PurchaseEventEmitter) SubscribeToOffering(ctx context.Context, offeringID string) chan models.PurchaseWithUnits {
	clientChan := make(chan models.PurchaseWithUnits, 10)

	e.clientMutex.Lock()
	e.clients[offeringID] = append(e.clients[offeringID], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(offeringID, clientChan)
	}()

	return clientChan
}

// BroadcastPurchase pushes a completed purchase to every subscriber of
// its offering. Slow clients are skipped rather than blocked on.
func (e *PurchaseEventEmitter) BroadcastPurchase(purchase models.PurchaseWithUnits) {
	e.clientMutex.RLock()
	subscribers := e.clients[purchase.Purchase.OfferingID]
	e.clientMutex.RUnlock()

	for _, clientChan := range subscribers {
		select {
		case clientChan <- purchase:
		default:
		}
	}
}

func (e *PurchaseEventEmitter) removeClient(offeringID string, clientChan chan models.PurchaseWithUnits) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	subscribers := e.clients[offeringID]
	for i, ch := range subscribers {
		if ch == clientChan {
			e.clients[offeringID] = append(subscribers[:i], subscribers[i+1:]...)
			close(ch)
			break
		}
	}
	if len(e.clients[offeringID]) == 0 {
		delete(e.clients, offeringID)
	}
}
