// Package events carries version-created notifications from the version
// ledger to whoever propagates them to branches.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/yeremiapane/franchise-menu-sync/models"
)

// VersionCreated is published after a ledger version has been committed.
type VersionCreated struct {
	MasterMenuID uint              `json:"master_menu_id"`
	Version      int               `json:"version"`
	ChangeType   models.ChangeType `json:"change_type"`
	CreatedBy    *uint             `json:"created_by,omitempty"`
}

type Handler func(ctx context.Context, evt VersionCreated) error

type Publisher interface {
	Publish(ctx context.Context, evt VersionCreated) error
}

// Hub menampung semua subscriber dan menyiarkan event secara sinkron,
// sesuai urutan pendaftaran.
type Hub struct {
	handlers []Handler
	mutex    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe -> menambahkan handler ke hub
func (h *Hub) Subscribe(handler Handler) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.handlers = append(h.handlers, handler)
}

// Publish runs every handler on the caller's goroutine. A failing handler
// does not stop the others; all errors are returned joined.
func (h *Hub) Publish(ctx context.Context, evt VersionCreated) error {
	h.mutex.RLock()
	handlers := make([]Handler, len(h.handlers))
	copy(handlers, h.handlers)
	h.mutex.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
