// internal/chain/directory.go
package chain

import (
	"fmt"
	"sync"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

// Directory maps addresses to deployed instances.
type Directory struct {
	mu        sync.RWMutex
	instances map[models.Address]interface{}
}

func NewDirectory() *Directory {
	return &Directory{instances: make(map[models.Address]interface{})}
}

func (d *Directory) Register(addr models.Address, instance interface{}) error {
	if addr.IsZero() {
		return fmt.Errorf("cannot register instance at zero address")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.instances[addr]; taken {
		return fmt.Errorf("address %s already in use", addr)
	}
	d.instances[addr] = instance
	return nil
}

// Unregister removes whatever is deployed at addr.
func (d *Directory) Unregister(addr models.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.instances, addr)
}

func (d *Directory) Lookup(addr models.Address) (interface{}, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	instance, ok := d.instances[addr]
	return instance, ok
}
