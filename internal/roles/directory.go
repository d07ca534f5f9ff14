// internal/roles/directory.go
package roles

import (
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

// Resolve looks up the registry deployed at addr.
func Resolve(dir *chain.Directory, addr models.Address) (Registry, bool) {
	instance, ok := dir.Lookup(addr)
	if !ok {
		return nil, false
	}
	registry, ok := instance.(Registry)
	return registry, ok
}
