package ledger

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/assetbook/internal/entity"
)

type roleChecker interface {
	HasRole(role string, account entity.Account) bool
}

// FreezeRegistry tracks account-wide freeze flags. A frozen account can
// neither send nor receive transfers; the flag is independent of roles
// and balances.
type FreezeRegistry struct {
	mu     sync.RWMutex
	frozen map[entity.Account]struct{}
	roles  roleChecker
}

// NewFreezeRegistry creates a registry gated by the provided role checker.
func NewFreezeRegistry(roles roleChecker) *FreezeRegistry {
	return &FreezeRegistry{
		frozen: make(map[entity.Account]struct{}),
		roles:  roles,
	}
}

// IsFrozen reports the freeze flag for account. Unknown accounts are not frozen.
func (f *FreezeRegistry) IsFrozen(account entity.Account) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.frozen[account]
	return ok
}

// Set updates the freeze flag. Only an admin may call it. Setting the flag to
// its current value still succeeds; the ledger does not suppress redundant
// status changes.
func (f *FreezeRegistry) Set(caller, account entity.Account, frozen bool) error {
	if !f.roles.HasRole(RoleAdmin, caller) {
		return errors.Wrapf(entity.ErrUnauthorized, "account %s cannot change freeze status", caller)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if frozen {
		f.frozen[account] = struct{}{}
	} else {
		delete(f.frozen, account)
	}
	return nil
}
