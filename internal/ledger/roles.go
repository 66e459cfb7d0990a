// Package ledger implements the multi-asset balance ledger core: role-gated
// administration, account freezing and conservation-checked balance accounting.
package ledger

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/assetbook/internal/entity"
)

// RoleAdmin is the single administrative capability gating minting, forced
// burns, freeze control and role management.
const RoleAdmin = "admin"

// RoleRegistry tracks which accounts hold which named roles.
// Membership is plain set semantics: grants and revokes are idempotent.
type RoleRegistry struct {
	mu      sync.RWMutex
	members map[string]map[entity.Account]struct{}
}

// NewRoleRegistry creates an empty registry.
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{members: make(map[string]map[entity.Account]struct{})}
}

// HasRole reports whether account holds role.
func (r *RoleRegistry) HasRole(role string, account entity.Account) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[role][account]
	return ok
}

// GrantRole adds account to role. Only an admin may grant.
func (r *RoleRegistry) GrantRole(caller entity.Account, role string, account entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(RoleAdmin, caller) {
		return errors.Wrapf(entity.ErrUnauthorized, "account %s cannot grant role %q", caller, role)
	}

	r.grantLocked(role, account)
	return nil
}

// RevokeRole removes account from role. Only an admin may revoke.
// Revoking an unheld role succeeds without effect.
func (r *RoleRegistry) RevokeRole(caller entity.Account, role string, account entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(RoleAdmin, caller) {
		return errors.Wrapf(entity.ErrUnauthorized, "account %s cannot revoke role %q", caller, role)
	}

	delete(r.members[role], account)
	return nil
}

// bootstrap grants role without an authorization check. Used exactly once,
// by the ledger constructor, to seed the initial admin.
func (r *RoleRegistry) bootstrap(role string, account entity.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grantLocked(role, account)
}

func (r *RoleRegistry) grantLocked(role string, account entity.Account) {
	set, ok := r.members[role]
	if !ok {
		set = make(map[entity.Account]struct{})
		r.members[role] = set
	}
	set[account] = struct{}{}
}

func (r *RoleRegistry) hasRoleLocked(role string, account entity.Account) bool {
	_, ok := r.members[role][account]
	return ok
}
