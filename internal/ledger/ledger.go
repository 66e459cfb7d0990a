package ledger

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/assetbook/internal/entity"
	"github.com/vadiminshakov/assetbook/internal/events"
	"go.uber.org/zap"
)

// EventSink receives ledger events after the mutation they describe has been
// committed. Append errors never roll the mutation back; events are
// observational only.
type EventSink interface {
	Append(ev entity.Event) error
}

// Sinks fans an event out to several sinks, returning the first error.
type Sinks []EventSink

// Append implements EventSink.
func (s Sinks) Append(ev entity.Event) error {
	for _, sink := range s {
		if err := sink.Append(ev); err != nil {
			return err
		}
	}
	return nil
}

// LogSink mirrors every ledger event to a structured log at debug level,
// typically wired next to the durable store via Sinks.
type LogSink struct {
	lg *zap.Logger
}

// NewLogSink creates a sink writing to lg. A nil lg discards events.
func NewLogSink(lg *zap.Logger) *LogSink {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &LogSink{lg: lg}
}

// Append implements EventSink. It never fails.
func (s *LogSink) Append(ev entity.Event) error {
	s.lg.Debug("ledger event",
		zap.String("kind", string(ev.Kind)),
		zap.Uint64("asset", ev.AssetID),
		zap.Stringer("account", ev.Account),
		zap.String("amount", ev.Amount),
		zap.Bool("frozen", ev.Frozen))
	return nil
}

// TransferNotifier receives the standard transfer notification for every
// completed transfer. Transfers do not enter the event sink.
type TransferNotifier interface {
	Publish(n events.TransferNotice)
}

// URIMode selects how per-asset metadata interacts with the ledger-wide
// metadata reference on URI queries.
type URIMode string

const (
	// URIModeGlobal the ledger-wide reference always wins, matching the
	// behavior of a single shared URI template.
	URIModeGlobal URIMode = "global"
	// URIModePerAsset an asset's own metadata wins when set, with the
	// ledger-wide reference as fallback.
	URIModePerAsset URIMode = "per-asset"
)

// ParseURIMode validates a configuration string.
func ParseURIMode(s string) (URIMode, error) {
	switch URIMode(s) {
	case URIModeGlobal, URIModePerAsset:
		return URIMode(s), nil
	case "":
		return URIModeGlobal, nil
	}
	return "", errors.Errorf("unknown uri mode %q", s)
}

// Capability is one of the fixed feature tags the ledger can be probed for.
type Capability string

const (
	// CapMultiAsset single and batch transfers across asset classes.
	CapMultiAsset Capability = "multi-asset"
	// CapFreeze account-wide freeze control.
	CapFreeze Capability = "account-freeze"
	// CapProofBurn administrative burns carrying audit proofs.
	CapProofBurn Capability = "proof-burn"
)

type assetState struct {
	metadata string
	supply   decimal.Decimal
	balances map[entity.Account]decimal.Decimal
}

// AssetLedger owns per-asset, per-account balances and total supplies.
// Every mutating operation takes the authenticated caller as its first
// argument and runs entirely under one writer lock: authorization and
// freeze checks, the balance mutation and event emission form a single
// critical section, so concurrent operations observe each other only in
// some serial order. An operation either fully succeeds or fails with no
// state change.
type AssetLedger struct {
	mu        sync.RWMutex
	baseURI   string
	uriMode   URIMode
	roles     *RoleRegistry
	freeze    *FreezeRegistry
	assets    []*assetState
	sink      EventSink
	transfers TransferNotifier
	lg        *zap.Logger
}

// NewAssetLedger creates a ledger with the given base metadata reference and
// grants the admin role to admin as its first state-mutating act.
// sink and transfers may be nil.
func NewAssetLedger(lg *zap.Logger, baseURI string, uriMode URIMode, admin entity.Account, sink EventSink, transfers TransferNotifier) *AssetLedger {
	if lg == nil {
		lg = zap.NewNop()
	}
	if uriMode == "" {
		uriMode = URIModeGlobal
	}

	roles := NewRoleRegistry()
	roles.bootstrap(RoleAdmin, admin)

	return &AssetLedger{
		baseURI:   baseURI,
		uriMode:   uriMode,
		roles:     roles,
		freeze:    NewFreezeRegistry(roles),
		sink:      sink,
		transfers: transfers,
		lg:        lg,
	}
}

// NewAsset allocates the next sequential asset id, records its metadata and
// mints the initial supply to recipient. Amount zero produces a valid but
// empty asset. Admin only.
func (l *AssetLedger) NewAsset(caller entity.Account, metadata string, recipient entity.Account, amount decimal.Decimal) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.roles.HasRole(RoleAdmin, caller) {
		return 0, errors.Wrapf(entity.ErrUnauthorized, "account %s cannot create assets", caller)
	}
	if !entity.ValidAmount(amount) {
		return 0, errors.Wrapf(entity.ErrInvalidAmount, "mint amount %s", amount)
	}

	id := uint64(len(l.assets))
	st := &assetState{
		metadata: metadata,
		supply:   amount,
		balances: make(map[entity.Account]decimal.Decimal),
	}
	if amount.Sign() > 0 {
		st.balances[recipient] = amount
	}
	l.assets = append(l.assets, st)

	l.lg.Info("asset created",
		zap.Uint64("asset", id),
		zap.Stringer("recipient", recipient),
		zap.String("amount", amount.String()))
	l.emit(entity.NewCreatedEvent(id, recipient, amount))

	return id, nil
}

// BalanceOf returns the balance of account for assetID. Absent entries and
// unknown asset ids read as zero. No authorization check.
func (l *AssetLedger) BalanceOf(account entity.Account, assetID uint64) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if assetID >= uint64(len(l.assets)) {
		return decimal.Zero
	}
	bal, ok := l.assets[assetID].balances[account]
	if !ok {
		return decimal.Zero
	}
	return bal
}

// TotalSupply returns the running supply for assetID, zero for unknown ids.
func (l *AssetLedger) TotalSupply(assetID uint64) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if assetID >= uint64(len(l.assets)) {
		return decimal.Zero
	}
	return l.assets[assetID].supply
}

// AssetCount returns the number of allocated asset ids.
func (l *AssetLedger) AssetCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return uint64(len(l.assets))
}

// Asset returns the descriptor for assetID.
func (l *AssetLedger) Asset(assetID uint64) (entity.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if assetID >= uint64(len(l.assets)) {
		return entity.Asset{}, errors.Wrapf(entity.ErrUnknownAsset, "asset %d", assetID)
	}
	st := l.assets[assetID]
	return entity.Asset{ID: assetID, Metadata: st.metadata, TotalSupply: st.supply}, nil
}

// URI resolves the metadata reference for assetID according to the configured
// mode. Unknown ids resolve to the ledger-wide reference in both modes.
func (l *AssetLedger) URI(assetID uint64) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.uriMode == URIModePerAsset && assetID < uint64(len(l.assets)) {
		if md := l.assets[assetID].metadata; md != "" {
			return md
		}
	}
	return l.baseURI
}

// Supports probes the fixed capability set of this ledger.
func (l *AssetLedger) Supports(c Capability) bool {
	switch c {
	case CapMultiAsset, CapFreeze, CapProofBurn:
		return true
	}
	return false
}

// Transfer moves amount units of assetID from one account to another.
// The caller must be the sender; operator approvals belong to the surrounding
// token-standard layer. data is opaque and forwarded on the transfer notice.
func (l *AssetLedger) Transfer(caller, from, to entity.Account, assetID uint64, amount decimal.Decimal, data []byte) error {
	return l.BatchTransfer(caller, from, to, []uint64{assetID}, []decimal.Decimal{amount}, data)
}

// BatchTransfer moves several asset positions between the same two accounts
// in one atomic step: if any leg fails its precondition, no leg is applied.
// Total supply never changes on transfers.
func (l *AssetLedger) BatchTransfer(caller, from, to entity.Account, assetIDs []uint64, amounts []decimal.Decimal, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != from {
		return errors.Wrapf(entity.ErrUnauthorized, "account %s cannot send on behalf of %s", caller, from)
	}
	if l.freeze.IsFrozen(from) {
		return errors.Wrapf(entity.ErrSenderFrozen, "account %s", from)
	}
	if l.freeze.IsFrozen(to) {
		return errors.Wrapf(entity.ErrRecipientFrozen, "account %s", to)
	}
	if len(assetIDs) != len(amounts) {
		return errors.Wrapf(entity.ErrLengthMismatch, "%d asset ids, %d amounts", len(assetIDs), len(amounts))
	}

	// Pre-validate every leg against running post-debit balances, so the
	// same asset id appearing twice cannot spend the same units twice.
	debits := make(map[uint64]decimal.Decimal, len(assetIDs))
	for i, id := range assetIDs {
		if !entity.ValidAmount(amounts[i]) {
			return errors.Wrapf(entity.ErrInvalidAmount, "transfer amount %s for asset %d", amounts[i], id)
		}
		if id >= uint64(len(l.assets)) {
			return errors.Wrapf(entity.ErrUnknownAsset, "asset %d", id)
		}
		debits[id] = debits[id].Add(amounts[i])
		if l.assets[id].balances[from].LessThan(debits[id]) {
			return errors.Wrapf(entity.ErrInsufficientBalance,
				"account %s holds %s of asset %d, needs %s", from, l.assets[id].balances[from], id, debits[id])
		}
	}

	for i, id := range assetIDs {
		l.debitLocked(id, from, amounts[i])
		l.creditLocked(id, to, amounts[i])
	}

	l.notifyTransfer(from, to, assetIDs, amounts, data)
	return nil
}

// Burn destroys amount units of the caller's own balance. No authorization
// beyond ownership. Emits a burned event with an empty proof, marking the
// burn as voluntary.
func (l *AssetLedger) Burn(caller entity.Account, assetID uint64, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !entity.ValidAmount(amount) {
		return errors.Wrapf(entity.ErrInvalidAmount, "burn amount %s", amount)
	}
	if assetID >= uint64(len(l.assets)) {
		return errors.Wrapf(entity.ErrUnknownAsset, "asset %d", assetID)
	}
	st := l.assets[assetID]
	if st.balances[caller].LessThan(amount) {
		return errors.Wrapf(entity.ErrInsufficientBalance,
			"account %s holds %s of asset %d, burning %s", caller, st.balances[caller], assetID, amount)
	}

	l.debitLocked(assetID, caller, amount)
	st.supply = st.supply.Sub(amount)

	l.emit(entity.NewBurnedEvent(assetID, caller, amount, nil))
	return nil
}

// BurnWithProof destroys balances of several accounts under an opaque audit
// proof. Admin only. The call is atomic: a single insufficient balance aborts
// it with no account debited. One burned event is emitted per account, in
// input order, all carrying the same proof. The proof is stored and forwarded
// but never interpreted.
func (l *AssetLedger) BurnWithProof(caller entity.Account, assetID uint64, accounts []entity.Account, amounts []decimal.Decimal, proof []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.roles.HasRole(RoleAdmin, caller) {
		return errors.Wrapf(entity.ErrUnauthorized, "account %s cannot burn with proof", caller)
	}
	if len(accounts) != len(amounts) {
		return errors.Wrapf(entity.ErrLengthMismatch, "%d accounts, %d amounts", len(accounts), len(amounts))
	}
	if assetID >= uint64(len(l.assets)) {
		return errors.Wrapf(entity.ErrUnknownAsset, "asset %d", assetID)
	}
	st := l.assets[assetID]

	// Same account may appear more than once; validate against running totals.
	debits := make(map[entity.Account]decimal.Decimal, len(accounts))
	total := decimal.Zero
	for i, acc := range accounts {
		if !entity.ValidAmount(amounts[i]) {
			return errors.Wrapf(entity.ErrInvalidAmount, "burn amount %s for account %s", amounts[i], acc)
		}
		debits[acc] = debits[acc].Add(amounts[i])
		if st.balances[acc].LessThan(debits[acc]) {
			return errors.Wrapf(entity.ErrInsufficientBalance,
				"account %s holds %s of asset %d, burning %s", acc, st.balances[acc], assetID, debits[acc])
		}
		total = total.Add(amounts[i])
	}

	for i, acc := range accounts {
		l.debitLocked(assetID, acc, amounts[i])
	}
	st.supply = st.supply.Sub(total)

	l.lg.Info("forced burn",
		zap.Uint64("asset", assetID),
		zap.Int("accounts", len(accounts)),
		zap.String("total", total.String()))
	for i, acc := range accounts {
		l.emit(entity.NewBurnedEvent(assetID, acc, amounts[i], proof))
	}

	return nil
}

// SetAccountFreezeStatus sets the account-wide freeze flag. Admin only.
// Every successful call emits a status-changed event, even when the flag
// already had the requested value.
func (l *AssetLedger) SetAccountFreezeStatus(caller, account entity.Account, frozen bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.freeze.Set(caller, account, frozen); err != nil {
		return err
	}

	l.lg.Info("freeze status changed",
		zap.Stringer("account", account),
		zap.Bool("frozen", frozen))
	l.emit(entity.NewFreezeStatusEvent(account, frozen))
	return nil
}

// IsFrozen reports the freeze flag for account.
func (l *AssetLedger) IsFrozen(account entity.Account) bool {
	return l.freeze.IsFrozen(account)
}

// HasRole reports whether account holds role.
func (l *AssetLedger) HasRole(role string, account entity.Account) bool {
	return l.roles.HasRole(role, account)
}

// GrantRole adds account to role. Admin only.
func (l *AssetLedger) GrantRole(caller entity.Account, role string, account entity.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.roles.GrantRole(caller, role, account)
}

// RevokeRole removes account from role. Admin only. Taking the ledger lock
// here keeps a revocation ordered against in-flight admin-gated operations.
func (l *AssetLedger) RevokeRole(caller entity.Account, role string, account entity.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.roles.RevokeRole(caller, role, account)
}

func (l *AssetLedger) debitLocked(assetID uint64, account entity.Account, amount decimal.Decimal) {
	st := l.assets[assetID]
	rest := st.balances[account].Sub(amount)
	if rest.Sign() == 0 {
		delete(st.balances, account)
		return
	}
	st.balances[account] = rest
}

func (l *AssetLedger) creditLocked(assetID uint64, account entity.Account, amount decimal.Decimal) {
	if amount.Sign() == 0 {
		return
	}
	st := l.assets[assetID]
	st.balances[account] = st.balances[account].Add(amount)
}

func (l *AssetLedger) notifyTransfer(from, to entity.Account, assetIDs []uint64, amounts []decimal.Decimal, data []byte) {
	if l.transfers == nil {
		return
	}

	amountStrs := make([]string, len(amounts))
	for i, a := range amounts {
		amountStrs[i] = a.String()
	}
	l.transfers.Publish(events.TransferNotice{
		Timestamp: time.Now().UTC(),
		From:      from,
		To:        to,
		AssetIDs:  assetIDs,
		Amounts:   amountStrs,
		Data:      data,
	})
}

// emit appends ev to the sink. Called with l.mu held, so sink order matches
// commit order.
func (l *AssetLedger) emit(ev entity.Event) {
	if l.sink == nil {
		return
	}
	if err := l.sink.Append(ev); err != nil {
		l.lg.Error("failed to append ledger event", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}
