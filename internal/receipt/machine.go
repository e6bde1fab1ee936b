// Package receipt governs receipt status transitions. A settled receipt can
// never be moved back to a pre-settlement tracking status.
package receipt

import (
	"strings"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
)

// Outcome is the result of applying a status update.
type Outcome string

const (
	Applied Outcome = "applied"
	Ignored Outcome = "ignored"
)

var defaultSettled = []string{
	model.StatusPaid,
	model.StatusCheckoutSuccess,
	model.StatusTxMined,
	model.StatusReconciled,
	model.StatusReceiptClaimed,
}

var preSettlement = map[string]struct{}{
	model.StatusCheckoutInitialized: {},
	model.StatusPending:             {},
	model.StatusLinkOpened:          {},
	model.StatusBuyerLoggedIn:       {},
	model.StatusCheckoutReady:       {},
	model.StatusGenerated:           {},
}

// Machine applies status updates to receipts.
type Machine struct {
	settled    map[string]struct{}
	pendingTTL time.Duration
}

// NewMachine creates a machine whose settled set is the built-in one plus
// extraSettled. Unsettled receipts expire pendingTTL after creation; a
// non-positive pendingTTL disables expiry.
func NewMachine(extraSettled []string, pendingTTL time.Duration) *Machine {
	m := &Machine{
		settled:    make(map[string]struct{}, len(defaultSettled)+len(extraSettled)),
		pendingTTL: pendingTTL,
	}
	for _, s := range defaultSettled {
		m.settled[s] = struct{}{}
	}
	for _, s := range extraSettled {
		if s = Normalize(s); s != "" {
			m.settled[s] = struct{}{}
		}
	}
	return m
}

// WithSettled returns a machine that also treats extra as settled, for
// tenants that define their own terminal statuses.
func (m *Machine) WithSettled(extra []string) *Machine {
	if len(extra) == 0 {
		return m
	}
	out := &Machine{settled: make(map[string]struct{}, len(m.settled)+len(extra)), pendingTTL: m.pendingTTL}
	for s := range m.settled {
		out.settled[s] = struct{}{}
	}
	for _, s := range extra {
		if s = Normalize(s); s != "" {
			out.settled[s] = struct{}{}
		}
	}
	return out
}

// Normalize lowercases and trims a status.
func Normalize(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsSettled reports whether status is terminal for downgrade protection.
// Every refund variant counts as settled.
func (m *Machine) IsSettled(status string) bool {
	status = Normalize(status)
	if _, ok := m.settled[status]; ok {
		return true
	}
	return strings.Contains(status, "refund")
}

// IsPreSettlement reports whether status is a checkout tracking status.
func IsPreSettlement(status string) bool {
	_, ok := preSettlement[Normalize(status)]
	return ok
}

// IsSettlementAdjacent reports whether a status may carry a transaction hash
// and buyer wallet.
func (m *Machine) IsSettlementAdjacent(status string) bool {
	return m.IsSettled(status) || Normalize(status) == model.StatusRecipientValidated
}

// TTLFor returns the expiry a receipt in status should carry at now.
func (m *Machine) TTLFor(status string, now time.Time) int64 {
	if m.IsSettled(status) || m.pendingTTL <= 0 {
		return model.TTLDisabled
	}
	return now.Add(m.pendingTTL).Unix()
}

// Init stamps a new receipt with its first status.
func (m *Machine) Init(doc *model.Receipt, status string, now time.Time) {
	status = Normalize(status)
	if status == "" {
		status = model.StatusGenerated
	}
	doc.Status = status
	doc.StatusHistory = []model.StatusEntry{{Status: status, Ts: now}}
	doc.CreatedAt = now
	doc.LastUpdatedAt = now
	doc.TTL = m.TTLFor(status, now)
}

// Apply returns the receipt after u. An update that would move a settled
// receipt back to a pre-settlement status is Ignored and doc is returned
// untouched. A transaction hash or buyer wallet already on the receipt is
// never replaced. Otherwise a modified copy is returned; doc itself is never
// mutated.
func (m *Machine) Apply(doc *model.Receipt, u model.StatusUpdate, now time.Time) (*model.Receipt, Outcome) {
	status := Normalize(u.Status)
	if m.IsSettled(doc.Status) && IsPreSettlement(status) {
		return doc, Ignored
	}

	next := doc.Clone()
	next.Status = status
	next.StatusHistory = append(next.StatusHistory, model.StatusEntry{Status: status, Ts: now})
	next.LastUpdatedAt = now

	// the first recorded hash and buyer stick; later updates only backfill
	if m.IsSettlementAdjacent(status) {
		if next.TransactionHash == "" && u.TxHash != "" {
			next.TransactionHash = u.TxHash
		}
		if next.BuyerWallet == "" && u.BuyerWallet != "" {
			next.BuyerWallet = u.BuyerWallet
		}
	}

	if m.IsSettled(status) {
		next.TTL = model.TTLDisabled
	}
	return next, Applied
}
