package service

import (
	"context"
	"errors"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/events"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/metrics"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/receipt"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/rs/zerolog"
)

// ReceiptDeps groups the collaborators of the receipt service.
type ReceiptDeps struct {
	Tenants   tenant.Resolver
	Gateway   ReceiptGateway
	Machine   *receipt.Machine
	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

// receiptService implements ReceiptService.
type receiptService struct {
	deps    ReceiptDeps
	listCap int
	now     func() time.Time
	logger  zerolog.Logger
}

// NewReceiptService creates a new receipt service. listCap bounds List.
func NewReceiptService(deps ReceiptDeps, listCap int, logger zerolog.Logger) ReceiptService {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if listCap < 1 {
		listCap = 1
	}
	return &receiptService{
		deps:    deps,
		listCap: listCap,
		now:     time.Now,
		logger:  logger.With().Str("service", "receipt").Logger(),
	}
}

// UpdateStatus applies u to the stored receipt. Attempts to move a settled
// receipt back to a tracking status are reported as ignored, not as errors.
func (s *receiptService) UpdateStatus(ctx context.Context, tc tenant.Context, p *auth.Principal, u model.StatusUpdate) (*model.StatusResult, error) {
	if u.ReceiptID == "" {
		return nil, model.ErrReceiptIDRequired
	}
	u.Status = receipt.Normalize(u.Status)
	if u.Status == "" {
		return nil, model.ErrStatusRequired
	}

	wallet := auth.NormalizeWallet(u.Wallet)
	if wallet == "" && p != nil {
		wallet = p.Wallet
	}
	if wallet == "" {
		return nil, model.ErrWalletRequired
	}
	if p == nil || !p.CanActOn(wallet) {
		return nil, model.ErrForbidden
	}
	u.Wallet = wallet

	now := s.now().UTC()
	machine := s.machineFor(ctx, tc, wallet)
	res, err := s.deps.Gateway.ApplyStatus(ctx, wallet, u.ReceiptID, func(cur *model.Receipt) (*model.Receipt, receipt.Outcome) {
		return machine.Apply(cur, u, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrReceiptNotFound):
			s.deps.Metrics.ObserveStatus(metrics.StatusNotFound)
		default:
			s.deps.Metrics.ObserveStatus(metrics.StatusFailed)
			s.logger.Error().Err(err).Str("receipt_id", u.ReceiptID).Msg("failed to update receipt status")
		}
		return nil, err
	}

	switch {
	case res.Outcome == receipt.Ignored:
		s.deps.Metrics.ObserveStatus(metrics.StatusIgnored)
		s.logger.Info().
			Str("receipt_id", u.ReceiptID).
			Str("status", u.Status).
			Msg("ignored status update on settled receipt")
		return &model.StatusResult{OK: true, Ignored: true, Reason: model.ReasonAlreadySettled}, nil

	case res.Degraded:
		s.deps.Metrics.ObserveStatus(metrics.StatusDegraded)
		return &model.StatusResult{OK: true, Degraded: true, Reason: model.ReasonStoreUnavailable}, nil
	}

	s.deps.Metrics.ObserveStatus(metrics.StatusApplied)
	if res.Receipt != nil {
		event := events.NewEvent(events.ReceiptStatusChanged, res.Receipt, now)
		event.PreviousStatus = res.Previous
		if err := s.deps.Publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("receipt_id", u.ReceiptID).Msg("failed to publish status event")
		}
	}

	s.logger.Info().
		Str("receipt_id", u.ReceiptID).
		Str("from", res.Previous).
		Str("to", u.Status).
		Msg("receipt status updated")
	return &model.StatusResult{OK: true}, nil
}

// machineFor extends the settled set with the tenant's own statuses. A
// config lookup failure falls back to the built-in set.
func (s *receiptService) machineFor(ctx context.Context, tc tenant.Context, wallet string) *receipt.Machine {
	if s.deps.Tenants == nil {
		return s.deps.Machine
	}
	cfg, err := s.deps.Tenants.Resolve(ctx, tc, wallet)
	if err != nil {
		s.logger.Warn().Err(err).Str("wallet", wallet).Msg("using built-in settled statuses")
		return s.deps.Machine
	}
	return s.deps.Machine.WithSettled(cfg.SettledStatuses)
}

// List returns up to limit receipts, newest first. A non-positive or
// oversized limit is clamped to the configured cap.
func (s *receiptService) List(ctx context.Context, wallet string, limit int) ([]model.Receipt, error) {
	wallet = auth.NormalizeWallet(wallet)
	if wallet == "" {
		return nil, model.ErrWalletRequired
	}
	if limit <= 0 || limit > s.listCap {
		limit = s.listCap
	}

	receipts, err := s.deps.Gateway.List(ctx, wallet, limit)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []model.Receipt{}
	}
	return receipts, nil
}

// Get retrieves one receipt owned by wallet.
func (s *receiptService) Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error) {
	wallet = auth.NormalizeWallet(wallet)
	if wallet == "" {
		return nil, model.ErrWalletRequired
	}
	if receiptID == "" {
		return nil, model.ErrReceiptIDRequired
	}

	r, err := s.deps.Gateway.Get(ctx, wallet, receiptID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, model.ErrReceiptNotFound
	}
	return r, nil
}
