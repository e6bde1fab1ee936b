package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/events"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/metrics"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/pricing"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/receipt"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderOptions carries the platform-wide pricing settings.
type OrderOptions struct {
	DefaultFeePct   decimal.Decimal
	DefaultBrandKey string
	PortalBaseURL   string
}

// OrderDeps groups the collaborators of the order service.
type OrderDeps struct {
	Tenants       tenant.Resolver
	Lines         LineResolver
	Discounts     DiscountSource
	Jurisdictions pricing.JurisdictionLookup
	Gateway       ReceiptGateway
	Machine       *receipt.Machine
	Publisher     events.Publisher
	Metrics       *metrics.Metrics
}

// orderService implements OrderService.
type orderService struct {
	deps   OrderDeps
	opts   OrderOptions
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDeps, opts OrderOptions, logger zerolog.Logger) OrderService {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	return &orderService{
		deps:   deps,
		opts:   opts,
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// pricedOrder is a quote plus what is needed to turn it into a receipt.
type pricedOrder struct {
	cfg    *tenant.EffectiveConfig
	quote  *pricing.Quote
	coupon *model.Discount
}

// CreateOrder prices the cart and persists the resulting receipt. A receipt
// store outage does not fail the order; the response is marked degraded.
func (s *orderService) CreateOrder(ctx context.Context, tc tenant.Context, wallet string, req *model.OrderRequest) (*model.OrderResponse, error) {
	now := s.now().UTC()
	wallet = auth.NormalizeWallet(wallet)

	priced, err := s.price(ctx, tc, wallet, req, now)
	if err != nil {
		s.deps.Metrics.ObserveOrder(metrics.OrderRejected)
		return nil, err
	}

	r := s.buildReceipt(wallet, req, priced, now)

	saved := s.deps.Gateway.Save(ctx, r)

	if priced.coupon != nil && priced.quote.Discount.CouponApplied {
		s.countCouponUse(ctx, priced.coupon)
	}

	event := events.NewEvent(events.ReceiptCreated, r, now)
	event.Degraded = saved.Degraded
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("receipt_id", r.ReceiptID).Msg("failed to publish receipt event")
	}

	resp := &model.OrderResponse{OK: true, Receipt: r}
	if saved.Degraded {
		resp.Degraded = true
		resp.Reason = saved.Reason
		s.deps.Metrics.ObserveOrder(metrics.OrderDegraded)
	} else {
		resp.PortalLink = s.portalLink(r.ReceiptID, wallet)
		s.deps.Metrics.ObserveOrder(metrics.OrderCreated)
	}

	s.logger.Info().
		Str("receipt_id", r.ReceiptID).
		Str("wallet", wallet).
		Str("brand", r.BrandKey).
		Int64("total_minor", r.TotalMinor).
		Bool("degraded", saved.Degraded).
		Msg("order created")

	return resp, nil
}

// Quote prices the cart without persisting or counting coupon use.
func (s *orderService) Quote(ctx context.Context, tc tenant.Context, wallet string, req *model.OrderRequest) (*model.QuoteResponse, error) {
	priced, err := s.price(ctx, tc, auth.NormalizeWallet(wallet), req, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.ObserveOrder(metrics.OrderQuoted)

	q := priced.quote
	return &model.QuoteResponse{
		OK:        true,
		Currency:  priced.cfg.Currency,
		LineItems: q.Lines,
		Totals:    q.Totals,
		TaxRate:   q.Tax.Rate.String(),
		FeeSplit:  q.FeeSplit,
	}, nil
}

func (s *orderService) price(ctx context.Context, tc tenant.Context, wallet string, req *model.OrderRequest, now time.Time) (*pricedOrder, error) {
	if wallet == "" {
		return nil, model.ErrWalletRequired
	}
	if req == nil || len(req.Items) == 0 {
		return nil, model.ErrItemsRequired
	}

	cfg, err := s.deps.Tenants.Resolve(ctx, tc, wallet)
	if err != nil {
		s.logger.Error().Err(err).Str("wallet", wallet).Msg("failed to resolve tenant config")
		return nil, err
	}
	if err := cfg.RequireSplit(s.opts.DefaultBrandKey); err != nil {
		s.logger.Warn().Str("wallet", wallet).Str("brand", cfg.BrandKey).Msg("payout split not configured")
		return nil, err
	}

	lines, err := s.deps.Lines.Resolve(ctx, tc, wallet, req.Items)
	if err != nil {
		return nil, err
	}

	automatic, err := s.deps.Discounts.ListAutomatic(ctx, wallet)
	if err != nil {
		s.logger.Error().Err(err).Str("wallet", wallet).Msg("failed to load discounts")
		return nil, fmt.Errorf("failed to load discounts: %w", err)
	}

	coupon, err := s.lookupCoupon(ctx, wallet, req.CouponCode, now)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Price(pricing.Input{
		Lines:     lines,
		Automatic: automatic,
		Coupon:    coupon,
		Tax: pricing.TaxRequest{
			RateOverride:     req.TaxRate,
			Components:       req.TaxComponents,
			JurisdictionCode: req.JurisdictionCode,
		},
		TaxConfig:     cfg.Tax,
		Jurisdictions: s.deps.Jurisdictions,
		Fee:           cfg.FeeInputs(s.opts.DefaultFeePct),
		Now:           now,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("wallet", wallet).Msg("failed to price order")
		return nil, err
	}

	return &pricedOrder{cfg: cfg, quote: quote, coupon: coupon}, nil
}

// lookupCoupon returns the coupon for code, or nil when it is unknown or
// unusable; a bad code never fails the order.
func (s *orderService) lookupCoupon(ctx context.Context, wallet, code string, now time.Time) (*model.Discount, error) {
	if code == "" {
		return nil, nil
	}
	coupon, err := s.deps.Discounts.GetByCode(ctx, wallet, code)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to load coupon")
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if coupon == nil || !coupon.IsActiveAt(now) {
		s.logger.Warn().Str("coupon_code", code).Str("wallet", wallet).Msg("ignoring unknown or inactive coupon")
		return nil, nil
	}
	return coupon, nil
}

func (s *orderService) countCouponUse(ctx context.Context, coupon *model.Discount) {
	counted, err := s.deps.Discounts.IncrementUsage(ctx, coupon.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("discount_id", coupon.ID).Msg("failed to count coupon use")
		return
	}
	if !counted {
		s.logger.Warn().Str("discount_id", coupon.ID).Msg("coupon usage limit reached while order was priced")
	}
}

func (s *orderService) buildReceipt(wallet string, req *model.OrderRequest, priced *pricedOrder, now time.Time) *model.Receipt {
	q := priced.quote
	r := &model.Receipt{
		ReceiptID:        s.newID(),
		Wallet:           wallet,
		BrandKey:         priced.cfg.BrandKey,
		LineItems:        q.Lines,
		TotalMinor:       q.Totals.TotalMinor,
		Currency:         priced.cfg.Currency,
		TaxRate:          q.Tax.Rate.String(),
		TaxComponents:    q.Tax.Components,
		JurisdictionCode: q.Tax.JurisdictionCode,
		Totals:           q.Totals,
		FeePct:           q.FeePct.String(),
		FeeSplit:         q.FeeSplit,
		SplitAddress:     priced.cfg.SplitAddress,
		TableNumber:      req.TableNumber,
		Note:             req.Note,
		Version:          1,
	}
	if d := q.Discount.Applied; d != nil {
		r.DiscountID = d.ID
		r.DiscountCode = d.Code
	}

	s.deps.Machine.WithSettled(priced.cfg.SettledStatuses).Init(r, req.InitialStatus, now)
	return r
}

func (s *orderService) portalLink(receiptID, wallet string) string {
	return fmt.Sprintf("%s/portal/%s?recipient=%s", s.opts.PortalBaseURL, url.PathEscape(receiptID), url.QueryEscape(wallet))
}
