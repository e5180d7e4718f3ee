package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"go.uber.org/zap"
)

type PackagePurchaseInput struct {
	UserID         uint
	PackageID      uint
	AddonIDs       []uint
	IdempotencyKey string
}

type AddonPurchaseInput struct {
	UserID         uint
	AddonID        uint
	DurationDays   int
	IdempotencyKey string
}

// PurchaseService records package and addon purchases. Everything bought in
// one checkout shares a purchase batch id.
type PurchaseService struct {
	tx             Transactor
	packages       PackageStore
	addons         AddonStore
	purchases      PackagePurchaseStore
	addonPurchases AddonPurchaseStore
	users          UserStore
	log            *zap.Logger

	gateway  PaymentGateway
	receipts ReceiptSender
	idem     IdempotencyStore

	now        func() time.Time
	newBatchID func() string
	retryDelay time.Duration
}

type PurchaseOption func(*PurchaseService)

// WithPaymentGateway opens a payment intent for every package checkout.
func WithPaymentGateway(g PaymentGateway) PurchaseOption {
	return func(s *PurchaseService) { s.gateway = g }
}

func WithReceipts(r ReceiptSender) PurchaseOption {
	return func(s *PurchaseService) { s.receipts = r }
}

func WithIdempotency(store IdempotencyStore) PurchaseOption {
	return func(s *PurchaseService) { s.idem = store }
}

func WithClock(now func() time.Time) PurchaseOption {
	return func(s *PurchaseService) { s.now = now }
}

func NewPurchaseService(
	tx Transactor,
	packages PackageStore,
	addons AddonStore,
	purchases PackagePurchaseStore,
	addonPurchases AddonPurchaseStore,
	users UserStore,
	log *zap.Logger,
	opts ...PurchaseOption,
) *PurchaseService {
	s := &PurchaseService{
		tx:             tx,
		packages:       packages,
		addons:         addons,
		purchases:      purchases,
		addonPurchases: addonPurchases,
		users:          users,
		log:            log,
		now:            time.Now,
		newBatchID:     func() string { return uuid.NewString() },
		retryDelay:     50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePackagePurchase buys one package plus any addons in a single batch.
// Either every row commits or none does.
func (s *PurchaseService) CreatePackagePurchase(ctx context.Context, in PackagePurchaseInput) (*models.PackagePurchase, error) {
	if in.UserID == 0 {
		return nil, apperrors.Validation("user id is required")
	}
	if in.PackageID == 0 {
		return nil, apperrors.Validation("package id is required")
	}
	seen := make(map[uint]bool, len(in.AddonIDs))
	for _, id := range in.AddonIDs {
		if id == 0 || seen[id] {
			return nil, apperrors.ValidationFields("invalid addon list", map[string]string{
				"addon_ids": "must be unique non-zero ids",
			})
		}
		seen[id] = true
	}

	key := scopedKey("package", in.UserID, in.IdempotencyKey)
	fingerprint := requestFingerprint("package", checkoutIDs(in.PackageID, in.AddonIDs)...)
	batchID, replay, err := s.reserve(ctx, key, fingerprint)
	if err != nil {
		return nil, err
	}
	if replay {
		return s.loadBatch(ctx, batchID, in.UserID)
	}

	log := logger.FromContext(ctx, s.log)
	fail := func(err error, intentID string) (*models.PackagePurchase, error) {
		if intentID != "" {
			if cerr := s.gateway.CancelPaymentIntent(context.WithoutCancel(ctx), intentID); cerr != nil {
				log.Error("cancel payment intent after rollback", zap.String("intent_id", intentID), zap.Error(cerr))
			}
		}
		s.release(ctx, key)
		return nil, err
	}

	pkg, err := s.packages.GetByID(ctx, in.PackageID)
	if err != nil {
		return fail(err, "")
	}
	if !pkg.IsActive {
		return fail(apperrors.NotFound("Package"), "")
	}
	addons, err := s.resolveAddons(ctx, in.AddonIDs)
	if err != nil {
		return fail(err, "")
	}

	total := pkg.Price
	for _, a := range addons {
		total = total.Add(a.BasePrice)
	}
	total = total.Round(2)
	now := s.now().UTC()
	batch := s.newBatchID()

	// No transaction is open across the provider call.
	var (
		ref      *string
		intentID string
	)
	if s.gateway != nil {
		intentID, err = s.gateway.CreatePaymentIntent(ctx, total, map[string]string{
			"purchase_batch_id": batch,
			"user_id":           strconv.FormatUint(uint64(in.UserID), 10),
		})
		if err != nil {
			return fail(apperrors.Wrap(err, apperrors.CodeInternalError, "Payment provider unavailable", apperrors.ErrInternal.HTTPCode), "")
		}
		ref = &intentID
	}

	purchase := &models.PackagePurchase{
		PurchaseBatchID:  batch,
		UserID:           in.UserID,
		PackageID:        pkg.ID,
		PurchaseDate:     now,
		ExpirationDate:   now.AddDate(0, 0, pkg.DurationDays),
		Status:           models.PurchaseStatusActive,
		TotalAmount:      total,
		PaymentReference: ref,
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.purchases.Create(ctx, purchase); err != nil {
			return err
		}
		purchase.Package = pkg
		purchase.Addons = make([]models.AddonPurchase, 0, len(addons))

		for i := range addons {
			addon := &addons[i]
			days := pkg.DurationDays
			if addon.DurationDays != nil {
				days = *addon.DurationDays
			}
			ap := models.AddonPurchase{
				PurchaseBatchID:  batch,
				UserID:           in.UserID,
				AddonID:          addon.ID,
				PurchaseDate:     now,
				ExpirationDate:   now.AddDate(0, 0, days),
				Status:           models.PurchaseStatusActive,
				AmountPaid:       addon.BasePrice.Round(2),
				PaymentReference: ref,
			}
			if err := s.addonPurchases.Create(ctx, &ap); err != nil {
				return err
			}
			ap.Addon = addon
			purchase.Addons = append(purchase.Addons, ap)
		}
		return nil
	})
	if err != nil {
		return fail(err, intentID)
	}

	s.complete(ctx, key, fingerprint, purchase.PurchaseBatchID)
	log.Info("package purchased",
		zap.Uint("purchase_id", purchase.ID),
		zap.String("purchase_batch_id", purchase.PurchaseBatchID),
		zap.String("total_amount", purchase.TotalAmount.StringFixed(2)),
		zap.Int("addons", len(purchase.Addons)),
	)
	s.sendReceipt(ctx, purchase)
	return purchase, nil
}

// resolveAddons loads every id; a missing or inactive addon fails the batch.
func (s *PurchaseService) resolveAddons(ctx context.Context, ids []uint) ([]models.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.addons.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Addon, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	out := make([]models.Addon, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok || !a.IsActive {
			return nil, apperrors.NotFound(fmt.Sprintf("Addon %d", id))
		}
		out = append(out, a)
	}
	return out, nil
}

// CreateAddonPurchase buys a single addon without a package.
func (s *PurchaseService) CreateAddonPurchase(ctx context.Context, in AddonPurchaseInput) (*models.AddonPurchase, error) {
	if in.UserID == 0 {
		return nil, apperrors.Validation("user id is required")
	}
	if in.AddonID == 0 {
		return nil, apperrors.Validation("addon id is required")
	}
	if in.DurationDays < 1 {
		return nil, apperrors.ValidationFields("invalid duration", map[string]string{
			"duration_days": "must be at least 1",
		})
	}

	key := scopedKey("addon", in.UserID, in.IdempotencyKey)
	fingerprint := requestFingerprint("addon", uint64(in.AddonID), uint64(in.DurationDays))
	batchID, replay, err := s.reserve(ctx, key, fingerprint)
	if err != nil {
		return nil, err
	}
	if replay {
		return s.loadStandalone(ctx, batchID, in.UserID)
	}

	var purchase *models.AddonPurchase
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		addon, err := s.addons.GetByID(ctx, in.AddonID)
		if err != nil {
			return err
		}
		if !addon.IsActive {
			return apperrors.NotFound("Addon")
		}

		now := s.now().UTC()
		purchase = &models.AddonPurchase{
			PurchaseBatchID: s.newBatchID(),
			UserID:          in.UserID,
			AddonID:         addon.ID,
			PurchaseDate:    now,
			ExpirationDate:  now.AddDate(0, 0, in.DurationDays),
			Status:          models.PurchaseStatusActive,
			AmountPaid:      addon.BasePrice.Round(2),
		}
		if err := s.addonPurchases.Create(ctx, purchase); err != nil {
			return err
		}
		purchase.Addon = addon
		return nil
	})
	if err != nil {
		s.release(ctx, key)
		return nil, err
	}

	s.complete(ctx, key, fingerprint, purchase.PurchaseBatchID)
	logger.FromContext(ctx, s.log).Info("addon purchased",
		zap.Uint("addon_purchase_id", purchase.ID),
		zap.Uint("addon_id", purchase.AddonID),
		zap.Int("duration_days", in.DurationDays),
	)
	return purchase, nil
}

// CancelPurchase cancels a package purchase and the still-active addons of
// its batch. Expiration dates are left as they were.
func (s *PurchaseService) CancelPurchase(ctx context.Context, purchaseID uint, caller models.Identity) (*models.PackagePurchase, error) {
	if purchaseID == 0 {
		return nil, apperrors.Validation("purchase id is required")
	}

	var purchase *models.PackagePurchase
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		p, err := s.purchases.GetByIDForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := checkCancel(p.UserID, p.Status, caller); err != nil {
			return err
		}

		now := s.now().UTC()
		p.Status = models.PurchaseStatusCancelled
		p.CancelledAt = &now
		if err := s.purchases.Update(ctx, p); err != nil {
			return err
		}
		if _, err := s.addonPurchases.CancelActiveInBatch(ctx, p.PurchaseBatchID, now); err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("purchase cancelled",
		zap.Uint("purchase_id", purchase.ID),
		zap.Uint("owner_id", purchase.UserID),
		zap.Uint("cancelled_by", caller.UserID),
	)
	return s.loadBatch(ctx, purchase.PurchaseBatchID, purchase.UserID)
}

// CancelAddonPurchase cancels one addon purchase with the same ownership and
// state rules as CancelPurchase.
func (s *PurchaseService) CancelAddonPurchase(ctx context.Context, addonPurchaseID uint, caller models.Identity) (*models.AddonPurchase, error) {
	if addonPurchaseID == 0 {
		return nil, apperrors.Validation("addon purchase id is required")
	}

	var purchase *models.AddonPurchase
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		p, err := s.addonPurchases.GetByIDForUpdate(ctx, addonPurchaseID)
		if err != nil {
			return err
		}
		if err := checkCancel(p.UserID, p.Status, caller); err != nil {
			return err
		}

		now := s.now().UTC()
		p.Status = models.PurchaseStatusCancelled
		p.CancelledAt = &now
		if err := s.addonPurchases.Update(ctx, p); err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("addon purchase cancelled",
		zap.Uint("addon_purchase_id", purchase.ID),
		zap.Uint("cancelled_by", caller.UserID),
	)
	return purchase, nil
}

// checkCancel applies the ownership check before the state check, so a
// stranger never learns the status of someone else's purchase.
func checkCancel(owner uint, status models.PurchaseStatus, caller models.Identity) error {
	if owner != caller.UserID && !caller.IsAdmin() {
		return apperrors.Forbidden("You can only cancel your own purchases")
	}
	if status != models.PurchaseStatusActive {
		return apperrors.Conflict(fmt.Sprintf("Purchase is already %s", status))
	}
	return nil
}

// ListUserPurchases returns package purchases newest first, each carrying the
// addons of its batch, and the addons bought on their own.
func (s *PurchaseService) ListUserPurchases(ctx context.Context, userID uint) (*models.UserPurchases, error) {
	if userID == 0 {
		return nil, apperrors.Validation("user id is required")
	}

	packages, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	addons, err := s.addonPurchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byBatch := make(map[string]int, len(packages))
	for i := range packages {
		packages[i].Addons = []models.AddonPurchase{}
		byBatch[packages[i].PurchaseBatchID] = i
	}

	out := &models.UserPurchases{
		Packages:   packages,
		Standalone: []models.AddonPurchase{},
	}
	if out.Packages == nil {
		out.Packages = []models.PackagePurchase{}
	}
	for _, a := range addons {
		if i, ok := byBatch[a.PurchaseBatchID]; ok {
			out.Packages[i].Addons = append(out.Packages[i].Addons, a)
			continue
		}
		out.Standalone = append(out.Standalone, a)
	}
	return out, nil
}

// ExpireDue moves every active purchase whose expiration has passed to
// expired. A zero now means the current time; a time after the current one
// is rejected so a sweep can never expire purchases that are still valid.
func (s *PurchaseService) ExpireDue(ctx context.Context, now time.Time) (*models.ExpireResult, error) {
	current := s.now()
	if now.IsZero() {
		now = current
	}
	if now.After(current) {
		return nil, apperrors.ValidationFields("as_of cannot be in the future", map[string]string{
			"as_of": "must not be later than the current time",
		})
	}
	now = now.UTC()

	res := &models.ExpireResult{}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if res.PackagePurchases, err = s.purchases.ExpireDue(ctx, now); err != nil {
			return err
		}
		res.AddonPurchases, err = s.addonPurchases.ExpireDue(ctx, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("expired due purchases",
		zap.Time("as_of", now),
		zap.Int64("package_purchases", res.PackagePurchases),
		zap.Int64("addon_purchases", res.AddonPurchases),
	)
	return res, nil
}

func (s *PurchaseService) loadBatch(ctx context.Context, batchID string, userID uint) (*models.PackagePurchase, error) {
	p, err := s.purchases.GetByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperrors.NotFound("Purchase")
	}
	addons, err := s.addonPurchases.ListByBatchIDs(ctx, []string{batchID})
	if err != nil {
		return nil, err
	}
	p.Addons = addons
	if p.Addons == nil {
		p.Addons = []models.AddonPurchase{}
	}
	return p, nil
}

func (s *PurchaseService) loadStandalone(ctx context.Context, batchID string, userID uint) (*models.AddonPurchase, error) {
	rows, err := s.addonPurchases.ListByBatchIDs(ctx, []string{batchID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].UserID != userID {
		return nil, apperrors.NotFound("Addon purchase")
	}
	return &rows[0], nil
}

func scopedKey(kind string, userID uint, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%s", kind, userID, key)
}

// requestFingerprint identifies the payload an idempotency key was first used
// with, so a key cannot be replayed against a different checkout.
func requestFingerprint(kind string, ids ...uint64) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, id := range ids {
		h.Write([]byte{':'})
		h.Write([]byte(strconv.FormatUint(id, 10)))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// checkoutIDs lists the package id followed by the addon ids in ascending
// order, so the addon order in a request does not matter.
func checkoutIDs(packageID uint, addonIDs []uint) []uint64 {
	addons := make([]uint64, len(addonIDs))
	for i, id := range addonIDs {
		addons[i] = uint64(id)
	}
	slices.Sort(addons)
	return append([]uint64{uint64(packageID)}, addons...)
}

// reserve claims an idempotency key. replay is true when the key already
// belongs to a committed batch, returned as batchID. Stored results have the
// form "<fingerprint>|<batch id>".
func (s *PurchaseService) reserve(ctx context.Context, key, fingerprint string) (batchID string, replay bool, err error) {
	if key == "" || s.idem == nil {
		return "", false, nil
	}
	result, reserved, err := s.idem.Reserve(ctx, key)
	if err != nil {
		return "", false, apperrors.Store(err)
	}
	if reserved {
		return "", false, nil
	}
	if result == "" {
		return "", false, apperrors.Conflict("A request with this idempotency key is still in progress")
	}
	stored, batchID, ok := strings.Cut(result, "|")
	if !ok || stored != fingerprint {
		return "", false, apperrors.Conflict("Idempotency key was reused with a different request")
	}
	return batchID, true, nil
}

const completeAttempts = 3

// complete records the committed batch for the key. The rows are already
// committed, so a failure is retried and then logged; the pending marker
// expires on its own shorter TTL.
func (s *PurchaseService) complete(ctx context.Context, key, fingerprint, batchID string) {
	if key == "" || s.idem == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	for attempt := 1; attempt <= completeAttempts; attempt++ {
		if err = s.idem.Complete(ctx, key, fingerprint+"|"+batchID); err == nil {
			return
		}
		if attempt < completeAttempts {
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}
	}
	logger.FromContext(ctx, s.log).Error("store idempotency result",
		zap.String("purchase_batch_id", batchID),
		zap.Int("attempts", completeAttempts),
		zap.Error(err),
	)
}

func (s *PurchaseService) release(ctx context.Context, key string) {
	if key == "" || s.idem == nil {
		return
	}
	if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		logger.FromContext(ctx, s.log).Warn("release idempotency key", zap.Error(err))
	}
}

// sendReceipt mails the buyer in the background. The purchase has already
// committed, so failures are only logged.
func (s *PurchaseService) sendReceipt(ctx context.Context, purchase *models.PackagePurchase) {
	if s.receipts == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, s.log)
	go func() {
		user, err := s.users.GetByID(ctx, purchase.UserID)
		if err != nil {
			log.Warn("receipt: load buyer", zap.Uint("user_id", purchase.UserID), zap.Error(err))
			return
		}
		if err := s.receipts.SendPurchaseReceipt(ctx, user, purchase); err != nil {
			log.Warn("receipt: send", zap.String("purchase_batch_id", purchase.PurchaseBatchID), zap.Error(err))
		}
	}()
}
