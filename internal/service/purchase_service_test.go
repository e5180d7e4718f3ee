package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var checkoutTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	mem   *testutil.Memory
	svc   *PurchaseService
	clock time.Time
	buyer models.User
}

func newLedger(t *testing.T, opts ...PurchaseOption) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{mem: testutil.NewMemory(), clock: checkoutTime}
	f.buyer = f.mem.AddUser("buyer@example.com", models.RoleUser)
	opts = append([]PurchaseOption{WithClock(func() time.Time { return f.clock })}, opts...)
	f.svc = NewPurchaseService(
		f.mem,
		f.mem.Packages(),
		f.mem.Addons(),
		f.mem.PackagePurchases(),
		f.mem.AddonPurchases(),
		f.mem.Users(),
		zap.NewNop(),
		opts...,
	)
	return f
}

func (f *ledgerFixture) identity() models.Identity {
	return models.Identity{UserID: f.buyer.ID, Email: f.buyer.Email, Role: models.RoleUser}
}

func intPtr(v int) *int { return &v }

func TestCreatePackagePurchaseScenario(t *testing.T) {
	f := newLedger(t)
	pkg := f.mem.AddPackage("Professional", "999", 30, true)
	social := f.mem.AddAddon("Social Kit", "100", nil, true)
	revision := f.mem.AddAddon("Logo Revision", "50", nil, true)

	p, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{
		UserID:    f.buyer.ID,
		PackageID: pkg.ID,
		AddonIDs:  []uint{social.ID, revision.ID},
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("1149").Equal(p.TotalAmount), "total %s", p.TotalAmount)
	assert.Equal(t, checkoutTime, p.PurchaseDate)
	assert.Equal(t, checkoutTime.AddDate(0, 0, 30), p.ExpirationDate)
	assert.Equal(t, models.PurchaseStatusActive, p.Status)
	assert.NotEmpty(t, p.PurchaseBatchID)
	assert.Nil(t, p.PaymentReference)
	require.NotNil(t, p.Package)
	assert.Equal(t, "Professional", p.Package.Name)

	require.Len(t, p.Addons, 2)
	for _, a := range p.Addons {
		assert.Equal(t, p.PurchaseBatchID, a.PurchaseBatchID)
		assert.Equal(t, f.buyer.ID, a.UserID)
		assert.Equal(t, checkoutTime.AddDate(0, 0, 30), a.ExpirationDate)
		assert.Equal(t, models.PurchaseStatusActive, a.Status)
	}
	assert.True(t, decimal.NewFromInt(100).Equal(p.Addons[0].AmountPaid))
	assert.True(t, decimal.NewFromInt(50).Equal(p.Addons[1].AmountPaid))

	pkgs, addons := f.mem.Counts()
	assert.Equal(t, 1, pkgs)
	assert.Equal(t, 2, addons)
}

func TestCreatePackagePurchaseAddonOwnDuration(t *testing.T) {
	f := newLedger(t)
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	weekly := f.mem.AddAddon("Priority Support", "19.99", intPtr(7), true)

	p, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{
		UserID:    f.buyer.ID,
		PackageID: pkg.ID,
		AddonIDs:  []uint{weekly.ID},
	})
	require.NoError(t, err)
	require.Len(t, p.Addons, 1)
	assert.Equal(t, checkoutTime.AddDate(0, 0, 7), p.Addons[0].ExpirationDate)
	assert.Equal(t, "518.99", p.TotalAmount.StringFixed(2))
}

func TestCreatePackagePurchaseAllOrNothing(t *testing.T) {
	cases := map[string]func(f *ledgerFixture) PackagePurchaseInput{
		"missing package": func(f *ledgerFixture) PackagePurchaseInput {
			return PackagePurchaseInput{UserID: f.buyer.ID, PackageID: 404}
		},
		"inactive package": func(f *ledgerFixture) PackagePurchaseInput {
			pkg := f.mem.AddPackage("Legacy", "100", 30, false)
			return PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID}
		},
		"inactive addon": func(f *ledgerFixture) PackagePurchaseInput {
			pkg := f.mem.AddPackage("Starter", "499", 30, true)
			ok := f.mem.AddAddon("Social Kit", "100", nil, true)
			retired := f.mem.AddAddon("Fax Cover", "5", nil, false)
			return PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{ok.ID, retired.ID}}
		},
		"missing addon": func(f *ledgerFixture) PackagePurchaseInput {
			pkg := f.mem.AddPackage("Starter", "499", 30, true)
			return PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{9999}}
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			f := newLedger(t)
			_, err := f.svc.CreatePackagePurchase(context.Background(), build(f))
			assert.True(t, apperrors.Is(err, apperrors.ErrNotFound), "got %v", err)

			pkgs, addons := f.mem.Counts()
			assert.Zero(t, pkgs)
			assert.Zero(t, addons)
		})
	}
}

func TestCreatePackagePurchaseRollsBackOnInsertFailure(t *testing.T) {
	gateway := &testutil.Gateway{}
	f := newLedger(t, WithPaymentGateway(gateway))
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	a1 := f.mem.AddAddon("One", "10", nil, true)
	a2 := f.mem.AddAddon("Two", "20", nil, true)
	f.mem.FailOn("AddonPurchase.Create", apperrors.Store(errors.New("connection reset")))

	_, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{
		UserID:    f.buyer.ID,
		PackageID: pkg.ID,
		AddonIDs:  []uint{a1.ID, a2.ID},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable))

	pkgs, addons := f.mem.Counts()
	assert.Zero(t, pkgs)
	assert.Zero(t, addons)
	assert.Equal(t, []string{"pi_test_1"}, gateway.Cancelled)
}

func TestCreatePackagePurchaseWithGateway(t *testing.T) {
	gateway := &testutil.Gateway{}
	f := newLedger(t, WithPaymentGateway(gateway))
	pkg := f.mem.AddPackage("Professional", "999", 30, true)
	addon := f.mem.AddAddon("Guidelines", "150", nil, true)

	p, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{
		UserID:    f.buyer.ID,
		PackageID: pkg.ID,
		AddonIDs:  []uint{addon.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, p.PaymentReference)
	assert.Equal(t, "pi_test_1", *p.PaymentReference)
	require.Len(t, gateway.Created, 1)
	assert.Equal(t, "1149.00", gateway.Created[0].StringFixed(2))
	assert.Empty(t, gateway.Cancelled)
}

func TestCreatePackagePurchaseGatewayFailure(t *testing.T) {
	gateway := &testutil.Gateway{Err: errors.New("card network down")}
	f := newLedger(t, WithPaymentGateway(gateway))
	pkg := f.mem.AddPackage("Professional", "999", 30, true)

	_, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternalError, apperrors.From(err).Code)

	pkgs, _ := f.mem.Counts()
	assert.Zero(t, pkgs)
}

func TestCreatePackagePurchaseValidation(t *testing.T) {
	f := newLedger(t)
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	addon := f.mem.AddAddon("One", "10", nil, true)

	inputs := []PackagePurchaseInput{
		{PackageID: pkg.ID},
		{UserID: f.buyer.ID},
		{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{addon.ID, addon.ID}},
		{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{0}},
	}
	for _, in := range inputs {
		_, err := f.svc.CreatePackagePurchase(context.Background(), in)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "input %+v: %v", in, err)
	}
}

func TestCreatePackagePurchaseSendsReceipt(t *testing.T) {
	receipts := testutil.NewReceipts()
	f := newLedger(t, WithReceipts(receipts))
	pkg := f.mem.AddPackage("Starter", "499", 30, true)

	p, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.NoError(t, err)

	select {
	case sent := <-receipts.Sent:
		assert.Equal(t, p.PurchaseBatchID, sent.PurchaseBatchID)
	case <-time.After(2 * time.Second):
		t.Fatal("receipt was not sent")
	}
}

func TestCreatePackagePurchaseReceiptFailureIsIgnored(t *testing.T) {
	receipts := testutil.NewReceipts()
	receipts.Err = errors.New("mailbox full")
	f := newLedger(t, WithReceipts(receipts))
	pkg := f.mem.AddPackage("Starter", "499", 30, true)

	_, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.NoError(t, err)

	select {
	case <-receipts.Sent:
	case <-time.After(2 * time.Second):
		t.Fatal("receipt was not attempted")
	}
}

func TestCreatePackagePurchaseIdempotencyKey(t *testing.T) {
	idem := testutil.NewIdempotency()
	f := newLedger(t, WithIdempotency(idem))
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	addon := f.mem.AddAddon("One", "10", nil, true)
	in := PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{addon.ID}, IdempotencyKey: "checkout-1"}

	first, err := f.svc.CreatePackagePurchase(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.CreatePackagePurchase(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PurchaseBatchID, second.PurchaseBatchID)
	require.Len(t, second.Addons, 1)
	pkgs, addons := f.mem.Counts()
	assert.Equal(t, 1, pkgs)
	assert.Equal(t, 1, addons)

	// keys are per user
	other := f.mem.AddUser("other@example.com", models.RoleUser)
	in.UserID = other.ID
	third, err := f.svc.CreatePackagePurchase(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestCreatePackagePurchaseIdempotencyInFlight(t *testing.T) {
	idem := testutil.NewIdempotency()
	f := newLedger(t, WithIdempotency(idem))
	pkg := f.mem.AddPackage("Starter", "499", 30, true)

	_, reserved, err := idem.Reserve(context.Background(), scopedKey("package", f.buyer.ID, "k"))
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, IdempotencyKey: "k"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestCreatePackagePurchaseIdempotencyKeyReusedForOtherPayload(t *testing.T) {
	idem := testutil.NewIdempotency()
	f := newLedger(t, WithIdempotency(idem))
	starter := f.mem.AddPackage("Starter", "499", 30, true)
	pro := f.mem.AddPackage("Professional", "999", 30, true)
	a1 := f.mem.AddAddon("One", "10", nil, true)
	a2 := f.mem.AddAddon("Two", "20", nil, true)
	ctx := context.Background()

	first, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: starter.ID, AddonIDs: []uint{a1.ID, a2.ID}, IdempotencyKey: "k1"})
	require.NoError(t, err)

	// addon order does not change the request
	again, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: starter.ID, AddonIDs: []uint{a2.ID, a1.ID}, IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pro.ID, IdempotencyKey: "k1"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, apperrors.From(err).Message, "different request")

	pkgs, _ := f.mem.Counts()
	assert.Equal(t, 1, pkgs)
}

func TestCreatePackagePurchaseRetriesStoringKeyResult(t *testing.T) {
	idem := testutil.NewIdempotency()
	idem.FailComplete = 2
	f := newLedger(t, WithIdempotency(idem))
	f.svc.retryDelay = 0
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	in := PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, IdempotencyKey: "flaky"}

	first, err := f.svc.CreatePackagePurchase(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3, idem.CompleteCalls)
	assert.NotEmpty(t, idem.Result(scopedKey("package", f.buyer.ID, "flaky")))

	second, err := f.svc.CreatePackagePurchase(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreatePackagePurchaseOpensIntentOutsideTransaction(t *testing.T) {
	var inTx []bool
	gateway := &testutil.Gateway{OnCreate: func(ctx context.Context) {
		inTx = append(inTx, testutil.InTransaction(ctx))
	}}
	f := newLedger(t, WithPaymentGateway(gateway))
	pkg := f.mem.AddPackage("Starter", "499", 30, true)

	_, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, inTx)
}

func TestCreatePackagePurchaseInactiveOpensNoIntent(t *testing.T) {
	gateway := &testutil.Gateway{}
	f := newLedger(t, WithPaymentGateway(gateway))
	retired := f.mem.AddPackage("Retired", "499", 30, false)
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	gone := f.mem.AddAddon("Gone", "10", nil, false)

	_, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: retired.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	_, err = f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{gone.ID}})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.Empty(t, gateway.Created)
	assert.Empty(t, gateway.Cancelled)
}

func TestCreateAddonPurchaseIdempotencyKeyReusedForOtherDuration(t *testing.T) {
	f := newLedger(t, WithIdempotency(testutil.NewIdempotency()))
	addon := f.mem.AddAddon("Social Kit", "100", nil, true)
	ctx := context.Background()

	_, err := f.svc.CreateAddonPurchase(ctx, AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID, DurationDays: 30, IdempotencyKey: "a1"})
	require.NoError(t, err)
	_, err = f.svc.CreateAddonPurchase(ctx, AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID, DurationDays: 90, IdempotencyKey: "a1"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, addons := f.mem.Counts()
	assert.Equal(t, 1, addons)
}

func TestCreatePackagePurchaseFailureReleasesKey(t *testing.T) {
	idem := testutil.NewIdempotency()
	f := newLedger(t, WithIdempotency(idem))

	_, err := f.svc.CreatePackagePurchase(context.Background(), PackagePurchaseInput{UserID: f.buyer.ID, PackageID: 77, IdempotencyKey: "retry-me"})
	require.Error(t, err)
	assert.False(t, idem.Has(scopedKey("package", f.buyer.ID, "retry-me")))
}

func TestCreateAddonPurchase(t *testing.T) {
	f := newLedger(t)
	addon := f.mem.AddAddon("Social Kit", "100", intPtr(30), true)

	_, err := f.svc.CreateAddonPurchase(context.Background(), AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	p, err := f.svc.CreateAddonPurchase(context.Background(), AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID, DurationDays: 90})
	require.NoError(t, err)
	assert.Equal(t, checkoutTime.AddDate(0, 0, 90), p.ExpirationDate)
	assert.True(t, decimal.NewFromInt(100).Equal(p.AmountPaid))
	assert.Equal(t, models.PurchaseStatusActive, p.Status)
	require.NotNil(t, p.Addon)
	assert.Equal(t, "Social Kit", p.Addon.Name)

	retired := f.mem.AddAddon("Retired", "1", nil, false)
	_, err = f.svc.CreateAddonPurchase(context.Background(), AddonPurchaseInput{UserID: f.buyer.ID, AddonID: retired.ID, DurationDays: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCreateAddonPurchaseIdempotencyKey(t *testing.T) {
	f := newLedger(t, WithIdempotency(testutil.NewIdempotency()))
	addon := f.mem.AddAddon("Social Kit", "100", nil, true)
	in := AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID, DurationDays: 30, IdempotencyKey: "a1"}

	first, err := f.svc.CreateAddonPurchase(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.CreateAddonPurchase(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, addons := f.mem.Counts()
	assert.Equal(t, 1, addons)
}

func TestCancelPurchase(t *testing.T) {
	f := newLedger(t)
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	addon := f.mem.AddAddon("One", "10", nil, true)
	ctx := context.Background()

	p, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{addon.ID}})
	require.NoError(t, err)

	f.clock = checkoutTime.Add(48 * time.Hour)
	cancelled, err := f.svc.CancelPurchase(ctx, p.ID, f.identity())
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, f.clock, *cancelled.CancelledAt)
	assert.Equal(t, p.ExpirationDate, cancelled.ExpirationDate)
	require.Len(t, cancelled.Addons, 1)
	assert.Equal(t, models.PurchaseStatusCancelled, cancelled.Addons[0].Status)

	_, err = f.svc.CancelPurchase(ctx, p.ID, f.identity())
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	stored, err := f.mem.PackagePurchases().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ExpirationDate, stored.ExpirationDate)
	assert.Equal(t, models.PurchaseStatusCancelled, stored.Status)
}

func TestCancelPurchaseErrorOrder(t *testing.T) {
	f := newLedger(t)
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	ctx := context.Background()
	p, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.NoError(t, err)

	stranger := models.Identity{UserID: f.buyer.ID + 100, Role: models.RoleUser}
	_, err = f.svc.CancelPurchase(ctx, 9999, stranger)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = f.svc.CancelPurchase(ctx, p.ID, stranger)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	admin := models.Identity{UserID: 1_000, Role: models.RoleAdmin}
	_, err = f.svc.CancelPurchase(ctx, p.ID, admin)
	require.NoError(t, err)

	// a terminal purchase still reports forbidden to a non-owner
	_, err = f.svc.CancelPurchase(ctx, p.ID, stranger)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	_, err = f.svc.CancelPurchase(ctx, p.ID, admin)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestCancelAddonPurchase(t *testing.T) {
	f := newLedger(t)
	addon := f.mem.AddAddon("Social Kit", "100", nil, true)
	ctx := context.Background()
	p, err := f.svc.CreateAddonPurchase(ctx, AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID, DurationDays: 30})
	require.NoError(t, err)

	_, err = f.svc.CancelAddonPurchase(ctx, p.ID, models.Identity{UserID: f.buyer.ID + 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	cancelled, err := f.svc.CancelAddonPurchase(ctx, p.ID, f.identity())
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCancelled, cancelled.Status)
	assert.Equal(t, p.ExpirationDate, cancelled.ExpirationDate)

	_, err = f.svc.CancelAddonPurchase(ctx, p.ID, f.identity())
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = f.svc.CancelAddonPurchase(ctx, 424242, f.identity())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListUserPurchases(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	starter := f.mem.AddPackage("Starter", "499", 30, true)
	pro := f.mem.AddPackage("Professional", "999", 30, true)
	addon := f.mem.AddAddon("One", "10", nil, true)

	older, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: starter.ID})
	require.NoError(t, err)
	f.clock = checkoutTime.Add(time.Hour)
	newer, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pro.ID, AddonIDs: []uint{addon.ID}})
	require.NoError(t, err)
	standalone, err := f.svc.CreateAddonPurchase(ctx, AddonPurchaseInput{UserID: f.buyer.ID, AddonID: addon.ID, DurationDays: 5})
	require.NoError(t, err)

	other := f.mem.AddUser("other@example.com", models.RoleUser)
	_, err = f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: other.ID, PackageID: starter.ID})
	require.NoError(t, err)

	list, err := f.svc.ListUserPurchases(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, list.Packages, 2)
	assert.Equal(t, newer.ID, list.Packages[0].ID)
	assert.Equal(t, older.ID, list.Packages[1].ID)
	assert.Len(t, list.Packages[0].Addons, 1)
	assert.NotNil(t, list.Packages[1].Addons)
	assert.Empty(t, list.Packages[1].Addons)
	require.NotNil(t, list.Packages[1].Package)
	assert.Equal(t, "Starter", list.Packages[1].Package.Name)

	require.Len(t, list.Standalone, 1)
	assert.Equal(t, standalone.ID, list.Standalone[0].ID)
}

func TestListUserPurchasesEmpty(t *testing.T) {
	f := newLedger(t)
	list, err := f.svc.ListUserPurchases(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.NotNil(t, list.Packages)
	assert.NotNil(t, list.Standalone)
	assert.Empty(t, list.Packages)
}

func TestExpireDue(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	short := f.mem.AddAddon("Short", "10", intPtr(3), true)

	p, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID, AddonIDs: []uint{short.ID}})
	require.NoError(t, err)

	f.clock = checkoutTime.AddDate(0, 0, 10)
	res, err := f.svc.ExpireDue(ctx, checkoutTime.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, &models.ExpireResult{PackagePurchases: 0, AddonPurchases: 1}, res)

	f.clock = checkoutTime.AddDate(0, 0, 31)
	res, err = f.svc.ExpireDue(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.PackagePurchases)

	_, err = f.svc.CancelPurchase(ctx, p.ID, f.identity())
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestExpireDueRejectsFutureAsOf(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	pkg := f.mem.AddPackage("Starter", "499", 30, true)
	p, err := f.svc.CreatePackagePurchase(ctx, PackagePurchaseInput{UserID: f.buyer.ID, PackageID: pkg.ID})
	require.NoError(t, err)

	_, err = f.svc.ExpireDue(ctx, checkoutTime.AddDate(1, 0, 0))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, apperrors.From(err).Details, "as_of")

	stored, err := f.mem.PackagePurchases().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusActive, stored.Status)

	// the current instant itself is allowed
	res, err := f.svc.ExpireDue(ctx, checkoutTime)
	require.NoError(t, err)
	assert.Zero(t, res.PackagePurchases)
}
