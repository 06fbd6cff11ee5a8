package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/payload"
	"github.com/congo-pay/walletapi/internal/wallet"
)

type fixture struct {
	svc     *Service
	store   Store
	wallets *wallet.Service
	alice   identity.Account
	bob     identity.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	accounts := identity.NewMemoryRepository()
	alice := identity.Account{Email: "alice@example.com", Username: "alice"}
	require.NoError(t, accounts.Create(ctx, &alice))
	bob := identity.Account{Email: "bob@example.com", Username: "bob"}
	require.NoError(t, accounts.Create(ctx, &bob))

	wallets := wallet.NewService(wallet.NewMemoryRepository(), nil)
	store := NewInMemory()
	return &fixture{
		svc:     NewService(store, wallets, nil),
		store:   store,
		wallets: wallets,
		alice:   alice,
		bob:     bob,
	}
}

func (f *fixture) walletFor(t *testing.T, account identity.Account, address string) wallet.Wallet {
	t.Helper()
	w, err := f.wallets.Create(context.Background(), account.ID, wallet.CreateInput{Address: address, WalletType: "metamask"})
	require.NoError(t, err)
	return w
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ownedDraft(txID string) Draft {
	return Draft{
		TransactionID:   txID,
		Amount:          dec("100"),
		FinalAmount:     dec("100"),
		TransactionType: "credit",
	}
}

func TestCreateOwnedRequiresWallet(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOwned(context.Background(), f.alice, ownedDraft("tx-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrBusinessRule))
}

func TestCreateOwnedValidatesRequiredFields(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")

	_, err := f.svc.CreateOwned(context.Background(), f.alice, Draft{Fee: dec("-1")})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	for _, field := range []string{"transaction_id", "amount", "final_amount", "transaction_type"} {
		assert.Equal(t, []string{apperr.MsgRequired}, e.Fields[field], field)
	}
	assert.Equal(t, []string{apperr.MsgNegative}, e.Fields["fee"])
}

func TestCreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	w := f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	d := Draft{
		TransactionID:   "tx-round",
		Amount:          dec("100.50"),
		Fee:             dec("0.25"),
		FinalAmount:     dec("99"),
		TransactionType: "transfer",
		Description:     "rent",
		Metadata:        map[string]any{"ref": "abc", "n": float64(3)},
		SenderName:      "carol",
		ReceiverName:    "dave",
		SenderEmail:     "carol@example.com",
		ReceiverEmail:   "dave@example.com",
		SenderType:      "send",
	}
	created, err := f.svc.CreateOwned(ctx, f.alice, d)
	require.NoError(t, err)
	assert.Equal(t, w.ID, created.WalletID)

	got, err := f.svc.Get(ctx, f.alice.ID, created.ID)
	require.NoError(t, err)
	view := ToView(got)
	assert.Equal(t, "tx-round", view.TransactionID)
	assert.Equal(t, "100.5", view.Amount)
	assert.Equal(t, "0.25", view.Fee)
	assert.Equal(t, "99", view.FinalAmount, "final_amount is stored as given")
	assert.Equal(t, "transfer", view.TransactionType)
	assert.Equal(t, StatusPending, view.Status)
	assert.Equal(t, "rent", view.Description)
	assert.Equal(t, map[string]any{"ref": "abc", "n": float64(3)}, view.Metadata)
	assert.Equal(t, "carol", view.SenderName)
	assert.Equal(t, "dave", view.ReceiverName)
	assert.Equal(t, "carol@example.com", view.SenderEmail)
	assert.Equal(t, "dave@example.com", view.ReceiverEmail)
	assert.Equal(t, "send", view.SenderType)
}

func TestCreateDefaultsFeeAndStatus(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")

	created, err := f.svc.CreateOwned(context.Background(), f.alice, ownedDraft("tx-1"))
	require.NoError(t, err)
	view := ToView(created)
	assert.Equal(t, "0", view.Fee)
	assert.Equal(t, StatusPending, view.Status)
	assert.Equal(t, map[string]any{}, view.Metadata)
	assert.Equal(t, "", view.Description)
}

func TestDuplicateTransactionIDEmbedsOwnedRecord(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")
	f.walletFor(t, f.bob, "0xBBB")
	ctx := context.Background()

	first, err := f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-dup"))
	require.NoError(t, err)

	existing, err := f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-dup"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	require.NotNil(t, dup.Existing)
	assert.Equal(t, first.ID, dup.Existing.ID)
	assert.Equal(t, first.ID, existing.ID)

	_, err = f.svc.CreateOwned(ctx, f.bob, ownedDraft("tx-dup"))
	require.True(t, errors.As(err, &dup))
	assert.Nil(t, dup.Existing, "another account's record must not leak")
}

func TestDuplicateTransactionIDAfterSoftDelete(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	first, err := f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-gone"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, first.ID))

	_, err = f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-gone"))
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")
	f.walletFor(t, f.bob, "0xBBB")
	ctx := context.Background()

	txn, err := f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-alice"))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.bob.ID, txn.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	status := "completed"
	_, err = f.svc.Update(ctx, f.bob.ID, txn.ID, Changes{Status: &status})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.bob.ID, txn.ID), apperr.ErrNotFound))

	list, err := f.svc.List(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSoftDeleteIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	txn, err := f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-1"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, txn.ID))

	assert.True(t, errors.Is(f.svc.Delete(ctx, f.alice.ID, txn.ID), apperr.ErrNotFound))
	_, err = f.svc.Get(ctx, f.alice.ID, txn.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestWalletDeleteDoesNotCascade(t *testing.T) {
	f := newFixture(t)
	w := f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	txn, err := f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-1"))
	require.NoError(t, err)
	require.NoError(t, f.wallets.Delete(ctx, f.alice.ID, w.ID))

	got, err := f.svc.Get(ctx, f.alice.ID, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestUpdateDoesNotRecompute(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	d := ownedDraft("tx-1")
	d.Fee = dec("5")
	d.FinalAmount = dec("95")
	d.Amount = dec("100")
	txn, err := f.svc.CreateOwned(ctx, f.alice, d)
	require.NoError(t, err)

	blank := ""
	updated, err := f.svc.Update(ctx, f.alice.ID, txn.ID, Changes{
		Amount:          dec("200"),
		TransactionType: &blank,
		Status:          &blank,
		Metadata:        map[string]any{"note": "x"},
		MetadataSet:     true,
	})
	require.NoError(t, err)
	view := ToView(updated)
	assert.Equal(t, "200", view.Amount)
	assert.Equal(t, "95", view.FinalAmount)
	assert.Equal(t, "5", view.Fee)
	assert.Equal(t, "credit", view.TransactionType)
	assert.Equal(t, StatusPending, view.Status)
	assert.Equal(t, map[string]any{"note": "x"}, view.Metadata)
	assert.Equal(t, txn.WalletID, updated.WalletID)
}

func TestCreateByAddress(t *testing.T) {
	f := newFixture(t)
	aliceWallet := f.walletFor(t, f.alice, "0xAAA")
	bobWallet := f.walletFor(t, f.bob, "0xBBB")
	ctx := context.Background()

	txn, err := f.svc.CreateByAddress(ctx, nil, "0x BBB", ownedDraft("tx-anon"))
	require.NoError(t, err)
	assert.Equal(t, bobWallet.ID, txn.WalletID)

	_, err = f.svc.CreateByAddress(ctx, nil, "", ownedDraft("tx-2"))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{apperr.MsgRequired}, e.Fields["wallet_address"])

	_, err = f.svc.CreateByAddress(ctx, nil, "0xNONE", ownedDraft("tx-3"))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	alice := f.alice
	txn, err = f.svc.CreateByAddress(ctx, &alice, "0xBBB", ownedDraft("tx-4"))
	require.NoError(t, err)
	assert.Equal(t, aliceWallet.ID, txn.WalletID, "authenticated callers record on their own wallet")

	_, err = f.svc.CreateByAddress(ctx, nil, "0xBBB", ownedDraft("tx-anon"))
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Nil(t, dup.Existing)
}

func TestRecordDerivesReceiverDefaults(t *testing.T) {
	f := newFixture(t)
	w := f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	txn, err := f.svc.Record(ctx, w, Draft{Amount: dec("100"), Fee: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, "95", txn.FinalAmount.String())
	assert.Equal(t, TypeCredit, txn.TransactionType)
	assert.Regexp(t, `^txn_[0-9a-f]{32}$`, txn.TransactionID)

	_, err = f.svc.Record(ctx, w, Draft{})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{apperr.MsgRequired}, e.Fields["amount"])
}

func TestRecordRetriesGeneratedIDCollisions(t *testing.T) {
	f := newFixture(t)
	w := f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	_, err := f.svc.Record(ctx, w, Draft{TransactionID: "fixed-1", Amount: dec("1")})
	require.NoError(t, err)

	ids := []string{"fixed-1", "fixed-2"}
	f.svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	txn, err := f.svc.Record(ctx, w, Draft{Amount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, "fixed-2", txn.TransactionID)
}

func TestActivityFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items, err := f.svc.Activity(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, items)

	f.walletFor(t, f.alice, "0xAAA")
	_, err = f.svc.CreateOwned(ctx, f.alice, ownedDraft("tx-1"))
	require.NoError(t, err)

	items, err = f.svc.Activity(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "100", items[0].Amount)
	assert.Equal(t, "alice", items[0].Username)
	assert.Equal(t, "0xAAA", items[0].Address)
	assert.Equal(t, "metamask", items[0].WalletType)
}

func TestMetadataRoundTripsExactly(t *testing.T) {
	f := newFixture(t)
	f.walletFor(t, f.alice, "0xAAA")
	ctx := context.Background()

	p, err := payload.Parse([]byte(`{
		"transaction_id": "tx-meta", "amount": "1", "final_amount": "1", "transaction_type": "credit",
		"metadata": {"order": 9007199254740993, "price": 19.990, "tags": ["a", 1e2]}
	}`))
	require.NoError(t, err)
	d, err := DraftFromPayload(p)
	require.NoError(t, err)

	created, err := f.svc.CreateOwned(ctx, f.alice, d)
	require.NoError(t, err)
	got, err := f.svc.Get(ctx, f.alice.ID, created.ID)
	require.NoError(t, err)

	encoded, err := json.Marshal(ToView(got))
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"metadata":{"order":9007199254740993,"price":19.990,"tags":["a",1e2]}`)
}

func TestDraftRejectsOversizedAmount(t *testing.T) {
	p, err := payload.Parse([]byte(`{"amount": "1e300000000"}`))
	require.NoError(t, err)
	_, err = DraftFromPayload(p)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Ensure that there are no more than 20 digits in total."}, e.Fields["amount"])
}
