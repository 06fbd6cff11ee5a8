package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/notification"
	"github.com/congo-pay/walletapi/internal/wallet"
)

type testNotifier struct {
	last  notification.Message
	count int
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	n.count++
	return nil
}

type failingNotifier struct{}

func (failingNotifier) Send(context.Context, notification.Message) error {
	return errors.New("smtp down")
}

type harness struct {
	svc      *Service
	accounts identity.Repository
	wallets  *wallet.Service
	notifier *testNotifier
	alice    identity.Account
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	accounts := identity.NewMemoryRepository()
	alice := identity.Account{Email: "alice@example.com", Username: "alice"}
	if err := accounts.Create(ctx, &alice); err != nil {
		t.Fatalf("create account: %v", err)
	}
	wallets := wallet.NewService(wallet.NewMemoryRepository(), nil)
	notifier := &testNotifier{}
	ledgerSvc := ledger.NewService(ledger.NewInMemory(), wallets, nil)
	return &harness{
		svc:      NewService(accounts, wallets, ledgerSvc, notifier, nil),
		accounts: accounts,
		wallets:  wallets,
		notifier: notifier,
		alice:    alice,
	}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestReceiveRecordsOnReceiverWallet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w, err := h.wallets.Create(ctx, h.alice.ID, wallet.CreateInput{Address: "0xAAA", WalletType: "metamask"})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	txn, err := h.svc.Receive(ctx, "alice", ledger.Draft{
		Amount:        amount("100"),
		Fee:           amount("5"),
		SenderName:    "Carol",
		ReceiverName:  "someone else",
		ReceiverEmail: "spoof@example.com",
	})
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	if txn.WalletID != w.ID || txn.AccountID != h.alice.ID {
		t.Fatalf("expected alice's wallet, got wallet %d account %d", txn.WalletID, txn.AccountID)
	}
	if txn.ReceiverName != "alice" || txn.ReceiverEmail != "alice@example.com" {
		t.Fatalf("receiver fields not taken from account: %q %q", txn.ReceiverName, txn.ReceiverEmail)
	}
	if txn.SenderName != "Carol" {
		t.Fatalf("sender name should be kept, got %q", txn.SenderName)
	}
	if !txn.FinalAmount.Equal(decimal.RequireFromString("95")) {
		t.Fatalf("expected final amount 95, got %s", txn.FinalAmount)
	}
	if txn.TransactionType != ledger.TypeCredit || txn.TransactionID == "" {
		t.Fatalf("expected credit with generated id, got %q %q", txn.TransactionType, txn.TransactionID)
	}

	if h.notifier.last.Kind != notification.KindTransactionReceived {
		t.Fatalf("expected notification to be sent")
	}
	if h.notifier.last.Body != "You received 95 from Carol" {
		t.Fatalf("unexpected notification body %q", h.notifier.last.Body)
	}
}

func TestReceiveValidatesBeforeLookup(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Receive(context.Background(), "  ", ledger.Draft{})
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(e.Fields["username"]) == 0 || len(e.Fields["amount"]) == 0 {
		t.Fatalf("expected username and amount errors, got %v", e.Fields)
	}
	if h.notifier.count != 0 {
		t.Fatalf("no notification expected")
	}
}

func TestReceiveUnknownOrInactiveReceiver(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	draft := ledger.Draft{Amount: amount("10")}

	if _, err := h.svc.Receive(ctx, "nobody", draft); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown username, got %v", err)
	}

	// alice has no wallet yet
	if _, err := h.svc.Receive(ctx, "alice", draft); err != errNoReceiverWallet {
		t.Fatalf("expected missing wallet error, got %v", err)
	}

	if err := h.accounts.Deactivate(ctx, h.alice.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := h.svc.Receive(ctx, "alice", draft); err != errUnknownReceiver {
		t.Fatalf("expected unknown receiver after deactivation, got %v", err)
	}
}

func TestReceiveDuplicateTransactionID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.wallets.Create(ctx, h.alice.ID, wallet.CreateInput{Address: "0xAAA"}); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	draft := ledger.Draft{TransactionID: "tx-dup", Amount: amount("10")}

	if _, err := h.svc.Receive(ctx, "alice", draft); err != nil {
		t.Fatalf("first receive failed: %v", err)
	}
	_, err := h.svc.Receive(ctx, "alice", draft)
	var dup *ledger.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if dup.Existing != nil {
		t.Fatalf("anonymous duplicate must not expose the existing record")
	}
	if h.notifier.count != 1 {
		t.Fatalf("expected exactly one notification, got %d", h.notifier.count)
	}
}

func TestReceiveIgnoresNotifierFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.wallets.Create(ctx, h.alice.ID, wallet.CreateInput{Address: "0xAAA"}); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	h.svc.notifier = failingNotifier{}

	if _, err := h.svc.Receive(ctx, "alice", ledger.Draft{Amount: amount("1")}); err != nil {
		t.Fatalf("notifier failure must not fail the request: %v", err)
	}
}
