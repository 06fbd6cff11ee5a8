// Package payments records transactions addressed to a username, with the
// named account's wallet always on the receiving end.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/logging"
	"github.com/congo-pay/walletapi/internal/notification"
	"github.com/congo-pay/walletapi/internal/wallet"
)

var (
	errUnknownReceiver  = apperr.NotFound("No active account with this username.")
	errNoReceiverWallet = apperr.NotFound("This account has no active wallet.")
)

// Accounts resolves the receiving account.
type Accounts interface {
	FindActiveByUsername(ctx context.Context, username string) (identity.Account, error)
}

// Wallets resolves the receiving wallet.
type Wallets interface {
	Active(ctx context.Context, accountID int64) (wallet.Wallet, error)
}

// Service records username-addressed transactions.
type Service struct {
	accounts Accounts
	wallets  Wallets
	ledger   *ledger.Service
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a payment service.
func NewService(accounts Accounts, wallets Wallets, ledgerService *ledger.Service, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{accounts: accounts, wallets: wallets, ledger: ledgerService, notifier: notifier, logger: logger}
}

// Receive records d on the active wallet of the account named username. The
// receiver fields always describe that account; sender fields are kept as
// supplied.
func (s *Service) Receive(ctx context.Context, username string, d ledger.Draft) (ledger.Transaction, error) {
	username = strings.TrimSpace(username)
	v := apperr.NewValidator()
	v.Check(username != "", "username", apperr.MsgRequired)
	d, err := d.ForReceiver()
	v.Merge(err)
	if err := v.Err(); err != nil {
		return ledger.Transaction{}, err
	}

	account, err := s.accounts.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ledger.Transaction{}, errUnknownReceiver
		}
		return ledger.Transaction{}, err
	}
	w, err := s.wallets.Active(ctx, account.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ledger.Transaction{}, errNoReceiverWallet
		}
		return ledger.Transaction{}, err
	}

	d.ReceiverName = account.Username
	d.ReceiverEmail = account.Email
	txn, err := s.ledger.Record(ctx, w, d)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransactionReceived,
			Destination: strconv.FormatInt(account.ID, 10),
			Body:        fmt.Sprintf("You received %s from %s", txn.FinalAmount.String(), senderLabel(txn)),
		}); err != nil {
			s.logger.Warn("receiver notification failed", slog.Int64("account_id", account.ID), slog.Any("error", err))
		}
	}
	return txn, nil
}

func senderLabel(t ledger.Transaction) string {
	switch {
	case t.SenderName != "":
		return t.SenderName
	case t.SenderEmail != "":
		return t.SenderEmail
	default:
		return "an anonymous sender"
	}
}
