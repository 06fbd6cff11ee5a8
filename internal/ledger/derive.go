package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/payload"
)

const (
	transactionIDPrefix = "txn_"
	maxIDAttempts       = 5
)

// Draft is the caller-supplied content of a new transaction. Nil amounts are
// absent from the request.
type Draft struct {
	TransactionID   string
	Amount          *decimal.Decimal
	Fee             *decimal.Decimal
	FinalAmount     *decimal.Decimal
	TransactionType string
	Status          string
	Description     string
	Metadata        map[string]any
	SenderName      string
	ReceiverName    string
	SenderEmail     string
	ReceiverEmail   string
	SenderType      string
}

// DraftFromPayload decodes the creation fields of a request body. Only type
// errors are reported here; presence rules depend on the creation path.
func DraftFromPayload(p payload.Payload) (Draft, error) {
	v := apperr.NewValidator()
	var d Draft
	str := func(key string) string {
		s, _, err := p.String(key)
		v.Merge(err)
		return s
	}
	dec := func(key string) *decimal.Decimal {
		value, err := p.Decimal(key)
		v.Merge(err)
		return value
	}
	d.TransactionID = str("transaction_id")
	d.Amount = dec("amount")
	d.Fee = dec("fee")
	d.FinalAmount = dec("final_amount")
	d.TransactionType = str("transaction_type")
	d.Status = str("status")
	d.Description = str("description")
	d.SenderName = str("sender_name")
	d.ReceiverName = str("receiver_name")
	d.SenderEmail = str("sender_email")
	d.ReceiverEmail = str("receiver_email")
	d.SenderType = str("sender_type")
	metadata, _, err := p.Object("metadata")
	v.Merge(err)
	d.Metadata = metadata
	return d, v.Err()
}

// validate applies the rules shared by every creation path. requireID is
// false only where the transaction id is generated on demand.
func (d Draft) validate(requireID bool) error {
	v := apperr.NewValidator()
	if requireID {
		v.Check(d.TransactionID != "", "transaction_id", apperr.MsgRequired)
		v.Check(d.TransactionType != "", "transaction_type", apperr.MsgRequired)
	}
	v.Check(d.Amount != nil, "amount", apperr.MsgRequired)
	if requireID {
		v.Check(d.FinalAmount != nil, "final_amount", apperr.MsgRequired)
	}
	if d.Fee != nil {
		v.Check(!d.Fee.IsNegative(), "fee", apperr.MsgNegative)
	}
	return v.Err()
}

// withReceiverDefaults fills final_amount as amount - fee and the type as a
// credit when absent. A supplied final_amount is never checked against amount
// and fee.
func (d Draft) withReceiverDefaults() Draft {
	if d.TransactionType == "" {
		d.TransactionType = TypeCredit
	}
	if d.FinalAmount == nil && d.Amount != nil {
		final := d.Amount.Sub(d.feeOrZero())
		d.FinalAmount = &final
	}
	return d
}

// ForReceiver applies receiver-side defaults to d and validates it. The
// transaction id may still be empty; Record generates one.
func (d Draft) ForReceiver() (Draft, error) {
	d = d.withReceiverDefaults()
	if err := d.validate(false); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (d Draft) feeOrZero() decimal.Decimal {
	if d.Fee == nil {
		return decimal.Zero
	}
	return *d.Fee
}

// build materialises the draft for a wallet, applying status and fee defaults.
func (d Draft) build(walletID, accountID int64) Transaction {
	status := d.Status
	if status == "" {
		status = StatusPending
	}
	metadata := d.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Transaction{
		TransactionID:   d.TransactionID,
		WalletID:        walletID,
		AccountID:       accountID,
		Amount:          *d.Amount,
		Fee:             d.feeOrZero(),
		FinalAmount:     *d.FinalAmount,
		TransactionType: d.TransactionType,
		Status:          status,
		Description:     d.Description,
		Metadata:        metadata,
		SenderName:      d.SenderName,
		ReceiverName:    d.ReceiverName,
		SenderEmail:     d.SenderEmail,
		ReceiverEmail:   d.ReceiverEmail,
		SenderType:      d.SenderType,
	}
}

// NewTransactionID returns a random opaque transaction id.
func NewTransactionID() string {
	return transactionIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// generateID draws ids until one is unused in store.
func generateID(ctx context.Context, store Store, next func() string) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := next()
		taken, err := store.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique transaction id")
}

// Changes lists the mutable fields of an update; nil leaves a field untouched.
type Changes struct {
	Amount          *decimal.Decimal
	Fee             *decimal.Decimal
	FinalAmount     *decimal.Decimal
	TransactionType *string
	Status          *string
	Description     *string
	Metadata        map[string]any
	MetadataSet     bool
	SenderName      *string
	ReceiverName    *string
	SenderEmail     *string
	ReceiverEmail   *string
	SenderType      *string
}

// ChangesFromPayload decodes the fields present in an update body.
func ChangesFromPayload(p payload.Payload) (Changes, error) {
	v := apperr.NewValidator()
	var ch Changes
	str := func(key string) *string {
		if !p.Has(key) {
			return nil
		}
		s, _, err := p.String(key)
		if err != nil {
			v.Merge(err)
			return nil
		}
		return &s
	}
	dec := func(key string) *decimal.Decimal {
		value, err := p.Decimal(key)
		v.Merge(err)
		return value
	}
	ch.Amount = dec("amount")
	ch.Fee = dec("fee")
	ch.FinalAmount = dec("final_amount")
	ch.TransactionType = str("transaction_type")
	ch.Status = str("status")
	ch.Description = str("description")
	ch.SenderName = str("sender_name")
	ch.ReceiverName = str("receiver_name")
	ch.SenderEmail = str("sender_email")
	ch.ReceiverEmail = str("receiver_email")
	ch.SenderType = str("sender_type")
	metadata, set, err := p.Object("metadata")
	v.Merge(err)
	ch.Metadata, ch.MetadataSet = metadata, set
	if ch.Fee != nil && ch.Fee.IsNegative() {
		v.Add("fee", apperr.MsgNegative)
	}
	return ch, v.Err()
}

// apply merges ch into t without recomputing derived amounts. A blank
// transaction type keeps the stored one and a blank status resets to pending.
func (ch Changes) apply(t *Transaction) {
	if ch.Amount != nil {
		t.Amount = *ch.Amount
	}
	if ch.Fee != nil {
		t.Fee = *ch.Fee
	}
	if ch.FinalAmount != nil {
		t.FinalAmount = *ch.FinalAmount
	}
	if ch.TransactionType != nil && *ch.TransactionType != "" {
		t.TransactionType = *ch.TransactionType
	}
	if ch.Status != nil {
		t.Status = *ch.Status
		if t.Status == "" {
			t.Status = StatusPending
		}
	}
	if ch.MetadataSet {
		t.Metadata = ch.Metadata
	}
	setString(&t.Description, ch.Description)
	setString(&t.SenderName, ch.SenderName)
	setString(&t.ReceiverName, ch.ReceiverName)
	setString(&t.SenderEmail, ch.SenderEmail)
	setString(&t.ReceiverEmail, ch.ReceiverEmail)
	setString(&t.SenderType, ch.SenderType)
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
