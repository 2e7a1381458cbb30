package vault

import (
	"context"
	"errors"
	"fmt"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
)

// ErrDisabled is returned when no encryption secret is configured.
var ErrDisabled = errors.New("bank details storage is not configured")

// BankDetailsService stores bank details encrypted and reads them back for
// their owner.
type BankDetailsService struct {
	store  ledger.BankDetailsStore
	cipher *Cipher
}

// NewBankDetailsService accepts a nil cipher; every call then fails with ErrDisabled.
func NewBankDetailsService(store ledger.BankDetailsStore, c *Cipher) *BankDetailsService {
	return &BankDetailsService{store: store, cipher: c}
}

func (s *BankDetailsService) Save(ctx context.Context, b core.BankDetails) error {
	if s.cipher == nil {
		return ErrDisabled
	}
	if err := b.Validate(); err != nil {
		return err
	}
	sealed, err := s.seal(b)
	if err != nil {
		return err
	}
	return s.store.SaveBankDetails(ctx, sealed)
}

// Get returns the decrypted details. The account number is masked unless
// full is set.
func (s *BankDetailsService) Get(ctx context.Context, userID int64, full bool) (core.BankDetails, error) {
	if s.cipher == nil {
		return core.BankDetails{}, ErrDisabled
	}
	stored, err := s.store.GetBankDetails(ctx, userID)
	if err != nil {
		return core.BankDetails{}, err
	}
	b, err := s.open(stored)
	if err != nil {
		return core.BankDetails{}, fmt.Errorf("decrypt bank details: %w", err)
	}
	if !full {
		b.AccountNumber = b.MaskedAccountNumber()
	}
	return b, nil
}

func (s *BankDetailsService) seal(b core.BankDetails) (core.BankDetails, error) {
	out := core.BankDetails{UserID: b.UserID}
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&out.BankName, b.BankName},
		{&out.AccountName, b.AccountName},
		{&out.AccountNumber, b.AccountNumber},
		{&out.Branch, b.Branch},
	} {
		v, err := s.cipher.Encrypt(f.src)
		if err != nil {
			return core.BankDetails{}, err
		}
		*f.dst = v
	}
	return out, nil
}

func (s *BankDetailsService) open(b core.BankDetails) (core.BankDetails, error) {
	out := core.BankDetails{UserID: b.UserID}
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&out.BankName, b.BankName},
		{&out.AccountName, b.AccountName},
		{&out.AccountNumber, b.AccountNumber},
		{&out.Branch, b.Branch},
	} {
		v, err := s.cipher.Decrypt(f.src)
		if err != nil {
			return core.BankDetails{}, err
		}
		*f.dst = v
	}
	return out, nil
}

