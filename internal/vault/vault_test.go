package vault

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
	"ledgerly/internal/ledger/memory"
)

const testSecret = "a-test-secret-of-decent-length"

func TestEncryptDecrypt(t *testing.T) {
	c, err := New(testSecret)
	require.NoError(t, err)

	ct, err := c.Encrypt("1234567890")
	require.NoError(t, err)
	assert.NotContains(t, ct, "1234567890")

	ct2, err := c.Encrypt("1234567890")
	require.NoError(t, err)
	assert.NotEqual(t, ct, ct2, "nonces must differ")

	pt, err := c.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", pt)
}

func TestEmptyStaysEmpty(t *testing.T) {
	c, err := New(testSecret)
	require.NoError(t, err)
	ct, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ct)
	pt, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestDecryptRejectsTampering(t *testing.T) {
	c, err := New(testSecret)
	require.NoError(t, err)
	other, err := New("a-different-secret-entirely")
	require.NoError(t, err)

	ct, err := c.Encrypt("secret")
	require.NoError(t, err)

	flipped := []byte(ct)
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}

	for name, in := range map[string]string{
		"not base64": "%%%",
		"too short":  "AAAA",
		"tampered":   string(flipped),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(in)
			assert.ErrorIs(t, err, ErrCiphertext)
		})
	}

	_, err = other.Decrypt(ct)
	assert.ErrorIs(t, err, ErrCiphertext)
}

func TestShortSecret(t *testing.T) {
	_, err := New("short")
	assert.ErrorIs(t, err, ErrShortKey)
}

func TestBankDetailsService(t *testing.T) {
	ctx := context.Background()
	c, err := New(testSecret)
	require.NoError(t, err)
	store := memory.New()
	svc := NewBankDetailsService(store, c)

	in := core.BankDetails{UserID: 3, BankName: "Commercial Bank", AccountName: "Nimal Perera", AccountNumber: "8001234567", Branch: "Kandy"}
	require.NoError(t, svc.Save(ctx, in))

	raw, err := store.GetBankDetails(ctx, 3)
	require.NoError(t, err)
	assert.NotEqual(t, in.AccountNumber, raw.AccountNumber)
	assert.False(t, strings.Contains(raw.BankName, "Commercial"))

	masked, err := svc.Get(ctx, 3, false)
	require.NoError(t, err)
	assert.Equal(t, "******4567", masked.AccountNumber)
	assert.Equal(t, "Commercial Bank", masked.BankName)

	full, err := svc.Get(ctx, 3, true)
	require.NoError(t, err)
	assert.Equal(t, in, full)

	_, err = svc.Get(ctx, 99, false)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestBankDetailsServiceDisabled(t *testing.T) {
	svc := NewBankDetailsService(memory.New(), nil)
	assert.ErrorIs(t, svc.Save(context.Background(), core.BankDetails{}), ErrDisabled)
	_, err := svc.Get(context.Background(), 1, false)
	assert.ErrorIs(t, err, ErrDisabled)
}
