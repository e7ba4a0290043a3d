package account_test

import (
	"testing"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// FuzzTransferConservesBalance checks that a validated debit/credit pair never
// changes the total and never leaves a negative balance.
func FuzzTransferConservesBalance(f *testing.F) {
	f.Add(int64(10000), int64(2500), int64(0))
	f.Add(int64(1), int64(1), int64(99))
	f.Add(int64(0), int64(-5), int64(0))
	f.Add(int64(500), int64(501), int64(7))
	f.Fuzz(func(t *testing.T, originCents, amountCents, destCents int64) {
		if originCents < 0 || destCents < 0 {
			t.Skip()
		}
		origin, err := account.New().WithID(1).WithNumber("A").WithCustomerID(1).
			WithBalance(decimal.New(originCents, -account.Scale)).Build()
		if err != nil {
			t.Fatalf("build origin: %v", err)
		}
		dest, err := account.New().WithID(2).WithNumber("B").WithCustomerID(1).
			WithBalance(decimal.New(destCents, -account.Scale)).Build()
		if err != nil {
			t.Fatalf("build destination: %v", err)
		}
		amount := decimal.New(amountCents, -account.Scale)
		total := origin.Balance.Add(dest.Balance)

		if err := origin.ValidateTransfer(dest, amount); err != nil {
			return
		}
		if err := origin.Debit(amount); err != nil {
			t.Fatalf("debit after validation: %v", err)
		}
		if err := dest.Credit(amount); err != nil {
			t.Fatalf("credit after validation: %v", err)
		}
		if origin.Balance.IsNegative() {
			t.Errorf("origin balance negative: %s", origin.Balance)
		}
		if !origin.Balance.Add(dest.Balance).Equal(total) {
			t.Errorf("total changed: before %s after %s", total, origin.Balance.Add(dest.Balance))
		}
	})
}
