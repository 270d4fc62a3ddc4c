// Package checkout is a small shop front whose payment and mail calls go
// through automock slots.
package checkout

import (
	"errors"
	"fmt"

	"github.com/toejough/automock"
)

// Identifiers of the patchable call sites.
const (
	ChargeID = "checkout.Charge"
	NotifyID = "checkout.Notify"
)

// ErrDeclined is returned when the gateway refuses a charge.
var ErrDeclined = errors.New("checkout: charge declined")

// Call sites.
//
//nolint:gochecknoglobals // Slots are package-level call sites
var (
	Charge = automock.NewSlot(ChargeID, charge)
	Notify = automock.NewSlot(NotifyID, notify)
)

// Checkout charges account and mails it the receipt.
func Checkout(account string, cents int) (string, error) {
	receipt, err := Charge.Get()(account, cents)
	if err != nil {
		return "", fmt.Errorf("charging %s: %w", account, err)
	}

	err = Notify.Get()(account, "paid: "+receipt)
	if err != nil {
		return "", fmt.Errorf("notifying %s: %w", account, err)
	}

	return receipt, nil
}

func charge(account string, cents int) (string, error) {
	if cents <= 0 {
		return "", ErrDeclined
	}

	return fmt.Sprintf("live-%s-%d", account, cents), nil
}

func notify(string, string) error {
	return nil
}
