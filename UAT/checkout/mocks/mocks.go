// Package mocks declares the default substitutes for package checkout. Link
// it into a test binary and list ImportPath in the registration imports.
package mocks

import (
	"github.com/toejough/automock"
	"github.com/toejough/automock/UAT/checkout"
)

// ImportPath is this package's registration import path.
const ImportPath = "github.com/toejough/automock/UAT/checkout/mocks"

//nolint:gochecknoinits // Registration hooks are attached at link time
func init() {
	automock.Defer(ImportPath, register)
}

// receiptFactory builds a charge mock returning the given receipt, or
// "mock-receipt" by default.
func receiptFactory(args ...any) (any, error) {
	receipt := "mock-receipt"
	if len(args) > 0 {
		if given, ok := args[0].(string); ok {
			receipt = given
		}
	}

	return automock.NewMock(receipt, nil), nil
}

func register(registry *automock.Registry) {
	registry.Register(checkout.ChargeID, receiptFactory)
	registry.Register(checkout.NotifyID, nil)
}
