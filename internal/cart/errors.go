package cart

import (
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
)

// Sentinel errors for cart mutations. Returned unwrapped so callers can
// branch with errors.Is.
var (
	ErrSelfPurchase       = pkgerrors.New(pkgerrors.CodeValidation, "you cannot add your own listing to the cart")
	ErrListingUnavailable = pkgerrors.New(pkgerrors.CodeStateConflict, "listing is no longer available")
	ErrInvalidQuantity    = pkgerrors.New(pkgerrors.CodeValidation, "quantity is out of range")
)
