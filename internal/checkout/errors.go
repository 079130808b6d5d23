package checkout

import (
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
)

// Sentinel errors surfaced by settlement. ErrListingNoLongerAvailable is
// reported per rejected line, never for the settlement as a whole.
var (
	ErrEmptyCart                = pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	ErrCheckoutInProgress       = pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	ErrListingNoLongerAvailable = pkgerrors.New(pkgerrors.CodeStateConflict, "listing is no longer available")
)
