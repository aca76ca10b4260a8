package quote

import "errors"

var (
	// ErrNoApplicablePricing means the priceable has no definition, or no tier,
	// for the requested date and volume. It is an outcome, not a validation failure.
	ErrNoApplicablePricing = errors.New("no applicable pricing")
	// ErrInvalidResource marks records the calculator cannot read.
	ErrInvalidResource = errors.New("invalid resource")
	// ErrInvalidModifier marks modifier records with unreadable fields.
	ErrInvalidModifier = errors.New("invalid modifier")
)
