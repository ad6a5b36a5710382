package proposal

import "errors"

var (
	// ErrMalformedPath is returned when an authentication path does not
	// have the length of its tree, or a leaf position does not fit in it.
	ErrMalformedPath = errors.New("malformed authentication path")
	// ErrWitnessInconsistency is returned when the relations recomputed
	// from the witness do not match the public values they must satisfy,
	// for example a spent nullifier or a coin that is not in the coin set.
	ErrWitnessInconsistency = errors.New("witness inconsistency")
	// ErrInstanceFormat is returned for a public instance that is malformed,
	// so it is rejected before any proof verification.
	ErrInstanceFormat = errors.New("malformed public instance")
	// ErrInvalidStage is returned when a composer transition is called out
	// of order.
	ErrInvalidStage = errors.New("invalid composer stage")
	// ErrMissingInput is returned when a witness lacks a required value.
	ErrMissingInput = errors.New("missing witness input")
)
