package domain

import "go.trai.ch/zerr"

var (
	// ErrBindingConfiguration is returned when a binding cannot be built from the builder's state.
	ErrBindingConfiguration = zerr.New("invalid binding configuration")

	// ErrMetadataRequired is returned when a metadata token is bound without metadata.
	ErrMetadataRequired = zerr.New("metadata required")

	// ErrRecursiveResolution is returned when a token depends on itself, directly or transitively.
	ErrRecursiveResolution = zerr.New("recursive resolution")

	// ErrUnboundToken is returned when no binding can produce a required token.
	ErrUnboundToken = zerr.New("unbound token")

	// ErrAmbiguousBinding is returned when several bindings match a request that expects one value.
	ErrAmbiguousBinding = zerr.New("ambiguous binding")

	// ErrInvalidOperation is returned for structural misuse of the container API.
	ErrInvalidOperation = zerr.New("invalid operation")

	// ErrIncompleteBinding is returned when Bind was called without a terminal method.
	ErrIncompleteBinding = zerr.New("incomplete binding")

	// ErrMissingInjectable is returned when a class was never registered with a Registry.
	ErrMissingInjectable = zerr.New("missing injectable registration")

	// ErrNotAClass is returned when a class is required but the identifier is a plain token.
	ErrNotAClass = zerr.New("identifier is not a class")

	// ErrTokenNotBound is returned when unbinding a token that has no bindings.
	ErrTokenNotBound = zerr.New("token is not bound")

	// ErrPropertyUnavailable is returned when a property is read outside of its constructor call.
	ErrPropertyUnavailable = zerr.New("property unavailable")

	// ErrValidationFailed wraps every violation found by Container.Validate.
	ErrValidationFailed = zerr.New("container validation failed")

	// ErrInternalConsistency signals a planner/executor mismatch. It is a defect, not a user error.
	ErrInternalConsistency = zerr.New("internal consistency violation")

	// ErrInvalidManifest is returned when a manifest cannot be read or is malformed.
	ErrInvalidManifest = zerr.New("invalid manifest")
)
