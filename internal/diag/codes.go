package diag

// Diagnostic codes for the linearisation toolset.
//
// Code ranges:
// L0001-L0099: configuration errors
// L0100-L0199: syntactic violations (operator nesting, unguarded recursion)
// L0200-L0299: semantic violations (undeclared identifiers, sort mismatch)
// L0300-L0399: resource exhaustion
// L0400-L0499: data-consistency violations
// L0800-L0899: warnings

const (
	// L0001: unknown or inconsistent configuration
	ErrorBadConfig = "L0001"

	// L0002: unreadable or malformed input term
	ErrorBadInput = "L0002"

	// L0100: operator in an illegal nesting
	ErrorBadNesting = "L0100"

	// L0101: unguarded recursion in a pCRL process
	ErrorUnguarded = "L0101"

	// L0102: bounded initialisation used
	ErrorBoundedInit = "L0102"

	// L0103: left merge used
	ErrorLeftMerge = "L0103"

	// L0104: stack-mode continuation in a regular linearisation
	ErrorNotRegular = "L0104"

	// L0105: specification without pCRL processes
	ErrorNoPCRL = "L0105"

	// L0200: reference to an undeclared sort, function, action or process
	ErrorUndeclared = "L0200"

	// L0201: sort mismatch in a declaration
	ErrorSortMismatch = "L0201"

	// L0202: double declaration
	ErrorDoubleDecl = "L0202"

	// L0203: free data variable where none is allowed
	ErrorFreeVariable = "L0203"

	// L0300: enumerator variable bound exceeded
	WarnEnumBound = "L0300"

	// L0400: impossible internal state during linearisation
	ErrorInternal = "L0400"
)
