package diag

// Error code ranges, mirroring the teacher's range convention:
// E0001-E0099: name resolution errors
// E0100-E0199: declaration errors
// E0200-E0299: type/assignment compatibility errors
// E0300-E0399: expression/operator errors
// E0400-E0499: call errors
// E0500-E0599: control-flow/scope errors
// E0600-E0699: directive errors
// E0800-E0899: warnings
const (
	ErrUndefinedName        = "E0001"
	ErrDuplicateDeclaration = "E0101"
	ErrInvalidConstType     = "E0102"
	ErrArraySizeRequired    = "E0103"
	ErrArraySizeOutOfBounds = "E0104"
	ErrFloatsDisabled       = "E0105"
	ErrRecursiveInitializer = "E0106"
	ErrMemoryAddressRange   = "E0107"

	ErrAssignToConst       = "E0200"
	ErrInvalidAssignTarget = "E0201"
	ErrTypeIncompatible    = "E0202"
	ErrNarrowingCast       = "E0203"
	ErrMultiAssignArity    = "E0204"

	ErrOperandNotNumeric  = "E0300"
	ErrDivisorNotConstant = "E0301"
	ErrModuloSignedOperand = "E0302"
	ErrPowRequiresFloat    = "E0303"
	ErrLogicalNotInteger   = "E0304"
	ErrBitwiseNotInteger   = "E0305"
	ErrIndexNotByte        = "E0306"
	ErrIndexOutOfBounds    = "E0307"
	ErrTypecastIterable    = "E0308"

	ErrCallArity        = "E0400"
	ErrCallArgType      = "E0401"
	ErrSwapArguments    = "E0402"
	ErrAsmRegisterReuse = "E0403"

	ErrLabelScope          = "E0500"
	ErrSubroutineScope     = "E0501"
	ErrReturnArity         = "E0502"
	ErrReturnType          = "E0503"
	ErrForIterableType     = "E0504"
	ErrRangeEndpoint       = "E0505"
	ErrModuleStructure     = "E0506"
	ErrDuplicateDirective  = "E0507"
	ErrPostIncrDecrTarget  = "E0508"

	ErrDirectiveArgument = "E0600"
	ErrAsmFileMissing    = "E0601"

	WarnEmptyForBody      = "E0800"
	WarnUnreachableBranch = "E0801"
	WarnNonBooleanLiteral = "E0802"
	WarnZeropageDepleted  = "E0803"
	WarnUnusedVariable    = "E0804"
	WarnUnusedSubroutine  = "E0805"
)
