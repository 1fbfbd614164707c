package chunking

import "errors"

// ErrInvalidOption is wrapped by Options.Validate for any malformed
// threshold or limit (spec §7, argument-violation error kind).
var ErrInvalidOption = errors.New("chunking: invalid option")

// ErrDegenerateKernel is returned when a Hessian diagonal entry is
// non-positive — dividing by it would produce NaN/Inf and, since NaN
// comparisons are always false, silently drop that index out of
// collectCandidates's consideration instead of reporting the problem
// (spec §7.3: report rather than divide by zero).
var ErrDegenerateKernel = errors.New("chunking: kernel diagonal entry is non-positive")
