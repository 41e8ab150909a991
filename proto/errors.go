package proto

import "errors"

// ErrParse reports that bytes could not be deserialized. It carries no further
// detail; the cause is logged at debug level.
var ErrParse = errors.New("proto: couldn't deserialize given bytes into a proto")
