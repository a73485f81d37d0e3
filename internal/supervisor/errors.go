package supervisor

import "errors"

var (
	ErrUnknownKind = errors.New("unknown child kind")
	ErrSpawnFailed = errors.New("spawn failed")
)
