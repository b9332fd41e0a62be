package peer

import "errors"

var ErrInvalidConfig = errors.New("invalid peer configuration")
