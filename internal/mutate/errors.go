package mutate

import "errors"

var ErrUnknownTransition = errors.New("unknown transition")
