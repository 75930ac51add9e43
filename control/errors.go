package control

import "errors"

var ErrNoSlider = errors.New("field has no slider")
