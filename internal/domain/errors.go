package domain

import "errors"

// ErrPhoneNotFound is returned by catalog providers for unknown phone ids.
var ErrPhoneNotFound = errors.New("phone not found")
