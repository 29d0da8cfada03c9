package utils

import "errors"

// PermError is an error that should never be retried. Every configuration and
// data error raised while mapping or scoring rows is a PermError.
type PermError string

func (e PermError) Error() string {
	return string(e)
}

func (e PermError) IsPermanent() bool {
	return true
}

// IsPermanent reports whether any error in err's chain is permanent.
func IsPermanent(err error) bool {
	var perm interface{ IsPermanent() bool }
	if errors.As(err, &perm) {
		return perm.IsPermanent()
	}
	return false
}
