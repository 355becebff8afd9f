package core

import (
	"errors"
	"fmt"
)

var (
	ErrSceneLoadFailed    = errors.New("source scene could not be parsed")
	ErrTextureNotEmbedded = errors.New("referenced texture is not embedded in the source asset")
)

// Assertf enforces a contract between this system and its inputs or
// collaborators. A failed assertion is a programmer/content-authoring error,
// not a transient condition, so it panics instead of returning an error.
func Assertf(condition bool, format string, args ...interface{}) {
	if condition {
		return
	}
	msg := fmt.Sprintf(format, args...)
	LogError(msg)
	panic(msg)
}
