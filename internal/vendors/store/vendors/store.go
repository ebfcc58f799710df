// Package vendors persists vendors. Document, email and registration are
// unique; a write that would break uniqueness fails with an error wrapping
// sentinel.ErrAlreadyUsed.
package vendors

import (
	"fmt"

	"roster/pkg/platform/sentinel"
)

var (
	ErrDocumentTaken     = fmt.Errorf("document %w", sentinel.ErrAlreadyUsed)
	ErrEmailTaken        = fmt.Errorf("email %w", sentinel.ErrAlreadyUsed)
	ErrRegistrationTaken = fmt.Errorf("registration %w", sentinel.ErrAlreadyUsed)
	ErrIDTaken           = fmt.Errorf("vendor id %w", sentinel.ErrAlreadyUsed)
)
