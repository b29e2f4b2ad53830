package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds backend selection and parameters for opening a RecordStore.
type Config struct {
	Backend string `json:"backend" yaml:"backend" validate:"required,oneof=files sqlite badger"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// StrictIDs rejects an add whose identifier exists anywhere in the tree.
	// When false only the parent's own children are checked.
	StrictIDs bool `json:"strict_ids" yaml:"strict_ids"`
}

// Supported backend names.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

var configValidate = validator.New()

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() != "Backend" {
			continue
		}
		if fe.Tag() == "required" {
			return ErrBackendEmpty
		}
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	return err
}
