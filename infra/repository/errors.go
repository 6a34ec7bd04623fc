package repository

import (
	"errors"

	"github.com/amirasaad/banksim/pkg/repository"
	"gorm.io/gorm"
)

// MapGormErrorToDomain replaces gorm's duplicate-key and record-not-found
// errors, anywhere in err's chain, with the repository sentinels. Other errors
// are returned unchanged.
func MapGormErrorToDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	default:
		return err
	}
}

// WrapError runs op and maps its error:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).First(&acct, "id = ?", id).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
