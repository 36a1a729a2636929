package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"storefront/internal/repositories"
	pkgerrors "storefront/pkg/errors"
)

// notFoundOr maps a repository miss to NOT_FOUND and anything else to
// INTERNAL_ERROR.
func notFoundOr(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load "+what)
}

// validationError flattens validator output into a field -> message map.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(verrs))
	for _, e := range verrs {
		details[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}
