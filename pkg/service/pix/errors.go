package pix

import (
	"errors"

	"github.com/amirasaad/fintechflow/pkg/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
