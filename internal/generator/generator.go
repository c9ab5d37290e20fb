// Package generator produces the daily brief content.
package generator

import (
	"context"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
)

// Generator produces one brief per call. The scheduler invokes it once per
// day; admins can trigger it out of band.
type Generator interface {
	Generate(ctx context.Context) (*domain.Article, error)
}
