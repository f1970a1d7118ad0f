package pagination

import (
	"fmt"

	"mediawatch/internal/domain/entity"
)

// Validate checks params against cfg.
func (p Params) Validate(cfg Config) error {
	if p.Page < 1 {
		return &entity.ValidationError{Field: "page", Message: "page must be a positive integer"}
	}
	if p.Limit < 1 || p.Limit > cfg.MaxLimit {
		return &entity.ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", cfg.MaxLimit)}
	}
	return nil
}

// WithDefaults fills zero values and caps the limit.
func (p Params) WithDefaults(cfg Config) Params {
	if p.Page <= 0 {
		p.Page = cfg.DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = cfg.DefaultLimit
	}
	if p.Limit > cfg.MaxLimit {
		p.Limit = cfg.MaxLimit
	}
	return p
}
