package dto

import (
	"homestay/shared/constant"
	"homestay/shared/model"
	"homestay/shared/timezone"
)

// Metadata is the audit block of a resource, rendered in the app timezone. The
// modification pair is left out until the row changes after creation.
type Metadata struct {
	CreatedAt  string  `json:"created_at"`
	CreatedBy  string  `json:"created_by"`
	ModifiedAt *string `json:"modified_at,omitempty"`
	ModifiedBy *string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(src model.Metadata) {
	*m = Metadata{
		CreatedAt: timezone.Format(src.CreatedAt, constant.DateFormat),
		CreatedBy: src.CreatedBy,
	}

	if !src.ModifiedAt.After(src.CreatedAt) {
		return
	}

	modifiedAt := timezone.Format(src.ModifiedAt, constant.DateFormat)
	modifiedBy := src.ModifiedBy

	m.ModifiedAt = &modifiedAt
	m.ModifiedBy = &modifiedBy
}
