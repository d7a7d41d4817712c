package app

import (
	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/store"
)

func (s *Service) ListModules() ([]models.FeatureModule, error) {
	return s.Store.ListModules()
}

func (s *Service) CreateModule(label, value string, sortOrder *int) (*models.FeatureModule, error) {
	if label == "" {
		return nil, invalidField("label", "is required")
	}
	if value == "" {
		value = models.Slugify(label)
	}

	order := 0
	if sortOrder != nil {
		order = *sortOrder
	} else {
		existing, err := s.Store.ListModules()
		if err != nil {
			return nil, err
		}
		// spacing of 10 leaves room for manual reordering
		order = len(existing) * 10
	}

	module := &models.FeatureModule{
		Label:     label,
		Value:     value,
		SortOrder: order,
		IsActive:  true,
	}
	if err := asValidationError(module.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.CreateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

// ModulePatch is a partial module update.
type ModulePatch struct {
	Label     *string `json:"label"`
	Value     *string `json:"value"`
	SortOrder *int    `json:"sortOrder"`
	IsActive  *bool   `json:"isActive"`
}

func (s *Service) UpdateModule(id int64, patch ModulePatch) (*models.FeatureModule, error) {
	modules, err := s.Store.ListModules()
	if err != nil {
		return nil, err
	}

	var module *models.FeatureModule
	for i := range modules {
		if modules[i].ID == id {
			module = &modules[i]
			break
		}
	}
	if module == nil {
		return nil, store.ErrNotFound
	}

	if patch.Label != nil {
		module.Label = *patch.Label
	}
	if patch.Value != nil {
		module.Value = *patch.Value
	}
	if patch.SortOrder != nil {
		module.SortOrder = *patch.SortOrder
	}
	if patch.IsActive != nil {
		module.IsActive = *patch.IsActive
	}
	if err := asValidationError(module.Validate()); err != nil {
		return nil, err
	}

	if err := s.Store.UpdateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *Service) DeleteModule(id int64) error {
	return s.Store.DeleteModule(id)
}
