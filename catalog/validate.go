package catalog

import (
	"errors"
	"fmt"

	"rowlly_listings/models"
)

func validate(properties []models.Property, agents []models.Agent) error {
	var errs []error

	agentIDs := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		if a.ID == "" {
			errs = append(errs, errors.New("agent with empty id"))
			continue
		}
		if _, dup := agentIDs[a.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate agent id %q", a.ID))
		}
		agentIDs[a.ID] = struct{}{}
		if a.Rating < 0 || a.Rating > 5 {
			errs = append(errs, fmt.Errorf("agent %s: rating %.1f out of range", a.ID, a.Rating))
		}
	}

	ids := make(map[string]struct{}, len(properties))
	for _, p := range properties {
		if p.ID == "" {
			errs = append(errs, errors.New("property with empty id"))
			continue
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate property id %q", p.ID))
		}
		ids[p.ID] = struct{}{}

		for _, err := range validateProperty(p) {
			errs = append(errs, fmt.Errorf("property %s: %w", p.ID, err))
		}
		if _, ok := agentIDs[p.AgentID]; !ok {
			errs = append(errs, fmt.Errorf("property %s: unknown agent %q", p.ID, p.AgentID))
		}
	}

	return errors.Join(errs...)
}

func validateProperty(p models.Property) []error {
	var errs []error
	if !p.PropertyType.Valid() {
		errs = append(errs, fmt.Errorf("unknown property type %q", p.PropertyType))
	}
	if !p.Status.Valid() {
		errs = append(errs, fmt.Errorf("unknown status %q", p.Status))
	}
	if p.Price <= 0 {
		errs = append(errs, fmt.Errorf("price must be positive, got %d", p.Price))
	}
	if p.SqFt <= 0 {
		errs = append(errs, fmt.Errorf("sqft must be positive, got %d", p.SqFt))
	}
	if p.Bedrooms < 0 {
		errs = append(errs, fmt.Errorf("negative bedrooms %d", p.Bedrooms))
	}
	if p.Bathrooms < 0 {
		errs = append(errs, fmt.Errorf("negative bathrooms %g", p.Bathrooms))
	}
	if len(p.Images) == 0 {
		errs = append(errs, errors.New("at least one image is required"))
	}

	n := p.Neighborhood
	if n.Rating < 0 || n.Rating > 5 {
		errs = append(errs, fmt.Errorf("neighborhood rating %.1f out of range", n.Rating))
	}
	if n.WalkScore < 0 || n.WalkScore > 100 {
		errs = append(errs, fmt.Errorf("walk score %d out of range", n.WalkScore))
	}
	if n.TransitScore < 0 || n.TransitScore > 100 {
		errs = append(errs, fmt.Errorf("transit score %d out of range", n.TransitScore))
	}
	for _, s := range n.Schools {
		if s.Rating < 0 || s.Rating > 10 {
			errs = append(errs, fmt.Errorf("school %q rating %d out of range", s.Name, s.Rating))
		}
	}
	if p.Financial.HOA < 0 {
		errs = append(errs, fmt.Errorf("negative hoa %d", p.Financial.HOA))
	}
	return errs
}
