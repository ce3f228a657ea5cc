package models

import "github.com/dmarques/obrafield/internal/common"

// Validation mirrors the required-field rules the server enforces, so a row
// that saves locally has a chance of being accepted on push.

func required(field, value string) error {
	if value == "" {
		return &common.ValidationError{Field: field, Reason: "required"}
	}
	return nil
}

func (a *Area) Validate() error {
	return required("name", a.Name)
}

func (c *Collaborator) Validate() error {
	if err := required("name", c.Name); err != nil {
		return err
	}
	return required("registration", c.Registration)
}

func (r *Requester) Validate() error {
	return required("name", r.Name)
}

func (a *Approver) Validate() error {
	return required("name", a.Name)
}

func (b *BmItem) Validate() error {
	if err := required("code", b.Code); err != nil {
		return err
	}
	if err := required("description", b.Description); err != nil {
		return err
	}
	return required("unit", b.Unit)
}

func (p *ProjectCode) Validate() error {
	return required("code", p.Code)
}

func (d *DailyRecord) Validate() error {
	if err := required("record_date", d.RecordDate); err != nil {
		return err
	}
	if d.AreaID == 0 {
		return &common.ValidationError{Field: "area_id", Reason: "required"}
	}
	for _, e := range d.Entries {
		if e.CollaboratorID == 0 {
			return &common.ValidationError{Field: "entries.collaborator_id", Reason: "required"}
		}
	}
	return nil
}

func (s *Survey) Validate() error {
	if err := required("title", s.Title); err != nil {
		return err
	}
	if err := required("survey_date", s.SurveyDate); err != nil {
		return err
	}
	if s.AreaID == 0 {
		return &common.ValidationError{Field: "area_id", Reason: "required"}
	}
	return nil
}

func (m *Measurement) Validate() error {
	if err := required("number", m.Number); err != nil {
		return err
	}
	if m.ProjectCodeID == 0 {
		return &common.ValidationError{Field: "project_code_id", Reason: "required"}
	}
	for _, it := range m.Items {
		if it.BmItemID == 0 {
			return &common.ValidationError{Field: "items.bm_item_id", Reason: "required"}
		}
	}
	return nil
}
