package repo

import (
	"context"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/client/models"
	"github.com/dmarques/obrafield/internal/dbx"
)

// Definitions for the nested-document entities. Their child collections live
// in a JSON blob column (dbx.JSON binder); the wire codecs expand the blob
// into the server's nested arrays and translate every embedded reference
// between the two id spaces.

func DailyRecordDef() Def[models.DailyRecord] {
	return Def[models.DailyRecord]{
		Table:     "daily_records",
		Endpoint:  "/efetivo/apontamentos/",
		DependsOn: []string{"areas", "collaborators", "requesters", "approvers"},
		Columns:   []string{"record_date", "area_id", "requester_id", "approver_id", "notes", "entries"},
		OrderBy:   "record_date DESC, local_id DESC",
		Fields: func(d *models.DailyRecord) []any {
			return []any{
				&d.RecordDate, &d.AreaID, &d.RequesterID, &d.ApproverID, &d.Notes,
				dbx.JSON[[]models.AttendanceEntry]{V: &d.Entries},
			}
		},
		ToWire:   dailyRecordToWire,
		FromWire: dailyRecordFromWire,
	}
}

func dailyRecordToWire(ctx context.Context, lk Lookup, d *models.DailyRecord) (map[string]any, error) {
	area, err := lk.ServerID(ctx, "areas", d.AreaID)
	if err != nil {
		return nil, err
	}
	requester, err := lk.OptionalServerID(ctx, "requesters", d.RequesterID)
	if err != nil {
		return nil, err
	}
	approver, err := lk.OptionalServerID(ctx, "approvers", d.ApproverID)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(d.Entries))
	for _, e := range d.Entries {
		collaborator, err := lk.ServerID(ctx, "collaborators", e.CollaboratorID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, map[string]any{
			"colaborador": collaborator,
			"horas":       e.Hours,
			"atividade":   e.Activity,
			"extra":       e.Overtime,
		})
	}

	return map[string]any{
		"data":         d.RecordDate,
		"area":         area,
		"solicitante":  requester,
		"aprovador":    approver,
		"observacoes":  d.Notes,
		"apontamentos": entries,
	}, nil
}

func dailyRecordFromWire(ctx context.Context, lk Lookup, rec api.Record, d *models.DailyRecord) error {
	areaServer, _ := rec.Int("area")
	areaID, err := lk.LocalID(ctx, "areas", areaServer)
	if err != nil {
		return err
	}

	reqServer, reqPresent := rec.Int("solicitante")
	requesterID, err := lk.OptionalLocalID(ctx, "requesters", reqServer, reqPresent)
	if err != nil {
		return err
	}
	aprServer, aprPresent := rec.Int("aprovador")
	approverID, err := lk.OptionalLocalID(ctx, "approvers", aprServer, aprPresent)
	if err != nil {
		return err
	}

	var entries []models.AttendanceEntry
	for _, child := range rec.List("apontamentos") {
		collabServer, _ := child.Int("colaborador")
		collabID, err := lk.LocalID(ctx, "collaborators", collabServer)
		if err != nil {
			return err
		}
		entries = append(entries, models.AttendanceEntry{
			CollaboratorID: collabID,
			Hours:          child.Float("horas"),
			Activity:       child.String("atividade"),
			Overtime:       child.Bool("extra"),
		})
	}

	d.RecordDate = rec.String("data")
	d.AreaID = areaID
	d.RequesterID = requesterID
	d.ApproverID = approverID
	d.Notes = rec.String("observacoes")
	d.Entries = entries
	return nil
}

func SurveyDef() Def[models.Survey] {
	return Def[models.Survey]{
		Table:     "surveys",
		Endpoint:  "/qualidade/pesquisas/",
		DependsOn: []string{"areas"},
		Columns:   []string{"title", "survey_date", "area_id", "items"},
		OrderBy:   "survey_date DESC, local_id DESC",
		Fields: func(s *models.Survey) []any {
			return []any{
				&s.Title, &s.SurveyDate, &s.AreaID,
				dbx.JSON[[]models.SurveyItem]{V: &s.Items},
			}
		},
		ToWire: func(ctx context.Context, lk Lookup, s *models.Survey) (map[string]any, error) {
			area, err := lk.ServerID(ctx, "areas", s.AreaID)
			if err != nil {
				return nil, err
			}
			items := make([]map[string]any, 0, len(s.Items))
			for _, it := range s.Items {
				items = append(items, map[string]any{
					"pergunta":   it.Question,
					"resposta":   it.Answer,
					"nota":       it.Score,
					"sinalizado": it.Flagged,
				})
			}
			return map[string]any{
				"titulo": s.Title,
				"data":   s.SurveyDate,
				"area":   area,
				"itens":  items,
			}, nil
		},
		FromWire: func(ctx context.Context, lk Lookup, rec api.Record, s *models.Survey) error {
			areaServer, _ := rec.Int("area")
			areaID, err := lk.LocalID(ctx, "areas", areaServer)
			if err != nil {
				return err
			}
			var items []models.SurveyItem
			for _, child := range rec.List("itens") {
				items = append(items, models.SurveyItem{
					Question: child.String("pergunta"),
					Answer:   child.String("resposta"),
					Score:    child.Float("nota"),
					Flagged:  child.Bool("sinalizado"),
				})
			}
			s.Title = rec.String("titulo")
			s.SurveyDate = rec.String("data")
			s.AreaID = areaID
			s.Items = items
			return nil
		},
	}
}

func MeasurementDef() Def[models.Measurement] {
	return Def[models.Measurement]{
		Table:     "measurements",
		Endpoint:  "/bm/boletins/",
		DependsOn: []string{"project_codes", "bm_items"},
		Columns:   []string{"number", "period_start", "period_end", "project_code_id", "items"},
		OrderBy:   "number",
		Fields: func(m *models.Measurement) []any {
			return []any{
				&m.Number, &m.PeriodStart, &m.PeriodEnd, &m.ProjectCodeID,
				dbx.JSON[[]models.MeasurementItem]{V: &m.Items},
			}
		},
		ToWire: func(ctx context.Context, lk Lookup, m *models.Measurement) (map[string]any, error) {
			project, err := lk.ServerID(ctx, "project_codes", m.ProjectCodeID)
			if err != nil {
				return nil, err
			}
			items := make([]map[string]any, 0, len(m.Items))
			for _, it := range m.Items {
				bmItem, err := lk.ServerID(ctx, "bm_items", it.BmItemID)
				if err != nil {
					return nil, err
				}
				items = append(items, map[string]any{
					"item_bm":     bmItem,
					"quantidade":  it.Quantity,
					"observacoes": it.Notes,
				})
			}
			return map[string]any{
				"numero":         m.Number,
				"periodo_inicio": m.PeriodStart,
				"periodo_fim":    m.PeriodEnd,
				"codigo_projeto": project,
				"itens":          items,
			}, nil
		},
		FromWire: func(ctx context.Context, lk Lookup, rec api.Record, m *models.Measurement) error {
			projectServer, _ := rec.Int("codigo_projeto")
			projectID, err := lk.LocalID(ctx, "project_codes", projectServer)
			if err != nil {
				return err
			}
			var items []models.MeasurementItem
			for _, child := range rec.List("itens") {
				bmServer, _ := child.Int("item_bm")
				bmID, err := lk.LocalID(ctx, "bm_items", bmServer)
				if err != nil {
					return err
				}
				items = append(items, models.MeasurementItem{
					BmItemID: bmID,
					Quantity: child.Float("quantidade"),
					Notes:    child.String("observacoes"),
				})
			}
			m.Number = rec.String("numero")
			m.PeriodStart = rec.String("periodo_inicio")
			m.PeriodEnd = rec.String("periodo_fim")
			m.ProjectCodeID = projectID
			m.Items = items
			return nil
		},
	}
}
