package repo

import (
	"context"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/client/models"
)

// Definitions for the flat catalog entities. These have no parents and are
// registered first so the documents below can resolve their server ids.

func AreaDef() Def[models.Area] {
	return Def[models.Area]{
		Table:    "areas",
		Endpoint: "/geral/areas/",
		Columns:  []string{"name"},
		OrderBy:  "name",
		Fields: func(a *models.Area) []any {
			return []any{&a.Name}
		},
		ToWire: func(_ context.Context, _ Lookup, a *models.Area) (map[string]any, error) {
			return map[string]any{"nome": a.Name}, nil
		},
		FromWire: func(_ context.Context, _ Lookup, rec api.Record, a *models.Area) error {
			a.Name = rec.String("nome")
			return nil
		},
	}
}

func CollaboratorDef() Def[models.Collaborator] {
	return Def[models.Collaborator]{
		Table:    "collaborators",
		Endpoint: "/efetivo/colaboradores/",
		Columns:  []string{"name", "registration", "role"},
		OrderBy:  "name",
		Fields: func(c *models.Collaborator) []any {
			return []any{&c.Name, &c.Registration, &c.Role}
		},
		ToWire: func(_ context.Context, _ Lookup, c *models.Collaborator) (map[string]any, error) {
			return map[string]any{
				"nome":      c.Name,
				"matricula": c.Registration,
				"funcao":    c.Role,
			}, nil
		},
		FromWire: func(_ context.Context, _ Lookup, rec api.Record, c *models.Collaborator) error {
			c.Name = rec.String("nome")
			c.Registration = rec.String("matricula")
			c.Role = rec.String("funcao")
			return nil
		},
	}
}

func RequesterDef() Def[models.Requester] {
	return Def[models.Requester]{
		Table:    "requesters",
		Endpoint: "/geral/solicitantes/",
		Columns:  []string{"name", "email"},
		OrderBy:  "name",
		Fields: func(r *models.Requester) []any {
			return []any{&r.Name, &r.Email}
		},
		ToWire: func(_ context.Context, _ Lookup, r *models.Requester) (map[string]any, error) {
			return map[string]any{"nome": r.Name, "email": r.Email}, nil
		},
		FromWire: func(_ context.Context, _ Lookup, rec api.Record, r *models.Requester) error {
			r.Name = rec.String("nome")
			r.Email = rec.String("email")
			return nil
		},
	}
}

func ApproverDef() Def[models.Approver] {
	return Def[models.Approver]{
		Table:    "approvers",
		Endpoint: "/geral/aprovadores/",
		Columns:  []string{"name", "email"},
		OrderBy:  "name",
		Fields: func(a *models.Approver) []any {
			return []any{&a.Name, &a.Email}
		},
		ToWire: func(_ context.Context, _ Lookup, a *models.Approver) (map[string]any, error) {
			return map[string]any{"nome": a.Name, "email": a.Email}, nil
		},
		FromWire: func(_ context.Context, _ Lookup, rec api.Record, a *models.Approver) error {
			a.Name = rec.String("nome")
			a.Email = rec.String("email")
			return nil
		},
	}
}

func BmItemDef() Def[models.BmItem] {
	return Def[models.BmItem]{
		Table:    "bm_items",
		Endpoint: "/bm/itens/",
		Columns:  []string{"code", "description", "unit", "unit_price"},
		OrderBy:  "code",
		Fields: func(b *models.BmItem) []any {
			return []any{&b.Code, &b.Description, &b.Unit, &b.UnitPrice}
		},
		ToWire: func(_ context.Context, _ Lookup, b *models.BmItem) (map[string]any, error) {
			return map[string]any{
				"codigo":         b.Code,
				"descricao":      b.Description,
				"unidade":        b.Unit,
				"preco_unitario": b.UnitPrice,
			}, nil
		},
		FromWire: func(_ context.Context, _ Lookup, rec api.Record, b *models.BmItem) error {
			b.Code = rec.String("codigo")
			b.Description = rec.String("descricao")
			b.Unit = rec.String("unidade")
			b.UnitPrice = rec.Float("preco_unitario")
			return nil
		},
	}
}

func ProjectCodeDef() Def[models.ProjectCode] {
	return Def[models.ProjectCode]{
		Table:    "project_codes",
		Endpoint: "/geral/codigos-projeto/",
		Columns:  []string{"code", "description"},
		OrderBy:  "code",
		Fields: func(p *models.ProjectCode) []any {
			return []any{&p.Code, &p.Description}
		},
		ToWire: func(_ context.Context, _ Lookup, p *models.ProjectCode) (map[string]any, error) {
			return map[string]any{"codigo": p.Code, "descricao": p.Description}, nil
		},
		FromWire: func(_ context.Context, _ Lookup, rec api.Record, p *models.ProjectCode) error {
			p.Code = rec.String("codigo")
			p.Description = rec.String("descricao")
			return nil
		},
	}
}
