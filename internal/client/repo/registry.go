package repo

import (
	"database/sql"

	"github.com/dmarques/obrafield/internal/client/models"
	syncx "github.com/dmarques/obrafield/internal/client/sync"
	"github.com/dmarques/obrafield/internal/logging"
)

// Registry assembles every entity's repository and registers its sync
// adapter with the engine, catalogs first so documents can resolve parent
// server ids when they push.
type Registry struct {
	Areas        *Repo[models.Area, *models.Area]
	Collabs      *Repo[models.Collaborator, *models.Collaborator]
	Requesters   *Repo[models.Requester, *models.Requester]
	Approvers    *Repo[models.Approver, *models.Approver]
	BmItems      *Repo[models.BmItem, *models.BmItem]
	ProjectCodes *Repo[models.ProjectCode, *models.ProjectCode]
	DailyRecords *Repo[models.DailyRecord, *models.DailyRecord]
	Surveys      *Repo[models.Survey, *models.Survey]
	Measurements *Repo[models.Measurement, *models.Measurement]
}

func NewRegistry(db *sql.DB, engine *syncx.Engine, log logging.Logger) (*Registry, error) {
	reg := &Registry{}
	var err error

	if reg.Areas, err = wire[models.Area](db, engine, log, AreaDef()); err != nil {
		return nil, err
	}
	if reg.Collabs, err = wire[models.Collaborator](db, engine, log, CollaboratorDef()); err != nil {
		return nil, err
	}
	if reg.Requesters, err = wire[models.Requester](db, engine, log, RequesterDef()); err != nil {
		return nil, err
	}
	if reg.Approvers, err = wire[models.Approver](db, engine, log, ApproverDef()); err != nil {
		return nil, err
	}
	if reg.BmItems, err = wire[models.BmItem](db, engine, log, BmItemDef()); err != nil {
		return nil, err
	}
	if reg.ProjectCodes, err = wire[models.ProjectCode](db, engine, log, ProjectCodeDef()); err != nil {
		return nil, err
	}
	if reg.DailyRecords, err = wire[models.DailyRecord](db, engine, log, DailyRecordDef()); err != nil {
		return nil, err
	}
	if reg.Surveys, err = wire[models.Survey](db, engine, log, SurveyDef()); err != nil {
		return nil, err
	}
	if reg.Measurements, err = wire[models.Measurement](db, engine, log, MeasurementDef()); err != nil {
		return nil, err
	}
	return reg, nil
}

func wire[T any, PT entityPtr[T]](db *sql.DB, engine *syncx.Engine, log logging.Logger,
	def Def[T]) (*Repo[T, PT], error) {

	if err := engine.Register(NewAdapter[T, PT](db, def)); err != nil {
		return nil, err
	}
	rep := New[T, PT](db, def, log)
	rep.OnList(engine.Trigger(def.Table))
	return rep, nil
}
