package models

// Catalog entities: flat reference data maintained by the field team and the
// back office. These have no parents and sync first.

// Area is a plant area or work front (e.g. "Caldeiraria").
type Area struct {
	SyncMeta
	Name string
}

// Collaborator is a field worker identified by a company registration number
// (matrícula), unique server-side and mirrored as unique locally.
type Collaborator struct {
	SyncMeta
	Name         string
	Registration string
	Role         string
}

// Requester is the client-side contact who requests a service.
type Requester struct {
	SyncMeta
	Name  string
	Email string
}

// Approver signs off daily records and measurement bulletins.
type Approver struct {
	SyncMeta
	Name  string
	Email string
}

// BmItem is a contract line item priced per unit, referenced by measurement
// bulletins.
type BmItem struct {
	SyncMeta
	Code        string
	Description string
	Unit        string
	UnitPrice   float64
}

// ProjectCode is a cost-allocation code for measurements.
type ProjectCode struct {
	SyncMeta
	Code        string
	Description string
}
