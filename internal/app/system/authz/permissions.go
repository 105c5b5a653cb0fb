package authz

import "github.com/dalemusser/bloodlink/internal/domain/models"

// Operation is a guarded action.
type Operation int

const (
	// ListRequests: Deny means the listing is narrowed to the caller's own.
	ListRequests Operation = iota
	CreateRequest
	UpdateRequest
	DeleteRequest
	Donate
	ViewFundingStats
	ManageUsers
)

// Grant is the outcome of Decide.
type Grant int

const (
	Deny Grant = iota
	// StatusOnly allows changing a donation request's status and nothing else.
	StatusOnly
	Full
)

func (g Grant) String() string {
	switch g {
	case StatusOnly:
		return "status-only"
	case Full:
		return "full"
	default:
		return "deny"
	}
}

type rule struct {
	owner    Grant
	nonOwner Grant
}

// table[op][role]. Roles missing from a row are denied.
var table = map[Operation]map[string]rule{
	ListRequests: {
		models.RoleAdmin:     {Full, Full},
		models.RoleVolunteer: {Full, Full},
		models.RoleDonor:     {Full, Deny},
	},
	CreateRequest: {
		models.RoleAdmin:     {Full, Full},
		models.RoleVolunteer: {Full, Full},
		models.RoleDonor:     {Full, Full},
	},
	// volunteers are status-only even on their own requests
	UpdateRequest: {
		models.RoleAdmin:     {Full, Full},
		models.RoleVolunteer: {StatusOnly, StatusOnly},
		models.RoleDonor:     {Full, Deny},
	},
	DeleteRequest: {
		models.RoleAdmin:     {Full, Full},
		models.RoleVolunteer: {Full, Deny},
		models.RoleDonor:     {Full, Deny},
	},
	Donate: {
		models.RoleAdmin:     {Deny, Full},
		models.RoleVolunteer: {Deny, Full},
		models.RoleDonor:     {Deny, Full},
	},
	ViewFundingStats: {
		models.RoleAdmin:     {Full, Full},
		models.RoleVolunteer: {Full, Full},
	},
	ManageUsers: {
		models.RoleAdmin: {Full, Full},
	},
}

// Decide maps (operation, role, ownership) to a grant. owns reports whether
// the caller is the requester of the resource; it is ignored for operations
// without an owner.
func Decide(op Operation, role string, owns bool) Grant {
	row, ok := table[op]
	if !ok {
		return Deny
	}
	r, ok := row[role]
	if !ok {
		return Deny
	}
	if owns {
		return r.owner
	}
	return r.nonOwner
}
