// Package authz decides who may change what. Roles grant either "any"
// scope over a resource or "own" scope, which only matches records whose
// owner is the acting user.
package authz

import (
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

var ErrForbidden = errors.New("forbidden")

type Resource string

type Action string

const (
	ResourcePrep    Resource = "prep"
	ResourceFormula Resource = "formula"
	ResourceUser    Resource = "user"

	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

const (
	scopeAny = "any"
	scopeOwn = "own"
)

const modelText = `
[request_definition]
r = sub, user, owner, obj, act

[policy_definition]
p = sub, obj, act, scope

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act && (p.scope == "any" || (r.user != "" && r.user == r.owner))
`

var defaultPolicies = [][]string{
	{models.RoleAdmin, string(ResourcePrep), string(ActionCreate), scopeAny},
	{models.RoleAdmin, string(ResourcePrep), string(ActionUpdate), scopeAny},
	{models.RoleAdmin, string(ResourcePrep), string(ActionDelete), scopeAny},
	{models.RoleAdmin, string(ResourceFormula), string(ActionManage), scopeAny},
	{models.RoleAdmin, string(ResourceUser), string(ActionManage), scopeAny},
	{models.RoleUser, string(ResourcePrep), string(ActionCreate), scopeAny},
	{models.RoleUser, string(ResourcePrep), string(ActionUpdate), scopeOwn},
	{models.RoleUser, string(ResourcePrep), string(ActionDelete), scopeOwn},
}

type Authorizer struct {
	enforcer *casbin.Enforcer
}

func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse authorization model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("init enforcer: %w", err)
	}

	for _, policy := range defaultPolicies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2], policy[3]); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", policy, err)
		}
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed reports whether actor may perform action on a record owned by owner.
// Inactive accounts are never allowed anything.
func (authorizer *Authorizer) Allowed(actor models.User, resource Resource, action Action, owner string) (bool, error) {
	if !actor.Active {
		return false, nil
	}
	return authorizer.enforcer.Enforce(actor.Role, actor.Name, owner, string(resource), string(action))
}

func (authorizer *Authorizer) Check(actor models.User, resource Resource, action Action, owner string) error {
	allowed, err := authorizer.Allowed(actor, resource, action, owner)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// CanModifyPrep allows the author of a prep or an admin.
func (authorizer *Authorizer) CanModifyPrep(actor models.User, prep models.Prep, action Action) bool {
	allowed, err := authorizer.Allowed(actor, ResourcePrep, action, prep.PreparedBy)
	return err == nil && allowed
}
