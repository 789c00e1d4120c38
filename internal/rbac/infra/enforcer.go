package infra

import (
	"fmt"
	"strings"

	"go-hrms/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `[request_definition]
r = sub, obj, act, rel

[policy_definition]
p = sub, obj, act, rel

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act && relationMatch(r.rel, p.rel)
`

// NewEnforcer builds an enforcer with an empty policy. Rules are loaded by
// the rbac service.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	e.AddFunction("relationMatch", relationMatchFunc)
	return e, nil
}

func relationMatchFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("relationMatch expects 2 arguments, got %d", len(args))
	}
	requested, _ := args[0].(string)
	required, _ := args[1].(string)
	return RelationMatch(requested, required), nil
}

// RelationMatch reports whether the comma separated requested relations
// satisfy the relation a rule requires.
func RelationMatch(requested, required string) bool {
	if required == domain.RelationAny {
		return true
	}
	for _, rel := range strings.Split(requested, ",") {
		rel = strings.TrimSpace(rel)
		if rel == domain.RelationWildcard || rel == required {
			return true
		}
	}
	return false
}
