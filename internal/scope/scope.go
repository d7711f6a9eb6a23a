// Package scope resolves which Salesforce Contacts a principal may act on.
package scope

import (
	"errors"

	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/soql"
)

var (
	// ErrInvalidScopeField is returned when a fallback scope field is not a safe identifier.
	ErrInvalidScopeField = errors.New("invalid scope field")
	// ErrEmptyRule is returned for an AnyOf rule without fields, which would otherwise match everything.
	ErrEmptyRule = errors.New("scope rule has no fields")
)

// Partner fields a loan officer can be named in.
var LoanOfficerFields = []string{"Loan_Partners__c", "Leon_Loan_Partner__c", "Marat__c"}

// Referral field an agent is named in.
var AgentFields = []string{"MtgPlanner_CRM__Referred_By_Text__c"}

// Rule is either MatchAll or AnyOf(Fields).
type Rule struct {
	MatchAll bool
	Fields   []string
}

var rules = map[domain.Role]Rule{
	domain.RoleAdmin:       {MatchAll: true},
	domain.RoleLoanOfficer: {Fields: LoanOfficerFields},
	domain.RoleAgent:       {Fields: AgentFields},
}

// RuleFor returns the static rule for role.
func RuleFor(role domain.Role) (Rule, bool) {
	r, ok := rules[role]
	return r, ok
}

// DefaultField is the scope field stored for newly created principals of role.
func DefaultField(role domain.Role) string {
	rule, ok := RuleFor(role)
	if !ok || rule.MatchAll || len(rule.Fields) == 0 {
		return ""
	}
	return rule.Fields[0]
}

// BuildCondition returns the predicate restricting visible Contacts for a principal. Roles
// without a rule fall back to a single equality on the supplied scope field.
func BuildCondition(role domain.Role, field, value string) (soql.Condition, error) {
	rule, ok := RuleFor(role)
	if !ok {
		if !soql.ValidIdentifier(field) {
			return nil, ErrInvalidScopeField
		}
		return soql.Equals{Field: field, Value: value}, nil
	}
	if rule.MatchAll {
		return soql.MatchAll, nil
	}
	if len(rule.Fields) == 0 {
		return nil, ErrEmptyRule
	}

	or := make(soql.Or, 0, len(rule.Fields))
	for _, f := range rule.Fields {
		or = append(or, soql.Equals{Field: f, Value: value})
	}
	return or, nil
}

// ForSession builds the predicate for a verified session.
func ForSession(s *domain.Session) (soql.Condition, error) {
	return BuildCondition(s.Role, s.ScopeField, s.ScopeValue)
}
