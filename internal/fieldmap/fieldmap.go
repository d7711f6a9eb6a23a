// Package fieldmap holds the fixed mapping between dashboard field names and Salesforce Contact
// field names, plus the per-role write allow-list.
package fieldmap

import (
	"fmt"

	"github.com/spec-kit/lead-lens/internal/domain"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// Field pairs an internal name with its Salesforce API name.
type Field struct {
	Internal string
	External string
}

// Temparture__c is the org's spelling.
var contactFields = []Field{
	{"status", "Status__c"},
	{"temperature", "Temparture__c"},
	{"noOfCalls", "No_of_Calls__c"},
	{"message", "Message_QuickUpdate__c"},
	{"hotLead", "Hot_Lead__c"},
	{"paal", "PAAL__c"},
	{"inProcess", "In_Process__c"},
	{"stage", "MtgPlanner_CRM__Stage__c"},
	{"thankYouToReferralSource", "MtgPlanner_CRM__Thank_you_to_Referral_Source__c"},
	{"bdr", "BDR__c"},
	{"loanPartner", "Loan_Partners__c"},
	{"leonLoanPartner", "Leon_Loan_Partner__c"},
	{"maratLoanPartner", "Marat__c"},
	{"leonBdr", "Leon_BDR__c"},
	{"maratBdr", "Marat_BDR__c"},
	{"leadSource", "LeadSource"},
	{"isClient", "Is_Client__c"},
	{"referredByText", "MtgPlanner_CRM__Referred_By_Text__c"},
	{"lastTouch", "MtgPlanner_CRM__Last_Touch__c"},
	{"lastTouchSms", "Last_Touch_via_360_SMS__c"},
}

var partnerWritable = map[string]struct{}{
	"status":                   {},
	"temperature":              {},
	"noOfCalls":                {},
	"message":                  {},
	"hotLead":                  {},
	"paal":                     {},
	"inProcess":                {},
	"stage":                    {},
	"thankYouToReferralSource": {},
}

var writeAllowList = map[domain.Role]map[string]struct{}{
	domain.RoleLoanOfficer: partnerWritable,
	domain.RoleAgent:       partnerWritable,
}

var (
	toExternal map[string]string
	toInternal map[string]string
)

func init() {
	var err error
	toExternal, toInternal, err = build(contactFields)
	if err != nil {
		panic(err)
	}
}

func build(fields []Field) (map[string]string, map[string]string, error) {
	forward := make(map[string]string, len(fields))
	reverse := make(map[string]string, len(fields))
	for _, f := range fields {
		if _, dup := forward[f.Internal]; dup {
			return nil, nil, fmt.Errorf("fieldmap: duplicate internal name %q", f.Internal)
		}
		if prev, dup := reverse[f.External]; dup {
			return nil, nil, fmt.Errorf("fieldmap: %q and %q share external name %q", prev, f.Internal, f.External)
		}
		forward[f.Internal] = f.External
		reverse[f.External] = f.Internal
	}
	return forward, reverse, nil
}

// Fields returns a copy of the mapping in declaration order.
func Fields() []Field {
	out := make([]Field, len(contactFields))
	copy(out, contactFields)
	return out
}

// External maps an internal name to its Salesforce name. Unknown names fail closed.
func External(internal string) (string, error) {
	external, ok := toExternal[internal]
	if !ok {
		return "", apperrors.NewUnknownField(internal)
	}
	return external, nil
}

// Internal maps a Salesforce name back to its internal name.
func Internal(external string) (string, bool) {
	internal, ok := toInternal[external]
	return internal, ok
}

// Writable reports whether role may write the internal field. The elevated role may write
// any mapped field.
func Writable(internal string, role domain.Role) bool {
	if _, ok := toExternal[internal]; !ok {
		return false
	}
	if role.Elevated() {
		return true
	}
	allowed, ok := writeAllowList[role]
	if !ok {
		return false
	}
	_, ok = allowed[internal]
	return ok
}

// ValidateWriteSet checks every field of one update record and returns it keyed by Salesforce
// names. Values must be scalars.
func ValidateWriteSet(fields map[string]any, role domain.Role) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		external, err := External(name)
		if err != nil {
			return nil, err
		}
		if !Writable(name, role) {
			return nil, apperrors.NewFieldNotEditable(name)
		}
		if !scalar(value) {
			return nil, apperrors.NewValidationError("Field value must be a string, number, boolean or null: "+name,
				map[string]any{"field": name})
		}
		out[external] = value
	}
	return out, nil
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32:
		return true
	}
	return false
}
