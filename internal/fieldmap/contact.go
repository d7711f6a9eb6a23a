package fieldmap

import (
	"strconv"

	"github.com/spec-kit/lead-lens/internal/domain"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// ContactSelectFields lists the Salesforce fields read for a contact listing.
var ContactSelectFields = []string{
	"Id", "Name", "FirstName", "LastName", "Email", "Phone", "MobilePhone",
	"OwnerId", "Owner.Name", "CreatedDate", "LastModifiedDate",
	"LeadSource", "Status__c", "Temparture__c", "No_of_Calls__c",
	"Message_QuickUpdate__c", "Hot_Lead__c", "PAAL__c", "In_Process__c",
	"Is_Client__c", "MtgPlanner_CRM__Stage__c", "MtgPlanner_CRM__Thank_you_to_Referral_Source__c",
	"BDR__c", "Leon_BDR__c", "Marat_BDR__c",
	"Loan_Partners__c", "Leon_Loan_Partner__c", "Marat__c",
	"MtgPlanner_CRM__Referred_By_Text__c", "MtgPlanner_CRM__Last_Touch__c",
	"Last_Touch_via_360_SMS__c", "Description", "RecordTypeId",
}

var sortAliases = map[string]string{
	"name":             "Name",
	"createdDate":      "CreatedDate",
	"lastModifiedDate": "LastModifiedDate",
}

// SortField resolves a client supplied sort key to a Salesforce field.
func SortField(key string) (string, error) {
	if f, ok := sortAliases[key]; ok {
		return f, nil
	}
	f, err := External(key)
	if err != nil {
		return "", apperrors.NewValidationError("Unsupported sort field: "+key, map[string]any{"field": key})
	}
	return f, nil
}

// ContactFromRecord projects a decoded Salesforce record onto ContactRow. Attributes the row
// does not carry are dropped.
func ContactFromRecord(record map[string]any) domain.ContactRow {
	row := domain.ContactRow{
		ID:                       str(record, "Id"),
		Name:                     str(record, "Name"),
		FirstName:                optStr(record, "FirstName"),
		LastName:                 optStr(record, "LastName"),
		Email:                    optStr(record, "Email"),
		Phone:                    optStr(record, "Phone"),
		MobilePhone:              optStr(record, "MobilePhone"),
		Status:                   optStr(record, "Status__c"),
		Temperature:              optStr(record, "Temparture__c"),
		NoOfCalls:                optStr(record, "No_of_Calls__c"),
		Message:                  optStr(record, "Message_QuickUpdate__c"),
		HotLead:                  optBool(record, "Hot_Lead__c"),
		PAAL:                     optBool(record, "PAAL__c"),
		InProcess:                optBool(record, "In_Process__c"),
		Stage:                    optStr(record, "MtgPlanner_CRM__Stage__c"),
		ThankYouToReferralSource: optBool(record, "MtgPlanner_CRM__Thank_you_to_Referral_Source__c"),
		BDR:                      optStr(record, "BDR__c"),
		LoanPartner:              optStr(record, "Loan_Partners__c"),
		LeonLoanPartner:          optStr(record, "Leon_Loan_Partner__c"),
		MaratLoanPartner:         optStr(record, "Marat__c"),
		LeonBDR:                  optStr(record, "Leon_BDR__c"),
		MaratBDR:                 optStr(record, "Marat_BDR__c"),
		LeadSource:               optStr(record, "LeadSource"),
		IsClient:                 optBool(record, "Is_Client__c"),
		ReferredByText:           optStr(record, "MtgPlanner_CRM__Referred_By_Text__c"),
		LastTouch:                optStr(record, "MtgPlanner_CRM__Last_Touch__c"),
		LastTouchSMS:             optStr(record, "Last_Touch_via_360_SMS__c"),
		Description:              optStr(record, "Description"),
		OwnerID:                  optStr(record, "OwnerId"),
		RecordType:               optStr(record, "RecordTypeId"),
		CreatedDate:              optStr(record, "CreatedDate"),
		LastModifiedDate:         optStr(record, "LastModifiedDate"),
	}
	if owner, ok := record["Owner"].(map[string]any); ok {
		row.OwnerName = optStr(owner, "Name")
	}
	return row
}

// InternalSnapshot re-keys the mapped Salesforce fields of record by internal name.
func InternalSnapshot(record map[string]any) map[string]any {
	out := make(map[string]any)
	for external, value := range record {
		if internal, ok := Internal(external); ok {
			out[internal] = value
		}
	}
	return out
}

func str(record map[string]any, key string) string {
	if v := optStr(record, key); v != nil {
		return *v
	}
	return ""
}

func optStr(record map[string]any, key string) *string {
	switch v := record[key].(type) {
	case string:
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(v)
		return &s
	}
	return nil
}

func optBool(record map[string]any, key string) *bool {
	if v, ok := record[key].(bool); ok {
		return &v
	}
	return nil
}
