package salesforce

func fixtureContact(id, name, created, modified string, fields map[string]any) map[string]any {
	first, last := splitName(name)
	rec := map[string]any{
		"Id":                       id,
		"Name":                     name,
		"FirstName":                first,
		"LastName":                 last,
		"Email":                    nil,
		"Phone":                    nil,
		"MobilePhone":              nil,
		"OwnerId":                  "005MOCK01",
		"Owner":                    map[string]any{"Name": "Leon Belov"},
		"CreatedDate":              created,
		"LastModifiedDate":         modified,
		"LeadSource":               nil,
		"Status__c":                nil,
		"Temparture__c":            nil,
		"No_of_Calls__c":           "0",
		"Message_QuickUpdate__c":   nil,
		"Hot_Lead__c":              false,
		"PAAL__c":                  false,
		"In_Process__c":            false,
		"Is_Client__c":             false,
		"MtgPlanner_CRM__Stage__c": nil,
		"MtgPlanner_CRM__Thank_you_to_Referral_Source__c": false,
		"BDR__c":                              nil,
		"Leon_BDR__c":                         nil,
		"Marat_BDR__c":                        nil,
		"Loan_Partners__c":                    nil,
		"Leon_Loan_Partner__c":                nil,
		"Marat__c":                            nil,
		"MtgPlanner_CRM__Referred_By_Text__c": nil,
		"MtgPlanner_CRM__Last_Touch__c":       nil,
		"Last_Touch_via_360_SMS__c":           nil,
		"Description":                         nil,
		"RecordTypeId":                        "012MOCK01",
	}
	for k, v := range fields {
		rec[k] = v
	}
	return rec
}

func splitName(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// FixtureContacts returns the contacts served by the mock org. Test LO is a loan partner on
// five of them and Test Agent referred five.
func FixtureContacts() []map[string]any {
	return []map[string]any{
		fixtureContact("003MOCK000000001", "John Smith", "2025-11-15T10:00:00.000Z", "2026-02-10T14:30:00.000Z", map[string]any{
			"Email": "john.smith@example.com", "Phone": "(555) 111-0001", "LeadSource": "Zillow",
			"Status__c": "Active", "Temparture__c": "Hot", "No_of_Calls__c": "3",
			"Message_QuickUpdate__c": "Very interested in refinancing", "Hot_Lead__c": true,
			"MtgPlanner_CRM__Stage__c": "Application",
			"Loan_Partners__c":         "Test LO", "Leon_Loan_Partner__c": "Test LO",
			"MtgPlanner_CRM__Referred_By_Text__c": "Test Agent",
			"MtgPlanner_CRM__Last_Touch__c":       "Called on 2/10, left voicemail",
		}),
		fixtureContact("003MOCK000000002", "Jane Doe", "2025-12-01T08:00:00.000Z", "2026-02-08T16:00:00.000Z", map[string]any{
			"Email": "jane.doe@example.com", "LeadSource": "Referral",
			"Status__c": "Follow Up", "Temparture__c": "Warm", "No_of_Calls__c": "1",
			"MtgPlanner_CRM__Stage__c":                        "Prospect",
			"MtgPlanner_CRM__Thank_you_to_Referral_Source__c": true,
			"Loan_Partners__c":                                "Test LO",
			"MtgPlanner_CRM__Referred_By_Text__c":             "Test Agent",
		}),
		fixtureContact("003MOCK000000003", "Robert Johnson", "2026-01-10T12:00:00.000Z", "2026-02-15T09:00:00.000Z", map[string]any{
			"Email": "robert.j@example.com", "LeadSource": "Website",
			"Status__c": "New", "Temparture__c": "Cold",
		}),
		fixtureContact("003MOCK000000004", "Maria Garcia", "2026-01-20T15:00:00.000Z", "2026-02-14T11:00:00.000Z", map[string]any{
			"Email": "maria.g@example.com", "LeadSource": "Realtor.com",
			"Status__c": "Active", "Temparture__c": "Hot", "No_of_Calls__c": "5",
			"Message_QuickUpdate__c": "Ready to lock rate", "Hot_Lead__c": true, "PAAL__c": true, "In_Process__c": true,
			"MtgPlanner_CRM__Stage__c":            "Processing",
			"Leon_Loan_Partner__c":                "Test LO",
			"MtgPlanner_CRM__Referred_By_Text__c": "Test Agent",
		}),
		fixtureContact("003MOCK000000005", "David Wilson", "2025-10-05T09:00:00.000Z", "2026-01-20T10:00:00.000Z", map[string]any{
			"OwnerId": "005MOCK02", "Owner": map[string]any{"Name": "Marat Tsirelson"},
			"Email": "david.w@example.com", "LeadSource": "Referral",
			"Status__c": "Closed", "Temparture__c": "Cold", "No_of_Calls__c": "2",
			"Is_Client__c": true, "MtgPlanner_CRM__Stage__c": "Closed",
			"Marat__c": "Other LO",
		}),
		fixtureContact("003MOCK000000006", "Sarah Chen", "2026-02-01T14:00:00.000Z", "2026-02-17T08:00:00.000Z", map[string]any{
			"Email": "sarah.c@example.com", "LeadSource": "Zillow",
			"Status__c": "Follow Up", "Temparture__c": "Warm", "No_of_Calls__c": "2",
			"In_Process__c": true, "MtgPlanner_CRM__Stage__c": "Underwriting",
			"Marat__c":                            "Test LO",
			"MtgPlanner_CRM__Referred_By_Text__c": "Test Agent",
		}),
		fixtureContact("003MOCK000000007", "Michael Brown", "2026-02-05T11:00:00.000Z", "2026-02-16T13:00:00.000Z", map[string]any{
			"Email": "michael.b@example.com", "LeadSource": "Website",
			"Status__c": "New", "Temparture__c": "Warm", "No_of_Calls__c": "1",
			"MtgPlanner_CRM__Referred_By_Text__c": "Other Agent",
		}),
		fixtureContact("003MOCK000000008", "Emily Davis", "2026-01-25T16:00:00.000Z", "2026-02-12T10:00:00.000Z", map[string]any{
			"Email": "emily.d@example.com", "LeadSource": "Referral",
			"Status__c": "Active", "Temparture__c": "Hot", "No_of_Calls__c": "4",
			"Message_QuickUpdate__c": "Docs submitted", "Hot_Lead__c": true, "In_Process__c": true,
			"MtgPlanner_CRM__Stage__c": "Application",
			"Loan_Partners__c":         "Test LO", "Leon_Loan_Partner__c": "Test LO",
			"MtgPlanner_CRM__Referred_By_Text__c": "Test Agent",
		}),
	}
}

// FixtureTasks returns Task records linked to fixture contacts through WhoId.
func FixtureTasks() []map[string]any {
	return []map[string]any{
		{"Id": "00TMOCK000000001", "WhoId": "003MOCK000000001", "Subject": "Follow-up call", "ActivityDate": "2026-02-10", "Status": "Completed", "Description": "Called about rate options", "CreatedDate": "2026-02-10T10:00:00.000Z"},
		{"Id": "00TMOCK000000002", "WhoId": "003MOCK000000001", "Subject": "Send pre-approval letter", "ActivityDate": "2026-02-12", "Status": "Completed", "Description": "Emailed pre-approval", "CreatedDate": "2026-02-12T14:00:00.000Z"},
		{"Id": "00TMOCK000000003", "WhoId": "003MOCK000000004", "Subject": "Schedule appraisal", "ActivityDate": "2026-02-15", "Status": "In Progress", "Description": nil, "CreatedDate": "2026-02-15T09:00:00.000Z"},
	}
}

// FixtureHistory returns ContactHistory rows.
func FixtureHistory() []map[string]any {
	return []map[string]any{
		{"ContactId": "003MOCK000000001", "Field": "Status__c", "OldValue": "New", "NewValue": "Active", "CreatedDate": "2026-02-08T10:00:00.000Z", "CreatedBy": map[string]any{"Name": "Leon Belov"}},
		{"ContactId": "003MOCK000000001", "Field": "Temparture__c", "OldValue": "Cold", "NewValue": "Warm", "CreatedDate": "2026-02-10T14:00:00.000Z", "CreatedBy": map[string]any{"Name": "Leon Belov"}},
		{"ContactId": "003MOCK000000004", "Field": "MtgPlanner_CRM__Stage__c", "OldValue": "Prospect", "NewValue": "Application", "CreatedDate": "2026-02-12T09:00:00.000Z", "CreatedBy": map[string]any{"Name": "Leon Belov"}},
	}
}

func picklist(values ...string) []PicklistEntry {
	out := make([]PicklistEntry, 0, len(values))
	for _, v := range values {
		out = append(out, PicklistEntry{Active: true, Value: v, Label: v})
	}
	return out
}

// FixtureDescribe returns the Contact describe served by the mock org.
func FixtureDescribe() *DescribeResult {
	stage := picklist("Prospect", "Application", "Processing", "Underwriting", "Closed")
	stage = append(stage, PicklistEntry{Active: false, Value: "Archived", Label: "Archived"})

	return &DescribeResult{Fields: []DescribeField{
		{Name: "Status__c", Label: "Status", Type: "picklist", PicklistValues: picklist("New", "Active", "Follow Up", "Closed", "Dead")},
		{Name: "Temparture__c", Label: "Temparture", Type: "picklist", PicklistValues: picklist("Hot", "Warm", "Cold")},
		{Name: "No_of_Calls__c", Label: "No of Calls", Type: "picklist", PicklistValues: picklist("0", "1", "2", "3", "4", "5")},
		{Name: "MtgPlanner_CRM__Stage__c", Label: "Stage", Type: "picklist", PicklistValues: stage},
		{Name: "BDR__c", Label: "BDR", Type: "picklist", PicklistValues: picklist("Leon", "Marat")},
		{Name: "Leon_BDR__c", Label: "Leon BDR", Type: "picklist", PicklistValues: picklist("Leon")},
		{Name: "Marat_BDR__c", Label: "Marat BDR", Type: "picklist", PicklistValues: picklist("Marat")},
		{Name: "Loan_Partners__c", Label: "Loan Partners", Type: "picklist", PicklistValues: picklist("Test LO", "Other LO")},
		{Name: "Leon_Loan_Partner__c", Label: "Leon Loan Partner", Type: "picklist", PicklistValues: picklist("Test LO")},
		{Name: "Marat__c", Label: "Marat", Type: "picklist", PicklistValues: picklist("Test LO", "Other LO")},
		{Name: "LeadSource", Label: "Lead Source", Type: "picklist", PicklistValues: picklist("Zillow", "Referral", "Website", "Realtor.com")},
		{Name: "Name", Label: "Full Name", Type: "string"},
	}}
}
