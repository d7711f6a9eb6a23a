package domain

import "time"

// ContactRow is the internal projection of a Salesforce Contact.
type ContactRow struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	FirstName                *string `json:"firstName,omitempty"`
	LastName                 *string `json:"lastName,omitempty"`
	Email                    *string `json:"email,omitempty"`
	Phone                    *string `json:"phone,omitempty"`
	MobilePhone              *string `json:"mobilePhone,omitempty"`
	Status                   *string `json:"status,omitempty"`
	Temperature              *string `json:"temperature,omitempty"`
	NoOfCalls                *string `json:"noOfCalls,omitempty"`
	Message                  *string `json:"message,omitempty"`
	HotLead                  *bool   `json:"hotLead,omitempty"`
	PAAL                     *bool   `json:"paal,omitempty"`
	InProcess                *bool   `json:"inProcess,omitempty"`
	Stage                    *string `json:"stage,omitempty"`
	ThankYouToReferralSource *bool   `json:"thankYouToReferralSource,omitempty"`
	BDR                      *string `json:"bdr,omitempty"`
	LoanPartner              *string `json:"loanPartner,omitempty"`
	LeonLoanPartner          *string `json:"leonLoanPartner,omitempty"`
	MaratLoanPartner         *string `json:"maratLoanPartner,omitempty"`
	LeonBDR                  *string `json:"leonBdr,omitempty"`
	MaratBDR                 *string `json:"maratBdr,omitempty"`
	LeadSource               *string `json:"leadSource,omitempty"`
	IsClient                 *bool   `json:"isClient,omitempty"`
	ReferredByText           *string `json:"referredByText,omitempty"`
	LastTouch                *string `json:"lastTouch,omitempty"`
	LastTouchSMS             *string `json:"lastTouchSms,omitempty"`
	Description              *string `json:"description,omitempty"`
	OwnerID                  *string `json:"ownerId,omitempty"`
	OwnerName                *string `json:"ownerName,omitempty"`
	RecordType               *string `json:"recordType,omitempty"`
	CreatedDate              *string `json:"createdDate,omitempty"`
	LastModifiedDate         *string `json:"lastModifiedDate,omitempty"`
}

// ContactFilter narrows a contact listing.
type ContactFilter struct {
	Search      string
	Status      string
	Temperature string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortDesc    bool
}

// ContactPage is one page of a contact listing.
type ContactPage struct {
	Rows       []ContactRow
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// ContactUpdate is one record of a bulk update request, keyed by internal field names.
type ContactUpdate struct {
	ID     string
	Fields map[string]any
}

// UpdateResult reports the outcome for a single record of a bulk update.
type UpdateResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ActivityType distinguishes activity feed sources.
type ActivityType string

const (
	ActivityTypeTask  ActivityType = "sf_task"
	ActivityTypeAudit ActivityType = "audit"
)

// ActivityItem is one entry of a contact's merged activity feed.
type ActivityItem struct {
	Type        ActivityType   `json:"type"`
	Date        time.Time      `json:"date"`
	Subject     *string        `json:"subject,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *string        `json:"status,omitempty"`
	Action      string         `json:"action,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
}

// FieldChange is one Salesforce field history row.
type FieldChange struct {
	Field     string  `json:"field"`
	OldValue  any     `json:"oldValue"`
	NewValue  any     `json:"newValue"`
	Date      string  `json:"date"`
	ChangedBy *string `json:"changedBy,omitempty"`
}

// PicklistValue is an active dropdown option.
type PicklistValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CachedPicklist is a cached set of picklist values for one field.
type CachedPicklist struct {
	ObjectName string
	FieldName  string
	Values     []PicklistValue
	CachedAt   time.Time
}
