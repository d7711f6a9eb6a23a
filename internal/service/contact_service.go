package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/events"
	"github.com/spec-kit/lead-lens/internal/fieldmap"
	"github.com/spec-kit/lead-lens/internal/repository"
	"github.com/spec-kit/lead-lens/internal/salesforce"
	"github.com/spec-kit/lead-lens/internal/scope"
	"github.com/spec-kit/lead-lens/internal/soql"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

const (
	contactObject = "Contact"

	// MaxBulkUpdate is the largest batch a single bulk update may carry.
	MaxBulkUpdate = 200

	defaultContactPageSize = 50
	maxContactPageSize     = 200
	activityLimit          = 50
	countConcurrency       = 8
)

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{15,18}$`)

// ContactService reads and writes Salesforce Contacts within the caller's scope.
type ContactService struct {
	sf         salesforce.API
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ContactDependencies encapsulates collaborators for the contact service.
type ContactDependencies struct {
	Salesforce salesforce.API
	AuditRepo  repository.AuditRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		sf:         deps.Salesforce,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns one page of contacts visible to the session. The page and the total count are
// fetched concurrently with the same predicate.
func (s *ContactService) List(ctx context.Context, session *domain.Session, filter domain.ContactFilter) (*domain.ContactPage, error) {
	cond, err := s.scopeCondition(session)
	if err != nil {
		return nil, err
	}

	page := max(filter.Page, 1)
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = defaultContactPageSize
	}
	pageSize = min(max(pageSize, 1), maxContactPageSize)

	order := soql.Order{Field: "LastModifiedDate", Desc: true}
	if filter.SortBy != "" {
		field, err := fieldmap.SortField(filter.SortBy)
		if err != nil {
			return nil, err
		}
		order = soql.Order{Field: field, Desc: filter.SortDesc}
	}

	where := soql.And{cond}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, soql.Contains{Field: "Name", Value: search})
	}
	if filter.Status != "" {
		where = append(where, soql.Equals{Field: "Status__c", Value: filter.Status})
	}
	if filter.Temperature != "" {
		where = append(where, soql.Equals{Field: "Temparture__c", Value: filter.Temperature})
	}
	if filter.DateFrom != nil {
		where = append(where, soql.OnOrAfter{Field: "CreatedDate", Date: *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, soql.OnOrBefore{Field: "CreatedDate", Date: *filter.DateTo})
	}

	dataQuery := soql.Query{
		Object:  contactObject,
		Fields:  fieldmap.ContactSelectFields,
		Where:   where,
		OrderBy: []soql.Order{order},
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}
	countQuery := soql.Query{Object: contactObject, Where: where, CountOnly: true}

	var (
		data  *salesforce.QueryResult
		count *salesforce.QueryResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.sf.Query(gctx, dataQuery)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.sf.Query(gctx, countQuery)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewUpstreamError("Failed to fetch contacts", err)
	}

	rows := make([]domain.ContactRow, 0, len(data.Records))
	for _, rec := range data.Records {
		rows = append(rows, fieldmap.ContactFromRecord(rec))
	}
	total := count.TotalSize
	return &domain.ContactPage{
		Rows:       rows,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// BulkUpdate validates every record, writes the batch in one partial-success call and emits
// one audit event per record Salesforce accepted. Results keep the input order.
func (s *ContactService) BulkUpdate(ctx context.Context, session *domain.Session, meta domain.RequestMeta, updates []domain.ContactUpdate) ([]domain.UpdateResult, error) {
	if len(updates) == 0 {
		return nil, apperrors.NewValidationError("Updates array is required", nil)
	}
	if len(updates) > MaxBulkUpdate {
		return nil, apperrors.NewTooManyRecords(MaxBulkUpdate)
	}
	cond, err := s.scopeCondition(session)
	if err != nil {
		return nil, err
	}

	records := make([]salesforce.Record, 0, len(updates))
	ids := make([]string, 0, len(updates))
	touched := map[string]struct{}{}
	for i, u := range updates {
		if !recordIDPattern.MatchString(u.ID) {
			return nil, apperrors.NewValidationError("Invalid record id", map[string]any{"index": i, "id": u.ID})
		}
		if len(u.Fields) == 0 {
			return nil, apperrors.NewValidationError("No fields to update", map[string]any{"index": i, "id": u.ID})
		}
		external, err := fieldmap.ValidateWriteSet(u.Fields, session.Role)
		if err != nil {
			return nil, err
		}
		for name := range external {
			touched[name] = struct{}{}
		}
		records = append(records, salesforce.Record{ID: u.ID, Fields: external})
		ids = append(ids, u.ID)
	}

	before, err := s.snapshot(ctx, ids, touched, cond)
	if err != nil {
		return nil, err
	}
	if !session.Role.Elevated() {
		for _, id := range ids {
			if _, ok := before[id]; !ok {
				return nil, apperrors.NewForbidden("Record not in scope: " + id)
			}
		}
	}

	saved, err := s.sf.Update(ctx, contactObject, records)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Failed to update contacts", err)
	}

	results := make([]domain.UpdateResult, len(updates))
	for i, u := range updates {
		if i >= len(saved) {
			results[i] = domain.UpdateResult{ID: u.ID, Success: false, Error: "No result returned"}
			continue
		}
		results[i] = domain.UpdateResult{ID: u.ID, Success: saved[i].Success, Error: saved[i].FirstError()}
	}

	actor := events.Actor{PrincipalID: session.PrincipalID, Role: session.Role, IP: meta.IP, UserAgent: meta.UserAgent}
	for i, r := range results {
		if !r.Success || s.dispatcher == nil {
			continue
		}
		payload := events.ContactUpdatedPayload{Before: before[r.ID], After: updates[i].Fields}
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventContactUpdated, r.ID, actor, payload))
	}
	return results, nil
}

// snapshot reads the touched fields of ids within scope, keyed by id and re-keyed to internal names.
func (s *ContactService) snapshot(ctx context.Context, ids []string, touched map[string]struct{}, cond soql.Condition) (map[string]map[string]any, error) {
	fields := make([]string, 0, len(touched)+1)
	fields = append(fields, "Id")
	for f := range touched {
		fields = append(fields, f)
	}
	sort.Strings(fields[1:])

	res, err := s.sf.Query(ctx, soql.Query{
		Object: contactObject,
		Fields: fields,
		Where:  soql.And{soql.In{Field: "Id", Values: ids}, cond},
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError("Failed to read contacts before update", err)
	}

	out := make(map[string]map[string]any, len(res.Records))
	for _, rec := range res.Records {
		id, _ := rec["Id"].(string)
		if id == "" {
			continue
		}
		snap := make(map[string]any, len(touched))
		for f := range touched {
			snap[f] = rec[f]
		}
		out[id] = fieldmap.InternalSnapshot(snap)
	}
	return out, nil
}

// VerifyIDsInScope returns the subset of ids the session may act on, in input order.
func (s *ContactService) VerifyIDsInScope(ctx context.Context, session *domain.Session, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if session.Role.Elevated() {
		return ids, nil
	}
	cond, err := s.scopeCondition(session)
	if err != nil {
		return nil, err
	}

	res, err := s.sf.Query(ctx, soql.Query{
		Object: contactObject,
		Fields: []string{"Id"},
		Where:  soql.And{soql.In{Field: "Id", Values: ids}, cond},
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError("Failed to verify record scope", err)
	}

	found := make(map[string]struct{}, len(res.Records))
	for _, rec := range res.Records {
		if id, ok := rec["Id"].(string); ok {
			found[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(found))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// CountForScopeValues counts the contacts each name would see under role. A failed count
// degrades to zero for that name.
func (s *ContactService) CountForScopeValues(ctx context.Context, names []string, role domain.Role, scopeField string) map[string]int {
	counts := make(map[string]int, len(names))
	results := make([]int, len(names))

	var g errgroup.Group
	g.SetLimit(countConcurrency)
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		g.Go(func() error {
			cond, err := scope.BuildCondition(role, scopeField, name)
			if err != nil {
				s.logger.Warn("scope condition for lead count", zap.String("name", name), zap.Error(err))
				return nil
			}
			res, err := s.sf.Query(ctx, soql.Query{Object: contactObject, Where: cond, CountOnly: true})
			if err != nil {
				s.logger.Warn("lead count query failed", zap.String("name", name), zap.Error(err))
				return nil
			}
			results[i] = res.TotalSize
			return nil
		})
	}
	_ = g.Wait()

	for i, name := range names {
		counts[name] = results[i]
	}
	return counts
}

// Activity merges Salesforce tasks and audit entries for a contact, newest first.
func (s *ContactService) Activity(ctx context.Context, session *domain.Session, contactID string) ([]domain.ActivityItem, error) {
	if err := s.requireInScope(ctx, session, contactID); err != nil {
		return nil, err
	}

	var (
		tasks   []map[string]any
		entries []domain.AuditEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.sf.Query(gctx, soql.Query{
			Object:  "Task",
			Fields:  []string{"Id", "Subject", "ActivityDate", "Status", "Description", "CreatedDate"},
			Where:   soql.Equals{Field: "WhoId", Value: contactID},
			OrderBy: []soql.Order{{Field: "CreatedDate", Desc: true}},
			Limit:   activityLimit,
		})
		if err != nil {
			s.logger.Warn("task query failed", zap.String("contact_id", contactID), zap.Error(err))
			return nil
		}
		tasks = res.Records
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.audit.ListByRecord(gctx, contactID, activityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	items := make([]domain.ActivityItem, 0, len(tasks)+len(entries))
	for _, t := range tasks {
		date := firstDate(t, "CreatedDate", "ActivityDate")
		items = append(items, domain.ActivityItem{
			Type:        domain.ActivityTypeTask,
			Date:        date,
			Subject:     optString(t["Subject"]),
			Description: optString(t["Description"]),
			Status:      optString(t["Status"]),
		})
	}
	for _, e := range entries {
		items = append(items, domain.ActivityItem{
			Type:    domain.ActivityTypeAudit,
			Date:    e.CreatedAt,
			Action:  string(e.Action),
			Changes: e.After,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
	return items, nil
}

// History returns the Salesforce field history of a contact, newest first.
func (s *ContactService) History(ctx context.Context, session *domain.Session, contactID string) ([]domain.FieldChange, error) {
	if err := s.requireInScope(ctx, session, contactID); err != nil {
		return nil, err
	}

	res, err := s.sf.Query(ctx, soql.Query{
		Object:  "ContactHistory",
		Fields:  []string{"Field", "OldValue", "NewValue", "CreatedDate", "CreatedBy.Name"},
		Where:   soql.Equals{Field: "ContactId", Value: contactID},
		OrderBy: []soql.Order{{Field: "CreatedDate", Desc: true}},
		Limit:   activityLimit,
	})
	if err != nil {
		s.logger.Warn("history query failed", zap.String("contact_id", contactID), zap.Error(err))
		return []domain.FieldChange{}, nil
	}

	out := make([]domain.FieldChange, 0, len(res.Records))
	for _, r := range res.Records {
		change := domain.FieldChange{
			Field:    stringValue(r["Field"]),
			OldValue: r["OldValue"],
			NewValue: r["NewValue"],
			Date:     stringValue(r["CreatedDate"]),
		}
		if by, ok := r["CreatedBy"].(map[string]any); ok {
			change.ChangedBy = optString(by["Name"])
		}
		out = append(out, change)
	}
	return out, nil
}

func (s *ContactService) requireInScope(ctx context.Context, session *domain.Session, contactID string) error {
	if !recordIDPattern.MatchString(contactID) {
		return apperrors.NewValidationError("Invalid record id", map[string]any{"id": contactID})
	}
	if _, err := s.scopeCondition(session); err != nil {
		return err
	}
	ids, err := s.VerifyIDsInScope(ctx, session, []string{contactID})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return apperrors.NewForbidden("Record not in scope")
	}
	return nil
}

// scopeCondition resolves the session's predicate. Non-admin sessions without a scope value
// cannot see anything.
func (s *ContactService) scopeCondition(session *domain.Session) (soql.Condition, error) {
	if session == nil {
		return nil, apperrors.NewUnauthorized("Missing session")
	}
	if !session.Role.Elevated() && strings.TrimSpace(session.ScopeValue) == "" {
		return nil, apperrors.NewNoScope()
	}
	cond, err := scope.ForSession(session)
	if err != nil {
		if errors.Is(err, scope.ErrInvalidScopeField) {
			return nil, apperrors.NewForbidden("Invalid scope configuration")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return cond, nil
}

func firstDate(record map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		if v, ok := record[k].(string); ok && v != "" {
			if t, err := soql.ParseDateTime(v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func optString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
