package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/repository"
	"github.com/spec-kit/lead-lens/internal/salesforce"
	apperrors "github.com/spec-kit/lead-lens/pkg/util/errorutil"
)

// PicklistFields are the Contact picklists served as dropdowns.
var PicklistFields = []string{
	"Status__c",
	"Temparture__c",
	"No_of_Calls__c",
	"MtgPlanner_CRM__Stage__c",
	"BDR__c",
	"Leon_BDR__c",
	"Marat_BDR__c",
	"Loan_Partners__c",
	"Leon_Loan_Partner__c",
	"Marat__c",
	"LeadSource",
}

// MetadataService serves Contact picklist values from a TTL cache in Postgres.
type MetadataService struct {
	sf     salesforce.API
	cache  repository.MetadataCacheRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewMetadataService constructs the service.
func NewMetadataService(sf salesforce.API, cache repository.MetadataCacheRepository, ttl time.Duration, logger *zap.Logger) *MetadataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataService{sf: sf, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Dropdowns returns the active values of every picklist field keyed by Salesforce field name.
// A stale or incomplete cache is refreshed from a describe call; if that call fails a complete
// stale cache is served instead.
func (s *MetadataService) Dropdowns(ctx context.Context) (map[string][]domain.PicklistValue, error) {
	cached, err := s.cache.ListByObject(ctx, contactObject)
	if err != nil {
		s.logger.Warn("metadata cache read failed", zap.Error(err))
		cached = nil
	}
	now := s.now()
	complete, fresh := s.inspect(cached, now)
	if complete && fresh {
		return fromCache(cached), nil
	}

	describe, err := s.sf.Describe(ctx, contactObject)
	if err != nil {
		if complete {
			s.logger.Warn("describe failed; serving stale metadata", zap.Error(err))
			return fromCache(cached), nil
		}
		return nil, apperrors.NewUpstreamError("Failed to fetch metadata", err)
	}

	out := make(map[string][]domain.PicklistValue, len(PicklistFields))
	for _, field := range PicklistFields {
		values := make([]domain.PicklistValue, 0)
		for _, p := range describe.ActivePicklist(field) {
			values = append(values, domain.PicklistValue{Value: p.Value, Label: p.Label})
		}
		out[field] = values

		entry := domain.CachedPicklist{ObjectName: contactObject, FieldName: field, Values: values, CachedAt: now.UTC()}
		if err := s.cache.Upsert(ctx, entry); err != nil {
			s.logger.Warn("metadata cache write failed", zap.String("field", field), zap.Error(err))
		}
	}
	return out, nil
}

// inspect reports whether cached covers every picklist field and whether all rows are within
// the TTL.
func (s *MetadataService) inspect(cached []domain.CachedPicklist, now time.Time) (complete, fresh bool) {
	if len(cached) != len(PicklistFields) {
		return false, false
	}
	have := make(map[string]domain.CachedPicklist, len(cached))
	for _, c := range cached {
		have[c.FieldName] = c
	}
	fresh = true
	for _, field := range PicklistFields {
		c, ok := have[field]
		if !ok {
			return false, false
		}
		if now.Sub(c.CachedAt) >= s.ttl {
			fresh = false
		}
	}
	return true, fresh
}

func fromCache(cached []domain.CachedPicklist) map[string][]domain.PicklistValue {
	out := make(map[string][]domain.PicklistValue, len(cached))
	for _, c := range cached {
		values := c.Values
		if values == nil {
			values = []domain.PicklistValue{}
		}
		out[c.FieldName] = values
	}
	return out
}
