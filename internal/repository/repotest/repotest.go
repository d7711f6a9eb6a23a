// Package repotest provides in-memory repositories for service and HTTP tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/repository"
)

// Principals is an in-memory PrincipalRepository enforcing unique (email, role).
type Principals struct {
	mu   sync.Mutex
	rows []*domain.Principal
	// Audit, when set, has entries of deleted principals re-pointed to nil.
	Audit *Audit
}

// NewPrincipals returns an empty store.
func NewPrincipals() *Principals {
	return &Principals{}
}

func (s *Principals) Create(_ context.Context, p *domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(p.Email, p.Role, "") {
		return repository.ErrDuplicate
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	clone := *p
	s.rows = append(s.rows, &clone)
	return nil
}

func (s *Principals) Update(_ context.Context, p *domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID != p.ID {
			continue
		}
		if s.conflicts(p.Email, row.Role, row.ID) {
			return repository.ErrDuplicate
		}
		row.Email = p.Email
		row.Name = p.Name
		row.Status = p.Status
		row.PasswordHash = p.PasswordHash
		row.ScopeField = p.ScopeField
		row.ScopeValue = p.ScopeValue
		return nil
	}
	return repository.ErrNotFound
}

func (s *Principals) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			clone := *row
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Principals) GetByIDAndRole(ctx context.Context, id string, role domain.Role) (*domain.Principal, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != role {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *Principals) ListByEmail(_ context.Context, email string) ([]domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Principal
	for _, row := range s.rows {
		if row.Email == email {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *Principals) List(_ context.Context, filter repository.PrincipalFilter) ([]domain.Principal, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []domain.Principal
	for _, row := range s.rows {
		if row.Role != filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(row.Name), search) && !strings.Contains(strings.ToLower(row.Email), search) {
			continue
		}
		matched = append(matched, *row)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func (s *Principals) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			t := at
			row.LastLoginAt = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Principals) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			if s.Audit != nil {
				s.Audit.detach(id)
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Principals) conflicts(email string, role domain.Role, exceptID string) bool {
	for _, row := range s.rows {
		if row.Email == email && row.Role == role && row.ID != exceptID {
			return true
		}
	}
	return false
}

// Audit is an in-memory AuditRepository.
type Audit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	// Err, when set, fails every Create.
	Err error
}

// NewAudit returns an empty audit log.
func NewAudit() *Audit {
	return &Audit{}
}

func (a *Audit) Create(_ context.Context, entry *domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}
	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *Audit) ListByRecord(_ context.Context, recordID string, limit int) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []domain.AuditEntry
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].SFRecordID == recordID {
			out = append(out, a.entries[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Entries returns a copy of every stored entry in insertion order.
func (a *Audit) Entries() []domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.AuditEntry(nil), a.entries...)
}

func (a *Audit) detach(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.entries {
		if a.entries[i].UserID != nil && *a.entries[i].UserID == userID {
			a.entries[i].UserID = nil
		}
	}
}

// MetadataCache is an in-memory MetadataCacheRepository.
type MetadataCache struct {
	mu      sync.Mutex
	entries map[string]domain.CachedPicklist
	Upserts int
}

// NewMetadataCache returns an empty cache.
func NewMetadataCache() *MetadataCache {
	return &MetadataCache{entries: make(map[string]domain.CachedPicklist)}
}

func (m *MetadataCache) ListByObject(_ context.Context, objectName string) ([]domain.CachedPicklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.CachedPicklist
	for _, e := range m.entries {
		if e.ObjectName == objectName {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out, nil
}

func (m *MetadataCache) Upsert(_ context.Context, entry domain.CachedPicklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ObjectName+"/"+entry.FieldName] = entry
	m.Upserts++
	return nil
}

var (
	_ repository.PrincipalRepository     = (*Principals)(nil)
	_ repository.AuditRepository         = (*Audit)(nil)
	_ repository.MetadataCacheRepository = (*MetadataCache)(nil)
)
