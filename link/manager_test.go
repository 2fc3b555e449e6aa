package link

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/getgatekit/gatekit/audit"
	"github.com/getgatekit/gatekit/domain"
)

// memoryStorage is an in-memory Storage for tests.
type memoryStorage struct {
	mu    sync.Mutex
	links map[[3]string]AccountLink
	seq   int

	failGet error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{links: make(map[[3]string]AccountLink)}
}

func key(accountID, entityTable, entityID string) [3]string {
	return [3]string{accountID, entityTable, entityID}
}

func (s *memoryStorage) UpsertLink(ctx context.Context, l *AccountLink) (*AccountLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(l.AccountID, l.EntityTable, l.EntityID)
	if existing, ok := s.links[k]; ok {
		existing.Role = l.Role
		s.links[k] = existing
		out := existing
		return &out, nil
	}

	s.seq++
	stored := *l
	stored.CreatedAt = time.Unix(int64(s.seq), 0)
	s.links[k] = stored
	out := stored
	return &out, nil
}

func (s *memoryStorage) GetLink(ctx context.Context, accountID, entityTable, entityID string) (*AccountLink, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[key(accountID, entityTable, entityID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := l
	return &out, nil
}

func (s *memoryStorage) ListLinks(ctx context.Context) ([]AccountLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AccountLink, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStorage) ListLinksByAccount(ctx context.Context, accountID string) ([]AccountLink, error) {
	all, _ := s.ListLinks(ctx)
	out := make([]AccountLink, 0)
	for _, l := range all {
		if l.AccountID == accountID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memoryStorage) ListLinksByEntity(ctx context.Context, entityTable, entityID string) ([]AccountLink, error) {
	all, _ := s.ListLinks(ctx)
	out := make([]AccountLink, 0)
	for _, l := range all {
		if l.EntityTable == entityTable && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memoryStorage) UpdateLinkRole(ctx context.Context, accountID, entityTable, entityID, role string) (*AccountLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(accountID, entityTable, entityID)
	l, ok := s.links[k]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Role = role
	s.links[k] = l
	out := l
	return &out, nil
}

func (s *memoryStorage) DeleteLink(ctx context.Context, accountID, entityTable, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(accountID, entityTable, entityID)
	if _, ok := s.links[k]; !ok {
		return domain.ErrNotFound
	}
	delete(s.links, k)
	return nil
}

type memoryAudit struct {
	events []*audit.Event
}

func (m *memoryAudit) SaveEvent(ctx context.Context, e *audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *memoryAudit) Query(ctx context.Context, f audit.Filter) ([]audit.Event, error) {
	return nil, nil
}

func TestGrantValidatesInput(t *testing.T) {
	m := NewManager(newMemoryStorage())

	cases := [][3]string{
		{"", "projects", "p1"},
		{"a1", "", "p1"},
		{"a1", "projects", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		if _, err := m.Grant(context.Background(), c[0], c[1], c[2], "user"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Grant(%q, %q, %q) err = %v, want ErrValidation", c[0], c[1], c[2], err)
		}
	}
}

func TestGrantDefaultsRole(t *testing.T) {
	m := NewManager(newMemoryStorage())

	l, err := m.Grant(context.Background(), "a1", "projects", "p1", "")
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if l.Role != DefaultRole {
		t.Errorf("Role = %q, want %q", l.Role, DefaultRole)
	}
}

func TestGrantTwiceOverwritesRole(t *testing.T) {
	store := newMemoryStorage()
	m := NewManager(store)
	ctx := context.Background()

	if _, err := m.Grant(ctx, "a1", "projects", "p1", "readonly"); err != nil {
		t.Fatalf("first Grant: %v", err)
	}
	if _, err := m.Grant(ctx, "a1", "projects", "p1", "admin"); err != nil {
		t.Fatalf("second Grant: %v", err)
	}

	all, _ := m.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 stored link, got %d", len(all))
	}
	if all[0].Role != "admin" {
		t.Errorf("Role = %q, want admin (second grant wins)", all[0].Role)
	}
}

func TestRevokeMissingIsNotFound(t *testing.T) {
	m := NewManager(newMemoryStorage())

	err := m.Revoke(context.Background(), "a1", "projects", "p1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Revoke err = %v, want ErrNotFound", err)
	}
}

func TestSetRoleRequiresExistingLink(t *testing.T) {
	m := NewManager(newMemoryStorage())
	ctx := context.Background()

	if _, err := m.SetRole(ctx, "a1", "projects", "p1", "admin"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetRole on missing link err = %v, want ErrNotFound", err)
	}

	if _, err := m.Grant(ctx, "a1", "projects", "p1", "readonly"); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	l, err := m.SetRole(ctx, "a1", "projects", "p1", "admin")
	if err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if l.Role != "admin" {
		t.Errorf("Role = %q, want admin", l.Role)
	}
}

func TestHasAccess(t *testing.T) {
	m := NewManager(newMemoryStorage())
	ctx := context.Background()

	// No link at all.
	ok, err := m.HasAccess(ctx, "a1", "projects", "p1", "")
	if err != nil || ok {
		t.Errorf("HasAccess with no link = (%v, %v), want (false, nil)", ok, err)
	}

	if _, err := m.Grant(ctx, "a1", "projects", "p1", "admin"); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	// Sufficient rank.
	if ok, _ := m.HasAccess(ctx, "a1", "projects", "p1", "user"); !ok {
		t.Error("admin should satisfy user")
	}

	// Insufficient rank.
	if _, err := m.SetRole(ctx, "a1", "projects", "p1", "readonly"); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if ok, _ := m.HasAccess(ctx, "a1", "projects", "p1", "admin"); ok {
		t.Error("readonly must not satisfy admin after role change")
	}

	// Role change reflects immediately, no caching lag.
	if _, err := m.SetRole(ctx, "a1", "projects", "p1", "admin"); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if ok, _ := m.HasAccess(ctx, "a1", "projects", "p1", "admin"); !ok {
		t.Error("admin role change must be visible on next check")
	}
}

func TestHasAccessPropagatesStoreErrors(t *testing.T) {
	store := newMemoryStorage()
	store.failGet = errors.New("connection reset")
	m := NewManager(store)

	ok, err := m.HasAccess(context.Background(), "a1", "projects", "p1", "user")
	if ok {
		t.Error("store failure must not allow access")
	}
	if err == nil {
		t.Error("store failure must surface as an error for the caller to fail closed on")
	}
}

func TestListByAccountNewestFirst(t *testing.T) {
	m := NewManager(newMemoryStorage())
	ctx := context.Background()

	m.Grant(ctx, "a1", "projects", "p1", "user")
	m.Grant(ctx, "a2", "projects", "p2", "user")
	m.Grant(ctx, "a1", "orgs", "o1", "admin")

	got, err := m.ListByAccount(ctx, "a1")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 links for a1, got %d", len(got))
	}
	if got[0].EntityTable != "orgs" || got[1].EntityTable != "projects" {
		t.Errorf("links not newest-first: %v then %v", got[0].EntityTable, got[1].EntityTable)
	}
	for _, l := range got {
		if l.AccountID != "a1" {
			t.Errorf("foreign link in result: %+v", l)
		}
	}
}

func TestMutationsWriteAuditEvents(t *testing.T) {
	auditor := &memoryAudit{}
	m := NewManager(newMemoryStorage(),
		WithAuditStore(auditor),
		WithActorResolver(func(context.Context) string { return "admin-7" }),
	)
	ctx := context.Background()

	m.Grant(ctx, "a1", "projects", "p1", "user")
	m.SetRole(ctx, "a1", "projects", "p1", "admin")
	m.Revoke(ctx, "a1", "projects", "p1")

	if len(auditor.events) != 3 {
		t.Fatalf("expected 3 audit events, got %d", len(auditor.events))
	}
	wantTypes := []string{audit.EventLinkGranted, audit.EventLinkRoleChanged, audit.EventLinkRevoked}
	for i, e := range auditor.events {
		if e.Type != wantTypes[i] {
			t.Errorf("event %d type = %q, want %q", i, e.Type, wantTypes[i])
		}
		if e.ActorID != "admin-7" {
			t.Errorf("event %d actor = %q, want admin-7", i, e.ActorID)
		}
		if e.Status != audit.StatusSuccess {
			t.Errorf("event %d status = %q", i, e.Status)
		}
	}
}
