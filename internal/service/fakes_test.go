package service

import (
	"context"
	"sync"
	"time"

	"bandsync/internal/calendar"
	"bandsync/internal/model"
	"bandsync/internal/repository"
	"bandsync/internal/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// In-memory реализации хранилищ для тестов сервисного слоя.
// Уникальные нарушения отдаются настоящим pgconn.PgError, чтобы
// пройти через base.IsUniqueViolation так же, как из базы.

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

type testEnv struct {
	users  *memUserStore
	groups *memGroupStore
	member *memMemberStore
	avail  *memAvailStore
	busy   *memBusyStore
	events *memEventStore
	feeds  *memFeedStore
	logger *zap.Logger
}

func newTestEnv() *testEnv {
	member := &memMemberStore{}
	groups := &memGroupStore{member: member, byID: make(map[uuid.UUID]model.Group)}
	events := &memEventStore{}
	return &testEnv{
		users:  &memUserStore{member: member, groups: groups, events: events, byID: make(map[uuid.UUID]model.User)},
		groups: groups,
		member: member,
		avail:  &memAvailStore{},
		busy:   &memBusyStore{lastToken: make(map[uuid.UUID]int64)},
		events: events,
		feeds:  &memFeedStore{},
		logger: zap.NewNop(),
	}
}

func (e *testEnv) groupService() *GroupService {
	return NewGroupService(e.groups, e.member, e.avail, e.events, e.busy, e.logger)
}

func (e *testEnv) availabilityService() *AvailabilityService {
	return NewAvailabilityService(e.groups, e.member, e.avail, e.busy, e.logger)
}

func (e *testEnv) practiceService(announcer Announcer) *PracticeService {
	return NewPracticeService(e.groups, e.member, e.events, e.busy, announcer, e.logger)
}

func (e *testEnv) userService() *UserService {
	return NewUserService(e.users, e.groups, e.member, e.logger)
}

// addGroup создаёт группу с владельцем напрямую, минуя генерацию кода
func (e *testEnv) addGroup(owner uuid.UUID, code string) *model.Group {
	g := &model.Group{
		Name:        "Test Band",
		InviteCode:  code,
		CreatedBy:   &owner,
		StartHour:   5,
		EndHour:     29,
		SlotMinutes: 30,
	}
	_ = e.groups.CreateWithOwner(context.Background(), g)
	return g
}

type memUserStore struct {
	mu     sync.Mutex
	member *memMemberStore
	groups *memGroupStore
	events *memEventStore
	byID   map[uuid.UUID]model.User
}

func (s *memUserStore) Upsert(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byID[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *memUserStore) UpdateDisplayName(_ context.Context, id uuid.UUID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.DisplayName = displayName
		s.byID[id] = u
	}
	return nil
}

// Delete удаляет пользователя как база: membership каскадом,
// ссылки created_by в группах и practice events обнуляются
func (s *memUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()

	s.member.removeUser(id)
	s.groups.clearOwner(id)
	s.events.clearCreator(id)
	return nil
}

type memGroupStore struct {
	mu     sync.Mutex
	member *memMemberStore
	byID   map[uuid.UUID]model.Group
}

func (s *memGroupStore) CreateWithOwner(ctx context.Context, group *model.Group) error {
	s.mu.Lock()
	group.ID = uuid.New()
	group.CreatedAt = time.Now()
	s.byID[group.ID] = *group
	s.mu.Unlock()

	return s.member.Add(ctx, &model.Membership{
		GroupID: group.ID,
		UserID:  *group.CreatedBy,
		Role:    model.RoleAdmin,
	})
}

func (s *memGroupStore) GetByID(_ context.Context, id uuid.UUID) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.byID[id]; ok {
		return &g, nil
	}
	return nil, nil
}

func (s *memGroupStore) GetByInviteCode(_ context.Context, code string) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.byID {
		if g.InviteCode == code {
			g := g
			return &g, nil
		}
	}
	return nil, nil
}

func (s *memGroupStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Group
	for _, g := range s.byID {
		for _, m := range s.member.snapshot() {
			if m.GroupID == g.ID && m.UserID == userID {
				g := g
				out = append(out, &g)
			}
		}
	}
	return out, nil
}

func (s *memGroupStore) UpdateWindow(_ context.Context, id uuid.UUID, startHour, endHour, slotMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.byID[id]; ok {
		g.StartHour = startHour
		g.EndHour = endHour
		g.SlotMinutes = slotMinutes
		s.byID[id] = g
	}
	return nil
}

func (s *memGroupStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *memGroupStore) clearOwner(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, g := range s.byID {
		if g.CreatedBy != nil && *g.CreatedBy == userID {
			g.CreatedBy = nil
			s.byID[id] = g
		}
	}
}

func (s *memGroupStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.byID {
		if g.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

type memMemberStore struct {
	mu      sync.Mutex
	members []model.Membership
}

func (s *memMemberStore) snapshot() []model.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Membership, len(s.members))
	copy(out, s.members)
	return out
}

func (s *memMemberStore) Add(_ context.Context, m *model.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.GroupID == m.GroupID && existing.UserID == m.UserID {
			return uniqueViolation()
		}
	}
	m.JoinedAt = time.Now()
	s.members = append(s.members, *m)
	return nil
}

func (s *memMemberStore) removeUser(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.members[:0]
	for _, m := range s.members {
		if m.UserID == userID {
			continue
		}
		kept = append(kept, m)
	}
	s.members = kept
}

func (s *memMemberStore) Get(_ context.Context, groupID, userID uuid.UUID) (*model.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *memMemberStore) ListByGroup(_ context.Context, groupID uuid.UUID) ([]*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Member
	for _, m := range s.members {
		if m.GroupID == groupID {
			out = append(out, &model.Member{Membership: m})
		}
	}
	return out, nil
}

func (s *memMemberStore) Remove(_ context.Context, groupID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.members[:0]
	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			continue
		}
		kept = append(kept, m)
	}
	s.members = kept
	return nil
}

func (s *memMemberStore) CountByGroup(_ context.Context, groupID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.members {
		if m.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (s *memMemberStore) ListUserIDs(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for _, m := range s.members {
		if m.GroupID == groupID {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

type memAvailStore struct {
	mu    sync.Mutex
	marks []model.Availability
}

func (s *memAvailStore) Upsert(_ context.Context, a *model.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(a)
	return nil
}

func (s *memAvailStore) upsertLocked(a *model.Availability) {
	for i, m := range s.marks {
		if m.UserID == a.UserID && m.GroupID == a.GroupID && m.StartTime.Equal(a.StartTime) {
			a.ID = m.ID
			a.CreatedAt = m.CreatedAt
			s.marks[i] = *a
			return
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	s.marks = append(s.marks, *a)
}

func (s *memAvailStore) UpsertBatch(_ context.Context, marks []*model.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range marks {
		s.upsertLocked(a)
	}
	return nil
}

func (s *memAvailStore) Delete(_ context.Context, userID, groupID uuid.UUID, start time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.marks[:0]
	for _, m := range s.marks {
		if m.UserID == userID && m.GroupID == groupID && m.StartTime.Equal(start) {
			continue
		}
		kept = append(kept, m)
	}
	s.marks = kept
	return nil
}

func (s *memAvailStore) DeleteRange(_ context.Context, userID, groupID uuid.UUID, from, to time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.marks[:0]
	for _, m := range s.marks {
		if m.UserID == userID && m.GroupID == groupID &&
			!m.StartTime.Before(from) && m.StartTime.Before(to) {
			continue
		}
		kept = append(kept, m)
	}
	s.marks = kept
	return nil
}

func (s *memAvailStore) DeleteIn(ctx context.Context, userID, groupID uuid.UUID, starts []time.Time) error {
	for _, start := range starts {
		if err := s.Delete(ctx, userID, groupID, start); err != nil {
			return err
		}
	}
	return nil
}

func (s *memAvailStore) ListByGroup(_ context.Context, groupID uuid.UUID) ([]model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Availability
	for _, m := range s.marks {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memAvailStore) ListByGroupRange(_ context.Context, groupID uuid.UUID, from, to time.Time) ([]model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Availability
	for _, m := range s.marks {
		if m.GroupID == groupID && !m.StartTime.Before(from) && m.StartTime.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

type memBusyStore struct {
	mu        sync.Mutex
	slots     []model.BusySlot
	lastToken map[uuid.UUID]int64
	purged    int64
}

func (s *memBusyStore) ReplaceRange(_ context.Context, userID uuid.UUID, from, to time.Time, slots []model.BusySlot, token int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token <= s.lastToken[userID] {
		return repository.ErrStaleSyncToken
	}
	s.lastToken[userID] = token

	kept := s.slots[:0]
	for _, b := range s.slots {
		if b.UserID == userID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			continue
		}
		kept = append(kept, b)
	}
	s.slots = kept

	for _, b := range slots {
		b.ID = uuid.New()
		b.SyncToken = token
		s.slots = append(s.slots, b)
	}
	return nil
}

func (s *memBusyStore) ListByUserIDs(_ context.Context, userIDs []uuid.UUID, from, to time.Time) ([]model.BusySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		ids[id] = struct{}{}
	}
	var out []model.BusySlot
	for _, b := range s.slots {
		if _, ok := ids[b.UserID]; !ok {
			continue
		}
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memBusyStore) NextSyncToken(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken[userID] + 1, nil
}

func (s *memBusyStore) DeleteEndedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.slots[:0]
	var deleted int64
	for _, b := range s.slots {
		if b.EndTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	s.slots = kept
	s.purged += deleted
	return deleted, nil
}

// addBusy кладёт busy-слот напрямую, минуя синхронизацию
func (s *memBusyStore) addBusy(userID uuid.UUID, start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = append(s.slots, model.BusySlot{
		ID: uuid.New(), UserID: userID, StartTime: start, EndTime: end,
	})
}

type memEventStore struct {
	mu     sync.Mutex
	events []model.PracticeEvent
}

func (s *memEventStore) Insert(_ context.Context, e *model.PracticeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.GroupID == e.GroupID && existing.StartTime.Equal(e.StartTime) {
			return uniqueViolation()
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	s.events = append(s.events, *e)
	return nil
}

func (s *memEventStore) GetByStart(_ context.Context, groupID uuid.UUID, start time.Time) (*model.PracticeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.GroupID == groupID && e.StartTime.Equal(start) {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (s *memEventStore) DeleteByStart(_ context.Context, groupID uuid.UUID, start time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.GroupID == groupID && e.StartTime.Equal(start) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

func (s *memEventStore) ListByGroupRange(_ context.Context, groupID uuid.UUID, from, to time.Time) ([]model.PracticeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PracticeEvent
	for _, e := range s.events {
		if e.GroupID == groupID && !e.StartTime.Before(from) && e.StartTime.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memEventStore) DeleteAllByGroup(_ context.Context, groupID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.GroupID == groupID {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

func (s *memEventStore) clearCreator(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.events {
		if e.CreatedBy != nil && *e.CreatedBy == userID {
			s.events[i].CreatedBy = nil
		}
	}
}

type memFeedStore struct {
	mu    sync.Mutex
	feeds []model.CalendarFeed
}

func (s *memFeedStore) Add(_ context.Context, feed *model.CalendarFeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed.ID = uuid.New()
	feed.CreatedAt = time.Now()
	s.feeds = append(s.feeds, *feed)
	return nil
}

func (s *memFeedStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.CalendarFeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CalendarFeed
	for _, f := range s.feeds {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memFeedStore) Delete(_ context.Context, userID, feedID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.feeds[:0]
	for _, f := range s.feeds {
		if f.ID == feedID && f.UserID == userID {
			continue
		}
		kept = append(kept, f)
	}
	s.feeds = kept
	return nil
}

// stubBusySource отдаёт заранее заданный результат выгрузки календарей
type stubBusySource struct {
	result calendar.Result
}

func (s *stubBusySource) ListBusyEvents(_ context.Context, _ []calendar.Feed, _, _ time.Time) calendar.Result {
	return s.result
}

// recordingAnnouncer запоминает отправленные объявления
type recordingAnnouncer struct {
	mu        sync.Mutex
	groupName string
	runs      []schedule.Interval
	calls     int
}

func (a *recordingAnnouncer) AnnouncePractice(_ context.Context, groupName string, runs []schedule.Interval) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.groupName = groupName
	a.runs = runs
	a.calls++
}
