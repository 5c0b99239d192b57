package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/config"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/idempotency"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
)

// fakeRepo implements repoDB through overridable function fields. Methods a
// test does not set panic on use, which is the point.
type fakeRepo struct {
	repoDB

	listActiveRules   func(ctx context.Context) ([]entity.Rule, error)
	listRules         func(ctx context.Context) ([]entity.Rule, error)
	createRule        func(ctx context.Context, in entity.CreateRule) error
	updateRule        func(ctx context.Context, in entity.UpdateRule) (bool, error)
	softDeleteRule    func(ctx context.Context, id int64) (bool, error)
	upsertSettings    func(ctx context.Context, in entity.Settings) error
	listRecipients    func(ctx context.Context) ([]entity.Recipient, error)
	getSettings       func(ctx context.Context, userID int64) (*entity.Settings, error)
	createHistory     func(ctx context.Context, in entity.CreateHistory) (bool, error)
	listSubscriptions func(ctx context.Context, userID int64) ([]entity.PushSubscription, error)
	countPendingTodos func(ctx context.Context, userID int64) (int64, error)
	countIdeas        func(ctx context.Context, userID int64) (int64, error)
	countNotes        func(ctx context.Context, userID int64) (int64, error)
}

func (f *fakeRepo) ListActiveRules(ctx context.Context) ([]entity.Rule, error) {
	return f.listActiveRules(ctx)
}

func (f *fakeRepo) ListRules(ctx context.Context) ([]entity.Rule, error) {
	return f.listRules(ctx)
}

func (f *fakeRepo) CreateRule(ctx context.Context, in entity.CreateRule) error {
	return f.createRule(ctx, in)
}

func (f *fakeRepo) UpdateRule(ctx context.Context, in entity.UpdateRule) (bool, error) {
	return f.updateRule(ctx, in)
}

func (f *fakeRepo) SoftDeleteRule(ctx context.Context, id int64) (bool, error) {
	return f.softDeleteRule(ctx, id)
}

func (f *fakeRepo) UpsertSettings(ctx context.Context, in entity.Settings) error {
	return f.upsertSettings(ctx, in)
}

func (f *fakeRepo) ListRecipients(ctx context.Context) ([]entity.Recipient, error) {
	return f.listRecipients(ctx)
}

func (f *fakeRepo) GetSettings(ctx context.Context, userID int64) (*entity.Settings, error) {
	return f.getSettings(ctx, userID)
}

func (f *fakeRepo) CreateHistory(ctx context.Context, in entity.CreateHistory) (bool, error) {
	return f.createHistory(ctx, in)
}

func (f *fakeRepo) ListSubscriptions(ctx context.Context, userID int64) ([]entity.PushSubscription, error) {
	return f.listSubscriptions(ctx, userID)
}

func (f *fakeRepo) CountPendingTodos(ctx context.Context, userID int64) (int64, error) {
	return f.countPendingTodos(ctx, userID)
}

func (f *fakeRepo) CountIdeas(ctx context.Context, userID int64) (int64, error) {
	return f.countIdeas(ctx, userID)
}

func (f *fakeRepo) CountNotes(ctx context.Context, userID int64) (int64, error) {
	return f.countNotes(ctx, userID)
}

// fakeQueue records enqueues and removals. Safe for concurrent use.
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []entity.ScheduledDelivery
	removed  []string

	due        []entity.ScheduledDelivery
	next       time.Time
	hasNext    bool
	enqueueErr error
	removeErr  error
}

func (f *fakeQueue) Enqueue(_ context.Context, d entity.ScheduledDelivery) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.mu.Lock()
	f.enqueued = append(f.enqueued, d)
	f.mu.Unlock()
	return nil
}

func (f *fakeQueue) DueBefore(_ context.Context, _ time.Time) ([]entity.ScheduledDelivery, error) {
	return f.due, nil
}

func (f *fakeQueue) NextAt(_ context.Context) (time.Time, bool, error) {
	return f.next, f.hasNext, nil
}

func (f *fakeQueue) Remove(_ context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	f.removed = append(f.removed, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeQueue) enqueuedByKey() map[string]entity.ScheduledDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]entity.ScheduledDelivery, len(f.enqueued))
	for _, d := range f.enqueued {
		out[d.Key] = d
	}
	return out
}

// fakePush records sent payloads per subscription and can fail selected
// subscription IDs.
type fakePush struct {
	mu      sync.Mutex
	sent    []int64
	failIDs map[int64]error
}

func (f *fakePush) Send(_ context.Context, sub entity.PushSubscription, _ []byte) error {
	if err, ok := f.failIDs[sub.ID]; ok {
		return err
	}
	f.mu.Lock()
	f.sent = append(f.sent, sub.ID)
	f.mu.Unlock()
	return nil
}

// fakeTrigger records the instants it was asked to schedule processing at.
type fakeTrigger struct {
	mu  sync.Mutex
	ats []time.Time
	err error
}

func (f *fakeTrigger) ScheduleProcessAt(_ context.Context, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.ats = append(f.ats, at)
	f.mu.Unlock()
	return nil
}

// fakeIdem drives the claim state machine from canned states keyed by claim
// key, defaulting to StateNone.
type fakeIdem struct {
	mu        sync.Mutex
	states    map[string]idempotency.State
	released  []string
	completed []string
}

func (f *fakeIdem) Acquire(_ context.Context, key string, _ time.Duration) (idempotency.State, error) {
	if state, ok := f.states[key]; ok {
		return state, nil
	}
	return idempotency.StateNone, nil
}

func (f *fakeIdem) MarkCompleted(_ context.Context, key string, _ time.Duration) error {
	f.mu.Lock()
	f.completed = append(f.completed, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeIdem) MarkFailed(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (f *fakeIdem) Release(_ context.Context, key string) error {
	f.mu.Lock()
	f.released = append(f.released, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeIdem) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	return fn(ctx)
}

// fakeSigner accepts exactly one signature value.
type fakeSigner struct {
	valid string
}

func (f *fakeSigner) Hash(_ string) ([]byte, error) {
	return []byte(f.valid), nil
}

func (f *fakeSigner) Verify(hashed, _ string) bool {
	return hashed == f.valid
}

// fakeClock returns a fixed instant.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

// fakeUID hands out sequential IDs.
type fakeUID struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeUID) Generate() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next
}

type fakeValidator struct {
	err error
}

func (f *fakeValidator) Validate(_ any) error {
	return f.err
}

// stubConfig overrides only the keys the engine reads; everything else
// panics via the embedded nil interface.
type stubConfig struct {
	config.Config

	ints   map[string]int
	arrays map[string][]string
}

func (c *stubConfig) GetInt(key string) int {
	return c.ints[key]
}

func (c *stubConfig) GetSecond(_ string) time.Duration {
	return 0
}

func (c *stubConfig) GetHour(_ string) time.Duration {
	return 0
}

func (c *stubConfig) GetArray(key string) []string {
	return c.arrays[key]
}

func newTestUsecase(dep Dependency) *Usecase {
	if dep.Config == nil {
		dep.Config = &stubConfig{}
	}
	if dep.Clock == nil {
		dep.Clock = &fakeClock{now: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)}
	}
	if dep.UID == nil {
		dep.UID = &fakeUID{}
	}
	if dep.Validator == nil {
		dep.Validator = &fakeValidator{}
	}
	if dep.Signer == nil {
		dep.Signer = &fakeSigner{valid: "good"}
	}
	dep.Instrument = instrument.NewNoop()
	return NewNotification(dep)
}
