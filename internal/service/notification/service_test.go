package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
)

type fakeRepo struct {
	mu       sync.Mutex
	batches  [][]*notification.Notification
	direct   []*notification.Notification
	disabled map[notification.NotificationType]bool
	prefs    []*notification.NotificationPreference
	upserted *notification.NotificationPreference
	listed   notification.ListFilter
	cutoff   time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{disabled: map[notification.NotificationType]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, n)
	return nil
}

func (f *fakeRepo) CreateBatch(_ context.Context, ns []*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, ns)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ string, filter notification.ListFilter) ([]*notification.Notification, int, error) {
	f.listed = filter
	return []*notification.Notification{{ID: "n1", Title: "hi"}}, 1, nil
}

func (f *fakeRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 2, nil
}

func (f *fakeRepo) GetUnreadCount(context.Context, string) (int, error) { return 3, nil }

func (f *fakeRepo) MarkAsRead(context.Context, []string, string) error { return nil }

func (f *fakeRepo) MarkAllAsRead(context.Context, string) error { return nil }

func (f *fakeRepo) Delete(context.Context, string, string) error { return nil }

func (f *fakeRepo) GetPreferences(context.Context, string) ([]*notification.NotificationPreference, error) {
	return f.prefs, nil
}

func (f *fakeRepo) UpsertPreference(_ context.Context, p *notification.NotificationPreference) error {
	f.upserted = p
	return nil
}

func (f *fakeRepo) IsNotificationEnabled(_ context.Context, _ string, t notification.NotificationType) (bool, error) {
	return !f.disabled[t], nil
}

func (f *fakeRepo) inserted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.direct)
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) PublishToMany(topics []string, _ realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topics...)
}

func TestQueueNotification_FlushedOnStop(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := NewNotificationService(repo, pub, Config{BatchSize: 10, FlushInterval: time.Hour, WorkerCount: 1})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: "u1",
			Type:        notification.TypeLeaveApproved,
			Title:       "Leave approved",
		}))
	}
	svc.Stop()
	svc.Stop()

	assert.Equal(t, 3, repo.inserted())
	assert.Len(t, pub.topics, 3)
	assert.Equal(t, "notifications:u1", pub.topics[0])
}

func TestQueueNotification_BatchSizeTriggersFlush(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNotificationService(repo, nil, Config{BatchSize: 2, FlushInterval: time.Hour, WorkerCount: 1})
	defer svc.Stop()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: "u1", Type: notification.TypeSalaryPaid,
		}))
	}

	assert.Eventually(t, func() bool { return repo.inserted() == 2 }, time.Second, 10*time.Millisecond)
}

func TestQueueNotification_DisabledTypeSkipped(t *testing.T) {
	repo := newFakeRepo()
	repo.disabled[notification.TypeSalaryOverdue] = true
	svc := NewNotificationService(repo, nil, Config{FlushInterval: time.Hour, WorkerCount: 1})

	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u1", Type: notification.TypeSalaryOverdue,
	}))
	svc.Stop()

	assert.Equal(t, 0, repo.inserted())
}

func TestQueueNotification_AfterStopInsertsDirectly(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := NewNotificationService(repo, pub, Config{WorkerCount: 1})
	svc.Stop()

	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "u2", Type: notification.TypeLeaveRejected,
	}))

	assert.Len(t, repo.direct, 1)
	assert.Equal(t, []string{"notifications:u2"}, pub.topics)
}

func TestGetNotifications_DefaultsPaging(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNotificationService(repo, nil, Config{WorkerCount: 1})
	defer svc.Stop()

	resp, err := svc.GetNotifications(context.Background(), "u1", notification.ListFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, 3, resp.UnreadCount)
	assert.Len(t, resp.Notifications, 1)
	assert.Equal(t, 0, repo.listed.Offset())

	unknown := notification.NotificationType("payday")
	_, err = svc.GetNotifications(context.Background(), "u1", notification.ListFilter{Type: &unknown})
	assert.Error(t, err)
}

func TestPrune_UsesRetentionWindow(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNotificationService(repo, nil, Config{WorkerCount: 1, Retention: 30 * 24 * time.Hour}).(*service)
	defer svc.Stop()
	svc.now = func() time.Time { return time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC) }

	removed, err := svc.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), repo.cutoff)
}

func TestGetPreferences_DefaultsToEnabled(t *testing.T) {
	repo := newFakeRepo()
	repo.prefs = []*notification.NotificationPreference{
		{UserID: "u1", NotificationType: notification.TypeSalaryPaid, PushEnabled: false},
	}
	svc := NewNotificationService(repo, nil, Config{WorkerCount: 1})
	defer svc.Stop()

	prefs, err := svc.GetPreferences(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, prefs, len(notification.AllNotificationTypes()))
	for _, p := range prefs {
		assert.Equal(t, p.NotificationType != notification.TypeSalaryPaid, p.PushEnabled, string(p.NotificationType))
	}
}

func TestUpdatePreference_RejectsUnknownType(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNotificationService(repo, nil, Config{WorkerCount: 1})
	defer svc.Stop()

	err := svc.UpdatePreference(context.Background(), "u1", notification.UpdatePreferenceRequest{NotificationType: "nope"})
	require.Error(t, err)
	assert.Nil(t, repo.upserted)

	require.NoError(t, svc.UpdatePreference(context.Background(), "u1", notification.UpdatePreferenceRequest{
		NotificationType: notification.TypeLeaveApproved, PushEnabled: false,
	}))
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "u1", repo.upserted.UserID)
}

func TestMarkAsRead_RequiresIDs(t *testing.T) {
	svc := NewNotificationService(newFakeRepo(), nil, Config{WorkerCount: 1})
	defer svc.Stop()

	assert.Error(t, svc.MarkAsRead(context.Background(), "u1", notification.MarkAsReadRequest{}))
	assert.NoError(t, svc.MarkAsRead(context.Background(), "u1", notification.MarkAsReadRequest{NotificationIDs: []string{"n1"}}))
}
