package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pblonline/ops-dashboard/internal/clients/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/clients/vimeo"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type fakeRuns struct {
	mu   sync.Mutex
	runs map[string]types.SyncRun
}

func newFakeRuns() *fakeRuns { return &fakeRuns{runs: map[string]types.SyncRun{}} }

func (f *fakeRuns) CreateSyncRun(_ context.Context, run types.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRuns) UpdateSyncRun(_ context.Context, run types.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[run.ID]; !ok {
		return types.ErrNotFound
	}
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRuns) LatestSyncRun(_ context.Context, kind types.SyncKind) (*types.SyncRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.Kind == kind {
			return &r, nil
		}
	}
	return nil, types.ErrNotFound
}

func (f *fakeRuns) get(id string) types.SyncRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[id]
}

type fakeVimeo struct{ customers []vimeo.Customer }

func (f *fakeVimeo) ListCustomers(context.Context, string) ([]vimeo.Customer, error) {
	return f.customers, nil
}

type fakeMailchimp struct {
	lists   []mailchimp.List
	members map[string][]mailchimp.Member
	err     error
}

func (f *fakeMailchimp) Lists(context.Context) ([]mailchimp.List, error) { return f.lists, f.err }

func (f *fakeMailchimp) ListMembers(_ context.Context, id string) ([]mailchimp.Member, error) {
	return f.members[id], nil
}

type fakeMembers struct{ stored []types.ConsolidatedMember }

func (f *fakeMembers) ListMembers(context.Context) ([]types.ConsolidatedMember, error) {
	return append([]types.ConsolidatedMember(nil), f.stored...), nil
}

func (f *fakeMembers) ReplaceMembers(_ context.Context, m []types.ConsolidatedMember) error {
	f.stored = m
	return nil
}

type fakeVideos struct{ stored []types.Video }

func (f *fakeVideos) ListVideos(context.Context) ([]types.Video, error) { return f.stored, nil }

func (f *fakeVideos) PutVideos(_ context.Context, v []types.Video) error {
	f.stored = v
	return nil
}

type fakeYouTube struct{ videos []types.Video }

func (f *fakeYouTube) ListChannelVideos(context.Context, string) ([]types.Video, error) {
	return f.videos, nil
}

func customer(email, status string, updated time.Time) vimeo.Customer {
	return vimeo.Customer{Email: email, Status: status, Plan: "monthly", CreatedAt: updated, UpdatedAt: updated}
}

func tagged(email, status string, tags ...string) mailchimp.Member {
	m := mailchimp.Member{EmailAddress: email, Status: status}
	for _, t := range tags {
		m.Tags = append(m.Tags, mailchimp.Tag{Name: t})
	}
	return m
}

func newTestService(src Sources) (*Service, *fakeMembers, *fakeVideos, *fakeRuns) {
	members, videos, runs := &fakeMembers{}, &fakeVideos{}, newFakeRuns()
	return NewService(src, members, videos, runs, NewWorkerPool(1, 1, runs)), members, videos, runs
}

func TestConsolidate_MergesByEmail(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := Sources{
		Vimeo: &fakeVimeo{customers: []vimeo.Customer{
			customer("Both@Example.com", "cancelled", t0),
			customer("both@example.com", "enabled", t0.Add(-time.Hour)),
			customer("vimeo@example.com", "expired", t0),
		}},
		VimeoProduct: "PBL Online Subscription",
		Mailchimp: &fakeMailchimp{
			lists: []mailchimp.List{{ID: "L1", Name: "Newsletter"}, {ID: "L2", Name: "Members"}},
			members: map[string][]mailchimp.Member{
				"L1": {tagged("both@example.com", "unsubscribed", "cancelled members"), tagged("mc@example.com", "subscribed")},
				"L2": {tagged("BOTH@example.com", "subscribed", "cancelled members", "vip")},
			},
		},
	}
	svc, members, _, _ := newTestService(src)

	n, err := svc.consolidate(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got := members.stored
	require.Len(t, got, 3)
	assert.Equal(t, []string{"both@example.com", "mc@example.com", "vimeo@example.com"},
		[]string{got[0].Email, got[1].Email, got[2].Email})

	both := got[0]
	assert.Equal(t, types.SourceBoth, both.Source)
	assert.Equal(t, types.VimeoStatusEnabled, both.VimeoStatus)
	assert.Equal(t, "PBL Online Subscription", both.VimeoProduct)
	assert.Equal(t, types.MailchimpStatusSubscribed, both.MailchimpStatus)
	assert.Equal(t, []string{"cancelled members", "vip"}, both.MailchimpTags)
	assert.Equal(t, []string{"Newsletter", "Members"}, both.MailchimpLists)

	assert.Equal(t, types.SourceMailchimp, got[1].Source)
	assert.Equal(t, types.SourceVimeo, got[2].Source)
}

func TestConsolidate_UpstreamErrorFailsJob(t *testing.T) {
	svc, members, _, _ := newTestService(Sources{
		Vimeo:     &fakeVimeo{},
		Mailchimp: &fakeMailchimp{err: errors.New("401 unauthorized")},
	})
	members.stored = []types.ConsolidatedMember{{Email: "keep@example.com", Source: types.SourceVimeo}}

	_, err := svc.consolidate(context.Background(), Job{})
	assert.ErrorContains(t, err, "mailchimp")
	assert.Len(t, members.stored, 1)
}

func TestSyncVimeo_KeepsMailchimpColumns(t *testing.T) {
	svc, members, _, _ := newTestService(Sources{
		Vimeo: &fakeVimeo{customers: []vimeo.Customer{customer("a@example.com", "enabled", time.Now())}},
	})
	members.stored = []types.ConsolidatedMember{
		{Email: "a@example.com", MailchimpStatus: types.MailchimpStatusSubscribed, MailchimpTags: []string{"cancelled members"}},
		{Email: "gone@example.com", VimeoStatus: types.VimeoStatusEnabled},
	}

	n, err := svc.syncVimeo(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, members.stored, 1)

	a := members.stored[0]
	assert.Equal(t, types.SourceBoth, a.Source)
	assert.Equal(t, types.VimeoStatusEnabled, a.VimeoStatus)
	assert.Equal(t, []string{"cancelled members"}, a.MailchimpTags)
}

func TestSyncMailchimp_OnlyConfiguredList(t *testing.T) {
	svc, members, _, _ := newTestService(Sources{
		Mailchimp: &fakeMailchimp{
			lists: []mailchimp.List{{ID: "L1", Name: "One"}, {ID: "L2", Name: "Two"}},
			members: map[string][]mailchimp.Member{
				"L1": {tagged("one@example.com", "subscribed")},
				"L2": {tagged("two@example.com", "subscribed")},
			},
		},
		MailchimpList: "L2",
	})

	_, err := svc.syncMailchimp(context.Background(), Job{})
	require.NoError(t, err)
	require.Len(t, members.stored, 1)
	assert.Equal(t, "two@example.com", members.stored[0].Email)
}

func TestSyncYouTube_KeepsLocalFields(t *testing.T) {
	svc, _, videos, _ := newTestService(Sources{
		YouTube:        &fakeYouTube{videos: []types.Video{{ID: "v1", Title: "New"}, {ID: "v2", Title: "Other"}}},
		YouTubeChannel: "UC1",
	})
	videos.stored = []types.Video{{ID: "v1", Title: "Old", Transcript: "hello", GeneratedTags: []string{"pbl"}}}

	n, err := svc.syncYouTube(context.Background(), Job{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "New", videos.stored[0].Title)
	assert.Equal(t, "hello", videos.stored[0].Transcript)
	assert.Equal(t, []string{"pbl"}, videos.stored[0].GeneratedTags)
}

func TestSubmit_NotConfigured(t *testing.T) {
	svc, _, _, _ := newTestService(Sources{Vimeo: &fakeVimeo{}})

	_, err := svc.Submit(context.Background(), types.SyncKindConsolidate)
	assert.ErrorIs(t, err, types.ErrNotConfigured)

	_, err = svc.Submit(context.Background(), types.SyncKindYouTube)
	assert.ErrorIs(t, err, types.ErrNotConfigured)
}

func TestSubmit_QueueFull(t *testing.T) {
	svc, _, _, runs := newTestService(Sources{Vimeo: &fakeVimeo{}})

	first, err := svc.Submit(context.Background(), types.SyncKindVimeo)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, first.Status)

	_, err = svc.Submit(context.Background(), types.SyncKindVimeo)
	assert.ErrorIs(t, err, types.ErrQueueFull)

	failed := 0
	for _, r := range runs.runs {
		if r.Status == types.StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestWorkerPool_RetriesThenFails(t *testing.T) {
	runs := newFakeRuns()
	wp := NewWorkerPool(1, 10, runs)

	var mu sync.Mutex
	attempts := 0
	wp.SetHandler(types.SyncKindVimeo, func(context.Context, Job) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return 0, errors.New("upstream down")
	})
	require.NoError(t, runs.CreateSyncRun(context.Background(), types.SyncRun{ID: "r1", Kind: types.SyncKindVimeo}))

	wp.Start()
	defer wp.Stop(context.Background())
	require.True(t, wp.Enqueue(Job{ID: "r1", Kind: types.SyncKindVimeo}))

	require.Eventually(t, func() bool {
		return runs.get("r1").Status == types.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, maxJobRetries+1, attempts)
	mu.Unlock()
	assert.Equal(t, "upstream down", runs.get("r1").Error)
	assert.NotNil(t, runs.get("r1").FinishedAt)
}

func TestWorkerPool_Completes(t *testing.T) {
	runs := newFakeRuns()
	wp := NewWorkerPool(2, 10, runs)
	wp.SetHandler(types.SyncKindMailchimp, func(context.Context, Job) (int, error) { return 42, nil })
	require.NoError(t, runs.CreateSyncRun(context.Background(), types.SyncRun{ID: "r2", Kind: types.SyncKindMailchimp}))

	wp.Start()
	defer wp.Stop(context.Background())
	require.True(t, wp.Enqueue(Job{ID: "r2", Kind: types.SyncKindMailchimp}))

	require.Eventually(t, func() bool {
		return runs.get("r2").Status == types.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 42, runs.get("r2").RecordCount)
}

func TestWorkerPool_EnqueueAfterStop(t *testing.T) {
	wp := NewWorkerPool(1, 1, nil)
	wp.Start()
	wp.Stop(context.Background())
	assert.False(t, wp.Enqueue(Job{ID: "x"}))
}
