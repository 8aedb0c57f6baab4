package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nfc-redirect-platform/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore 基于 map 的内存存储
type memStore struct {
	tags      map[string]model.Tag
	campaigns map[string]model.CampaignLink
	links     map[string]model.LinkURL
	err       error
	calls     int
}

func newMemStore() *memStore {
	return &memStore{
		tags:      map[string]model.Tag{},
		campaigns: map[string]model.CampaignLink{},
		links:     map[string]model.LinkURL{},
	}
}

func (m *memStore) TagByID(_ context.Context, id string) (*model.Tag, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if t, ok := m.tags[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *memStore) CampaignLinkByID(_ context.Context, id string) (*model.CampaignLink, error) {
	m.calls++
	if c, ok := m.campaigns[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) LinkURLByID(_ context.Context, id string) (*model.LinkURL, error) {
	m.calls++
	if l, ok := m.links[id]; ok {
		return &l, nil
	}
	return nil, nil
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []model.RedirectLogEntry
}

func (c *captureRecorder) Record(e model.RedirectLogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

func newResolver(s Store, rec Recorder) *Resolver {
	return New(s, rec, zap.NewNop().Sugar())
}

func seeded() *memStore {
	s := newMemStore()
	s.tags["T1"] = model.Tag{TagID: "T1", CampaignID: "C1"}
	s.campaigns["C1"] = model.CampaignLink{CampaignID: "C1", LinkID: "L1"}
	s.links["L1"] = model.LinkURL{LinkID: "L1", URL: "https://example.com/landing?utm=nfc"}
	return s
}

func TestResolve_Outcomes(t *testing.T) {
	s := seeded()
	s.tags["dangling"] = model.Tag{TagID: "dangling", CampaignID: "missing"}
	s.tags["T2"] = model.Tag{TagID: "T2", CampaignID: "C2"}
	s.campaigns["C2"] = model.CampaignLink{CampaignID: "C2", LinkID: "gone"}

	r := newResolver(s, nil)

	cases := []struct {
		tag     string
		outcome Outcome
		message string
	}{
		{"unknown", OutcomeTagNotFound, "NFC tag not found."},
		{"", OutcomeTagNotFound, "NFC tag not found."},
		{"dangling", OutcomeCampaignNotFound, "Campaign link not found."},
		{"T2", OutcomeLinkNotFound, "Link URL not found."},
		{"T1", OutcomeResolved, ""},
	}
	for _, tc := range cases {
		t.Run(tc.outcome.String()+"/"+tc.tag, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), tc.tag)
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, res.Outcome)
			assert.Equal(t, tc.message, res.Outcome.Message())
		})
	}
}

func TestResolve_ReturnsStoredURLUnchanged(t *testing.T) {
	r := newResolver(seeded(), nil)

	res, err := r.Resolve(context.Background(), "T1")
	require.NoError(t, err)
	assert.True(t, res.Found())
	assert.Equal(t, Result{
		Outcome:    OutcomeResolved,
		TagID:      "T1",
		CampaignID: "C1",
		LinkID:     "L1",
		URL:        "https://example.com/landing?utm=nfc",
	}, res)
}

func TestResolve_ShortCircuits(t *testing.T) {
	s := seeded()
	r := newResolver(s, nil)

	_, err := r.Resolve(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1, s.calls, "标签未命中后不应继续查询")
}

func TestResolve_StoreFailureIsError(t *testing.T) {
	s := seeded()
	s.err = errors.New("connection refused")
	r := newResolver(s, nil)

	_, err := r.Resolve(context.Background(), "T1")
	require.Error(t, err)
	assert.ErrorIs(t, err, s.err)
}

func TestResolve_NoCaching(t *testing.T) {
	s := seeded()
	s.links["L2"] = model.LinkURL{LinkID: "L2", URL: "https://example.com/new"}
	r := newResolver(s, nil)

	res, err := r.Resolve(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/landing?utm=nfc", res.URL)

	s.campaigns["C1"] = model.CampaignLink{CampaignID: "C1", LinkID: "L2"}

	res, err = r.Resolve(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new", res.URL)
}

func TestResolveAndRecord_OnlyOnSuccess(t *testing.T) {
	rec := &captureRecorder{}
	r := newResolver(seeded(), rec)

	_, err := r.ResolveAndRecord(context.Background(), "missing", "http://nfc.example/")
	require.NoError(t, err)
	assert.Empty(t, rec.entries)

	res, err := r.ResolveAndRecord(context.Background(), "T1", "http://nfc.example/")
	require.NoError(t, err)
	require.True(t, res.Found())
	require.Len(t, rec.entries, 1)

	entry := rec.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, "T1", entry.TagID)
	assert.Equal(t, "C1", entry.CampaignID)
	assert.Equal(t, "L1", entry.LinkID)
	assert.Equal(t, "https://example.com/landing?utm=nfc", entry.LinkURL)
	assert.Equal(t, "http://nfc.example/", entry.Domain)
}

func TestResolveAndRecord_UniqueEntryIDs(t *testing.T) {
	rec := &captureRecorder{}
	r := newResolver(seeded(), rec)

	for i := 0; i < 3; i++ {
		_, err := r.ResolveAndRecord(context.Background(), "T1", "")
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for _, e := range rec.entries {
		seen[e.ID] = true
	}
	assert.Len(t, seen, 3)
}
