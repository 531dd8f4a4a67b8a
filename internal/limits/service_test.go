package limits

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playsafe/rgportal/internal/session"
	"github.com/playsafe/rgportal/internal/storage"
	"github.com/playsafe/rgportal/pkg/domain"
)

type fakeGateway struct {
	snaps    []*domain.LimitsSnapshot
	fetchErr error
	fetches  int
	result   *domain.SetLimitsResult
	setErr   error
	payloads []map[string]any
	onFetch  func()
}

func (g *fakeGateway) GetMyLimits(context.Context) (*domain.LimitsSnapshot, error) {
	g.fetches++
	if g.onFetch != nil {
		g.onFetch()
	}
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	s := g.snaps[0]
	if len(g.snaps) > 1 {
		g.snaps = g.snaps[1:]
	}
	return s, nil
}

func (g *fakeGateway) SetLimits(_ context.Context, p map[string]any) (*domain.SetLimitsResult, error) {
	g.payloads = append(g.payloads, p)
	if g.setErr != nil {
		return nil, g.setErr
	}
	return g.result, nil
}

type fakeConfig struct{ patches []domain.Config }

func (c *fakeConfig) UpdateConfig(_ context.Context, p domain.Config) error {
	c.patches = append(c.patches, p)
	return nil
}

func strptr(s string) *string { return &s }

func TestFetchPropagatesCurrency(t *testing.T) {
	gw := &fakeGateway{snaps: []*domain.LimitsSnapshot{{Currency: strptr("KES")}}}
	cfg := &fakeConfig{}
	s := NewService(gw, cfg, nil)

	snap, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, s.Snapshot())
	require.Len(t, cfg.patches, 1)
	assert.Equal(t, "KES", cfg.patches[0].Currency())
}

func TestFetchNullCurrencyLeavesConfigAlone(t *testing.T) {
	gw := &fakeGateway{snaps: []*domain.LimitsSnapshot{{}}}
	cfg := &fakeConfig{}
	_, err := NewService(gw, cfg, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cfg.patches)
}

func TestFetchFailureKeepsCache(t *testing.T) {
	first := &domain.LimitsSnapshot{Currency: strptr("EUR")}
	gw := &fakeGateway{snaps: []*domain.LimitsSnapshot{first}}
	s := NewService(gw, nil, nil)
	_, err := s.Fetch(context.Background())
	require.NoError(t, err)

	gw.fetchErr = errors.New("boom")
	_, err = s.Fetch(context.Background())
	require.Error(t, err)
	assert.Same(t, first, s.Snapshot())
}

func TestSubmitValidationSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{}
	s := NewService(gw, nil, nil)
	f := NewForm(&domain.LimitsSnapshot{})
	_, err := f.Toggle(domain.DepositLimit, true)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), f)
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
	assert.Empty(t, gw.payloads)
	assert.Equal(t, 0, gw.fetches)
}

func TestSubmitRefetchesAndRecordsLocks(t *testing.T) {
	before := &domain.LimitsSnapshot{}
	after := &domain.LimitsSnapshot{
		Limits:   domain.Limits{Deposit: domain.AmountLimit{Enabled: true}},
		Editable: domain.Editable{"deposit_limit": false},
	}
	gw := &fakeGateway{
		snaps:  []*domain.LimitsSnapshot{after},
		result: &domain.SetLimitsResult{Currency: strptr("KES"), ControlsSet: []string{"deposit_limit"}},
	}
	cfg := &fakeConfig{}
	s := NewService(gw, cfg, nil)

	f := NewForm(before)
	_, err := f.Toggle(domain.DepositLimit, true)
	require.NoError(t, err)
	require.NoError(t, f.Set(domain.DepositLimit, FieldAmount, "5000"))

	out, err := s.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, MsgSaved, out.Message)
	assert.Equal(t, []string{"deposit_limit"}, out.Locked)
	assert.Same(t, after, out.Snapshot)
	assert.NoError(t, out.RefreshErr)
	assert.Equal(t, 1, gw.fetches)
	assert.Equal(t, 5000.0, gw.payloads[0]["deposit_limit_amount"])
	assert.NotEmpty(t, cfg.patches)

	assert.False(t, s.Settled())
	assert.Equal(t, []string{"deposit_limit"}, s.PendingLocks())
	s.AcknowledgeLocks()
	assert.True(t, s.Settled())

	next := NewForm(out.Snapshot)
	assert.True(t, next.Locked(domain.DepositLimit))
	p, err := next.Payload()
	require.NoError(t, err)
	assert.NotContains(t, p, "deposit_limit_enabled")
}

func TestSubmitServerErrorKeepsCache(t *testing.T) {
	gw := &fakeGateway{setErr: errors.New("HTTP 422: invalid")}
	s := NewService(gw, nil, nil)
	_, err := s.Submit(context.Background(), NewForm(nil))
	require.Error(t, err)
	assert.Equal(t, 0, gw.fetches)
	assert.True(t, s.Settled())
	assert.False(t, s.Busy())
}

func TestSubmitRefreshFailureIsReported(t *testing.T) {
	gw := &fakeGateway{result: &domain.SetLimitsResult{Message: "ok"}, fetchErr: errors.New("down")}
	out, err := NewService(gw, nil, nil).Submit(context.Background(), NewForm(nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Message)
	assert.Error(t, out.RefreshErr)
	assert.Nil(t, out.Snapshot)
}

func TestFetchAfterLogoutLeavesSessionEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	store := session.New(ctx, kv, nil)
	require.NoError(t, store.Login(ctx, "tok", &domain.Customer{MobileNumber: "+254712345678"}, nil))

	gw := &fakeGateway{snaps: []*domain.LimitsSnapshot{{Currency: strptr("KES")}}}
	gw.onFetch = func() { store.Logout(ctx, nil) }

	_, err := NewService(gw, store, nil).Fetch(ctx)
	require.NoError(t, err)

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Snapshot().Config)
	_, ok, _ := kv.Get(ctx, session.KeyConfig)
	assert.False(t, ok)
	assert.Empty(t, session.New(ctx, kv, nil).Snapshot().Config)
}

func TestResetDiscardsInFlightFetch(t *testing.T) {
	gw := &fakeGateway{snaps: []*domain.LimitsSnapshot{{Currency: strptr("KES")}}}
	cfg := &fakeConfig{}
	s := NewService(gw, cfg, nil)
	gw.onFetch = s.Reset

	snap, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Nil(t, s.Snapshot())
	assert.Empty(t, cfg.patches)

	gw.onFetch = nil
	_, err = s.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, s.Snapshot())
	assert.Len(t, cfg.patches, 1)
}

func TestResetDuringSubmitRefreshDiscardsState(t *testing.T) {
	gw := &fakeGateway{
		snaps:  []*domain.LimitsSnapshot{{}},
		result: &domain.SetLimitsResult{Currency: strptr("KES"), ControlsSet: []string{"deposit_limit"}},
	}
	cfg := &fakeConfig{}
	s := NewService(gw, cfg, nil)
	gw.onFetch = s.Reset

	out, err := s.Submit(context.Background(), NewForm(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"deposit_limit"}, out.Locked)
	assert.Nil(t, s.Snapshot())
	assert.True(t, s.Settled())
	assert.Len(t, cfg.patches, 1)
}
