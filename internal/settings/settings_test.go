package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilarr/profilarr/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)
	return NewService(tdb.Conn, testutil.NopLogger())
}

func TestSyncSettingsDefaults(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GetSyncSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got.LanguageFormatScore)
}

func TestSyncSettingsRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	score := -5000
	require.NoError(t, svc.SaveSyncSettings(ctx, SyncSettings{LanguageFormatScore: &score}))

	got, err := svc.GetSyncSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.LanguageFormatScore)
	assert.Equal(t, -5000, *got.LanguageFormatScore)

	// Saving again overwrites in place.
	require.NoError(t, svc.SaveSyncSettings(ctx, SyncSettings{}))
	got, err = svc.GetSyncSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.LanguageFormatScore)
}

func TestIncludeInRename(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	include, err := svc.IncludeInRename(ctx)
	require.NoError(t, err)
	assert.False(t, include("x265"), "nothing marked by default")

	require.NoError(t, svc.SaveRenameSettings(ctx, RenameSettings{Formats: []string{"x265", "HDR"}}))

	include, err = svc.IncludeInRename(ctx)
	require.NoError(t, err)
	assert.True(t, include("x265"))
	assert.True(t, include("HDR"))
	assert.False(t, include("3D"))
}

func TestMalformedSettingFallsBackToDefaults(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)
	svc := NewService(tdb.Conn, testutil.NopLogger())
	ctx := context.Background()

	_, err := tdb.Conn.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ('sync', 'not json', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	got, err := svc.GetSyncSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.LanguageFormatScore)
}
