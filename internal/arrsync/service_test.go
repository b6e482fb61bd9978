package arrsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilarr/profilarr/internal/arr"
	"github.com/profilarr/profilarr/internal/arrconfig"
	"github.com/profilarr/profilarr/internal/compiler"
	"github.com/profilarr/profilarr/internal/mappings"
	"github.com/profilarr/profilarr/internal/settings"
	"github.com/profilarr/profilarr/internal/sources"
	"github.com/profilarr/profilarr/internal/testutil"
)

// fakeArrClient is an in-memory stand-in for a target server. Created
// resources join the inventory so a later list sees them, mirroring the
// refetch the profile strategy depends on.
type fakeArrClient struct {
	mu       sync.Mutex
	formats  []arr.Resource
	profiles []arr.Resource
	nextID   int

	listFormatsErr  error
	listProfilesErr error
	createErr       map[string]error

	listFormatCalls int
	createdFormats  []string
	updatedFormats  []int
	createdProfiles []string
	updatedProfiles []int
	profileBodies   []any
}

func newFakeArrClient() *fakeArrClient {
	return &fakeArrClient{nextID: 100, createErr: map[string]error{}}
}

func (f *fakeArrClient) ListFormats(ctx context.Context) ([]arr.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFormatCalls++
	if f.listFormatsErr != nil {
		return nil, f.listFormatsErr
	}
	out := make([]arr.Resource, len(f.formats))
	copy(out, f.formats)
	return out, nil
}

func (f *fakeArrClient) ListProfiles(ctx context.Context) ([]arr.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listProfilesErr != nil {
		return nil, f.listProfilesErr
	}
	out := make([]arr.Resource, len(f.profiles))
	copy(out, f.profiles)
	return out, nil
}

func (f *fakeArrClient) CreateFormat(ctx context.Context, body any) (*arr.Resource, error) {
	cf, ok := body.(*compiler.CompiledFormat)
	if !ok {
		return nil, errors.New("unexpected create body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[cf.Name]; err != nil {
		return nil, err
	}
	f.nextID++
	res := arr.Resource{ID: f.nextID, Name: cf.Name}
	f.formats = append(f.formats, res)
	f.createdFormats = append(f.createdFormats, cf.Name)
	return &res, nil
}

func (f *fakeArrClient) UpdateFormat(ctx context.Context, id int, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedFormats = append(f.updatedFormats, id)
	return nil
}

func (f *fakeArrClient) CreateProfile(ctx context.Context, body any) (*arr.Resource, error) {
	p, ok := body.(*compiler.CompiledProfile)
	if !ok {
		return nil, errors.New("unexpected create body")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[p.Name]; err != nil {
		return nil, err
	}
	f.nextID++
	res := arr.Resource{ID: f.nextID, Name: p.Name}
	f.profiles = append(f.profiles, res)
	f.createdProfiles = append(f.createdProfiles, p.Name)
	f.profileBodies = append(f.profileBodies, body)
	return &res, nil
}

func (f *fakeArrClient) UpdateProfile(ctx context.Context, id int, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedProfiles = append(f.updatedProfiles, id)
	f.profileBodies = append(f.profileBodies, body)
	return nil
}

// testFixtures is the source tree the sync tests compile from.
var testFixtures = map[sources.Category]map[string]string{
	sources.CategoryRegexPattern: {
		"x265": "name: x265\npattern: \\bx265\\b\n",
	},
	sources.CategoryCustomFormat: {
		"x265": `name: x265
conditions:
  - name: Encode
    type: release_title
    pattern: x265
`,
		"HDR": `name: HDR
conditions:
  - name: 2160p
    type: resolution
    resolution: 2160p
`,
		"Not English": `name: Not English
conditions:
  - name: Not English Language
    type: language
    language: english
    negate: true
`,
	},
	sources.CategoryProfile: {
		"1080p": `name: 1080p
custom_formats:
  - name: x265
    score: 100
  - name: HDR
    score: 50
qualities:
  - Bluray-1080p
upgrade_until:
  name: Bluray-1080p
`,
		"German": `name: German
language: must_german
custom_formats:
  - name: x265
    score: 100
qualities:
  - Bluray-1080p
`,
		"Ghostly": `name: Ghostly
custom_formats:
  - name: Ghost
    score: 10
qualities:
  - Bluray-1080p
`,
	},
}

func newSyncFixture(t *testing.T) (*Service, *fakeArrClient, *settings.Service) {
	t.Helper()

	root := t.TempDir()
	for cat, files := range testFixtures {
		dir := filepath.Join(root, cat.Dir())
		require.NoError(t, os.MkdirAll(dir, 0o750))
		for stem, body := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".yml"), []byte(body), 0o640))
		}
	}
	cache, err := sources.NewCache(root, testutil.NopLogger())
	require.NoError(t, err)

	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)
	settingsSvc := settings.NewService(tdb.Conn, testutil.NopLogger())

	client := newFakeArrClient()
	svc := NewService(cache, settingsSvc, nil, testutil.NewTestLogger(t))
	svc.SetClientFactory(func(cfg arr.Config) ArrClient { return client })
	return svc, client, settingsSvc
}

func radarrConfig() *arrconfig.Config {
	return &arrconfig.Config{
		ID:        1,
		Name:      "radarr-main",
		Type:      mappings.TargetRadarr,
		ArrServer: "http://radarr:7878",
		APIKey:    "key",
	}
}

func detailNames(details []Detail, action Action) []string {
	var names []string
	for _, d := range details {
		if d.Action == action {
			names = append(names, d.Name)
		}
	}
	return names
}

func TestFormatStrategyCreatesAndUpdatesByName(t *testing.T) {
	svc, client, _ := newSyncFixture(t)
	client.formats = []arr.Resource{{ID: 7, Name: "HDR"}}

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyFormat,
		Filenames: []string{"x265.yml", "HDR"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"x265"}, client.createdFormats)
	assert.Equal(t, []int{7}, client.updatedFormats)
	assert.False(t, result.DryRun)
	assert.Nil(t, result.CompiledData)
}

func TestFormatStrategyMissingFileIsPartial(t *testing.T) {
	svc, _, _ := newSyncFixture(t)

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyFormat,
		Filenames: []string{"x265", "nope"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, StatusPartial, result.Status)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"nope"}, detailNames(result.Details, ActionFailed))
}

func TestFormatStrategyListErrorAbortsBatch(t *testing.T) {
	svc, client, _ := newSyncFixture(t)
	client.listFormatsErr = errors.New("connection refused")

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyFormat,
		Filenames: []string{"x265"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Error, "failed to list custom formats")
	assert.Equal(t, 0, result.Added+result.Updated+result.Failed)
	assert.Empty(t, client.createdFormats)
}

func TestFormatStrategyDryRun(t *testing.T) {
	svc, client, _ := newSyncFixture(t)
	client.formats = []arr.Resource{{ID: 7, Name: "HDR"}}

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyFormat,
		Filenames: []string{"x265", "HDR"},
		DryRun:    true,
	})

	assert.True(t, result.Success)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, client.createdFormats, "dry run must not write")
	assert.Empty(t, client.updatedFormats)
	require.NotNil(t, result.CompiledData)
	require.Len(t, result.CompiledData.Formats, 2)
}

func TestFormatStrategyUniqueSuffix(t *testing.T) {
	svc, client, _ := newSyncFixture(t)
	// The server has the unsuffixed name; unique imports must not touch it.
	client.formats = []arr.Resource{{ID: 7, Name: "x265"}}

	cfg := radarrConfig()
	cfg.ImportAsUnique = true
	result := svc.Run(context.Background(), cfg, Request{
		Strategy:  StrategyFormat,
		Filenames: []string{"x265"},
	})

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, []string{"x265 [Dictionarry]"}, client.createdFormats)
}

func TestProfileStrategyUploadsDependenciesFirst(t *testing.T) {
	svc, client, _ := newSyncFixture(t)
	client.formats = []arr.Resource{{ID: 9, Name: "3D"}}
	client.profiles = []arr.Resource{{ID: 4, Name: "1080p"}}

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyProfile,
		Filenames: []string{"1080p"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Added, "both referenced formats created")
	assert.Equal(t, 1, result.Updated, "existing profile updated in place")
	assert.Equal(t, []string{"x265", "HDR"}, client.createdFormats)
	assert.Equal(t, []int{4}, client.updatedProfiles)
	assert.Equal(t, 2, client.listFormatCalls, "inventory refetched after format uploads")

	require.Len(t, client.profileBodies, 1)
	payload, ok := client.profileBodies[0].(profilePayload)
	require.True(t, ok)
	assert.Equal(t, 4, payload.ID)

	// Explicit scores first in source order, then the rest of the server
	// inventory zero-scored.
	items := payload.FormatItems
	require.Len(t, items, 3)
	assert.Equal(t, "x265", items[0].Name)
	assert.Equal(t, 100, items[0].Score)
	assert.NotZero(t, items[0].Format)
	assert.Equal(t, "HDR", items[1].Name)
	assert.Equal(t, 50, items[1].Score)
	assert.Equal(t, compiler.FormatItem{Format: 9, Name: "3D", Score: 0}, items[2])
}

func TestProfileStrategyDryRunMintsSyntheticIDs(t *testing.T) {
	svc, client, _ := newSyncFixture(t)

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyProfile,
		Filenames: []string{"1080p"},
		DryRun:    true,
	})

	assert.True(t, result.Success)
	assert.True(t, result.DryRun)
	assert.Empty(t, client.createdFormats)
	assert.Empty(t, client.createdProfiles)
	require.NotNil(t, result.CompiledData)
	require.Len(t, result.CompiledData.Profiles, 1)

	items := result.CompiledData.Profiles[0].FormatItems
	require.Len(t, items, 2)
	assert.Equal(t, 10000, items[0].Format)
	assert.Equal(t, "x265", items[0].Name)
	assert.Equal(t, 10001, items[1].Format)
	assert.Equal(t, "HDR", items[1].Name)
}

func TestProfileStrategySynthesizesLanguageFormats(t *testing.T) {
	svc, _, settingsSvc := newSyncFixture(t)
	score := -1234
	require.NoError(t, settingsSvc.SaveSyncSettings(context.Background(), settings.SyncSettings{
		LanguageFormatScore: &score,
	}))

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyProfile,
		Filenames: []string{"German"},
		DryRun:    true,
	})

	assert.True(t, result.Success)
	require.NotNil(t, result.CompiledData)

	var names []string
	for _, cf := range result.CompiledData.Formats {
		names = append(names, cf.Name)
	}
	assert.Contains(t, names, "Not German")

	items := result.CompiledData.Profiles[0].FormatItems
	require.NotEmpty(t, items)
	assert.Equal(t, "Not German", items[0].Name)
	assert.Equal(t, -1234, items[0].Score)
}

func TestProfileStrategyDropsFormatsMissingFromServer(t *testing.T) {
	svc, _, _ := newSyncFixture(t)

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyProfile,
		Filenames: []string{"Ghostly"},
		DryRun:    true,
	})

	assert.True(t, result.Success)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], `referenced custom format "Ghost" not found`)

	found := false
	for _, w := range result.Warnings {
		if w == `profile "Ghostly" scores custom format "Ghost" which is not on the server` {
			found = true
		}
	}
	assert.True(t, found, "unresolvable score should be warned about")

	for _, item := range result.CompiledData.Profiles[0].FormatItems {
		assert.NotEqual(t, "Ghost", item.Name)
	}
}

func TestProfileStrategyProfileListErrorAbortsBatch(t *testing.T) {
	svc, client, _ := newSyncFixture(t)
	client.listProfilesErr = errors.New("bad gateway")

	result := svc.Run(context.Background(), radarrConfig(), Request{
		Strategy:  StrategyProfile,
		Filenames: []string{"1080p"},
	})

	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Error, "failed to list quality profiles")
	// The dependent formats already landed before the abort.
	assert.Equal(t, []string{"x265", "HDR"}, client.createdFormats)
}

func TestProfileStrategyUniqueSuffixAppliesThroughout(t *testing.T) {
	svc, client, _ := newSyncFixture(t)

	cfg := radarrConfig()
	cfg.ImportAsUnique = true
	result := svc.Run(context.Background(), cfg, Request{
		Strategy:  StrategyProfile,
		Filenames: []string{"1080p"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"x265 [Dictionarry]", "HDR [Dictionarry]"}, client.createdFormats)
	assert.Equal(t, []string{"1080p [Dictionarry]"}, client.createdProfiles)

	payload := client.profileBodies[0].(*compiler.CompiledProfile)
	for _, item := range payload.FormatItems {
		assert.Contains(t, item.Name, " [Dictionarry]")
	}
}

func TestRunUploadsBoundedConcurrency(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0
	runUploads(20, true, func(i int) {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		mu.Lock()
		running--
		mu.Unlock()
	})
	assert.LessOrEqual(t, peak, maxConcurrentUploads)
}

func TestRunCancelledContextFailsItems(t *testing.T) {
	svc, client, _ := newSyncFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := svc.Run(ctx, radarrConfig(), Request{
		Strategy:  StrategyFormat,
		Filenames: []string{"x265", "HDR"},
	})

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, client.createdFormats)
}
