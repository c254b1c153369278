package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("version: \"1.0\"\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSourceDir, cfg.Source.Dir)
	assert.Equal(t, []string{".md", ".mdx"}, cfg.Source.Extensions)
	assert.Equal(t, "/docs/api", cfg.Links.BasePath)
	assert.Equal(t, LinkResolutionLegacy, cfg.Links.Resolution)
	assert.Equal(t, 4, cfg.TOC.MaxDepth)
	assert.Equal(t, "Documentation", cfg.Page.PageName)
	assert.Equal(t, "content", cfg.Page.ContentID)
	assert.Equal(t, 700, cfg.Theme.FontWeightBold)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, 1316, cfg.Preview.Port)
	assert.Empty(t, cfg.Events.Subject)
}

func TestParse_NormalizesEnums(t *testing.T) {
	cfg, err := Parse([]byte(`version: "1.0"
links:
  resolution: " Flatten "
logging:
  level: DEBUG
  format: Json
`))
	require.NoError(t, err)
	assert.Equal(t, LinkResolutionFlatten, cfg.Links.Resolution)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("APIREF_TEST_TOKEN", "s3cret")
	cfg, err := Parse([]byte(`version: "1.0"
source:
  repository:
    url: https://example.com/docs.git
    auth:
      token: ${APIREF_TEST_TOKEN}
events:
  nats_url: nats://localhost:4222
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Source.Repository)
	assert.Equal(t, "s3cret", cfg.Source.Repository.Auth.Token)
	assert.Equal(t, DefaultWorkspaceDir, cfg.Source.Repository.WorkspaceDir)
	assert.Equal(t, DefaultEventsSubject, cfg.Events.Subject)
}

func TestParse_RejectsWrongVersion(t *testing.T) {
	_, err := Parse([]byte("version: \"2.0\"\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestParse_RejectsUnknownResolution(t *testing.T) {
	_, err := Parse([]byte("version: \"1.0\"\nlinks:\n  resolution: absolute\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "links.resolution")
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.TOC.MaxDepth = 9
	cfg.Links.BasePath = "docs/api"
	cfg.Source.Extensions = []string{"md"}
	cfg.Schedule.RefreshInterval = "soon"

	err := Validate(cfg)
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	problems, ok := classified.Context().Get("problems")
	require.True(t, ok)
	assert.Len(t, problems, 4)
}

func TestValidate_TOCDepthLimitedToTrackedHeadings(t *testing.T) {
	cfg := Default()
	cfg.TOC.MaxDepth = MaxTOCDepth
	require.NoError(t, Validate(cfg))

	for _, depth := range []int{0, 5, 6} {
		cfg.TOC.MaxDepth = depth
		err := Validate(cfg)
		require.Error(t, err, "depth %d", depth)
		classified, ok := ferrors.AsClassified(err)
		require.True(t, ok)
		problems, ok := classified.Context().Get("problems")
		require.True(t, ok)
		assert.Equal(t, []string{fmt.Sprintf("toc.max_depth: %d out of range 1..4", depth)}, problems)
	}
}

func TestValidate_RejectsRouteCollisions(t *testing.T) {
	cfg := Default()
	cfg.Monitoring.HealthPath = "/livereload"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Monitoring.Metrics.Enabled = true
	cfg.Monitoring.Metrics.Path = cfg.Monitoring.HealthPath
	require.Error(t, Validate(cfg))

	require.NoError(t, Validate(Default()))
}

func TestScheduleInterval(t *testing.T) {
	assert.Zero(t, ScheduleConfig{}.Interval())
	assert.Equal(t, "15m0s", ScheduleConfig{RefreshInterval: "15m"}.Interval().String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestInit_ThenLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiref.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err, "second init without force must fail")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "15m", cfg.Schedule.RefreshInterval)
	assert.Equal(t, "./.apiref/cache.db", cfg.Cache.Path)
	assert.True(t, cfg.Preview.LiveReload)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# apiref configuration")
}
