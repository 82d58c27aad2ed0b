package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marlinprotocol/oyster-watchdog/config"
	"github.com/marlinprotocol/oyster-watchdog/internal/mocks"
)

func validConfig(services string) *config.AppConfig {
	cfg := &config.AppConfig{
		Services: services,
	}
	cfg.Chain.RPCURL = "https://rpc.example.com"
	cfg.Chain.ContractAddress = "0x1111111111111111111111111111111111111111"
	cfg.Sanitize()
	return cfg
}

func TestValidateServiceConfig(t *testing.T) {
	t.Parallel()

	require.Error(t, ValidateServiceConfig(nil))

	cfg := validConfig("watcher,http")
	require.NoError(t, ValidateServiceConfig(cfg))

	cfg = validConfig("bogus")
	require.Error(t, ValidateServiceConfig(cfg))

	// The watcher needs its chain settings.
	cfg = validConfig("watcher")
	cfg.Chain.RPCURL = ""
	require.Error(t, ValidateServiceConfig(cfg))

	cfg = validConfig("watcher")
	cfg.Chain.ContractAddress = ""
	require.Error(t, ValidateServiceConfig(cfg))

	// The HTTP server alone has no chain requirement.
	cfg = validConfig("http")
	cfg.Chain.RPCURL = ""
	cfg.Chain.ContractAddress = ""
	require.NoError(t, ValidateServiceConfig(cfg))
}

func TestGetEnabledServices(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetEnabledServices(nil))

	names := GetEnabledServices(validConfig("watcher,http"))
	assert.ElementsMatch(t, []string{"watcher", "http"}, names)
}

func TestNewServicesHTTPOnly(t *testing.T) {
	t.Parallel()

	_, err := NewServices(nil)
	require.Error(t, err)

	container, err := NewServices(&ServiceDeps{
		Config: validConfig("http"),
	})
	require.NoError(t, err)
	assert.Nil(t, container.Watcher)
	assert.NotNil(t, container.Failures)
}

func TestNewServicesWatcherRequiresChain(t *testing.T) {
	t.Parallel()

	_, err := NewServices(&ServiceDeps{
		Config: validConfig("watcher"),
	})
	require.Error(t, err)
}

func TestNewServicesCursorRequiresRedis(t *testing.T) {
	t.Parallel()

	cfg := validConfig("watcher")
	cfg.Chain.CursorEnabled = true

	_, err := NewServices(&ServiceDeps{
		Config: cfg,
		Chain:  mocks.NewMockChainSource(gomock.NewController(t)),
	})
	require.Error(t, err)
}
