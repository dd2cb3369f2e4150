// Package envconfigs exposes the platform's environment-driven settings as typed,
// validated values: resource paths, database credentials, container scheduling
// parameters, tracking strategy and Kubernetes scheduling constraints.
//
// Every getter re-reads the backing provider, so values are never stale and the
// type is safe for concurrent use whenever the provider is.
package envconfigs

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cleitonmarx/envconfigs/config"
	"github.com/cleitonmarx/envconfigs/introspection"
)

// Recognized keys.
const (
	EnvAirbyteRole          = "AIRBYTE_ROLE"
	EnvAirbyteVersion       = "AIRBYTE_VERSION"
	EnvWorkspaceRoot        = "WORKSPACE_ROOT"
	EnvLocalRoot            = "LOCAL_ROOT"
	EnvConfigRoot           = "CONFIG_ROOT"
	EnvDatabaseUser         = "DATABASE_USER"
	EnvDatabasePassword     = "DATABASE_PASSWORD"
	EnvDatabaseURL          = "DATABASE_URL"
	EnvWorkspaceDockerMount = "WORKSPACE_DOCKER_MOUNT"
	EnvLocalDockerMount     = "LOCAL_DOCKER_MOUNT"
	EnvDockerNetwork        = "DOCKER_NETWORK"
	EnvTrackingStrategy     = "TRACKING_STRATEGY"
	EnvWorkerEnvironment    = "WORKER_ENVIRONMENT"

	EnvJobKubeNamespace                    = "JOB_KUBE_NAMESPACE"
	EnvJobKubeMainContainerImagePullPolicy = "JOB_KUBE_MAIN_CONTAINER_IMAGE_PULL_POLICY"
	EnvJobKubeTolerations                  = "JOB_KUBE_TOLERATIONS"
	EnvJobKubeNodeSelectors                = "JOB_KUBE_NODE_SELECTORS"
	EnvSpecJobKubeNodeSelectors            = "SPEC_JOB_KUBE_NODE_SELECTORS"
	EnvCheckJobKubeNodeSelectors           = "CHECK_JOB_KUBE_NODE_SELECTORS"
	EnvDiscoverJobKubeNodeSelectors        = "DISCOVER_JOB_KUBE_NODE_SELECTORS"

	EnvJobMainContainerCPURequest    = "JOB_MAIN_CONTAINER_CPU_REQUEST"
	EnvJobMainContainerCPULimit      = "JOB_MAIN_CONTAINER_CPU_LIMIT"
	EnvJobMainContainerMemoryRequest = "JOB_MAIN_CONTAINER_MEMORY_REQUEST"
	EnvJobMainContainerMemoryLimit   = "JOB_MAIN_CONTAINER_MEMORY_LIMIT"

	EnvCheckJobMainContainerCPURequest    = "CHECK_JOB_MAIN_CONTAINER_CPU_REQUEST"
	EnvCheckJobMainContainerCPULimit      = "CHECK_JOB_MAIN_CONTAINER_CPU_LIMIT"
	EnvCheckJobMainContainerMemoryRequest = "CHECK_JOB_MAIN_CONTAINER_MEMORY_REQUEST"
	EnvCheckJobMainContainerMemoryLimit   = "CHECK_JOB_MAIN_CONTAINER_MEMORY_LIMIT"

	// JobDefaultEnvPrefix marks keys passed through verbatim to job containers.
	JobDefaultEnvPrefix = "JOB_DEFAULT_ENV_"
)

const (
	defaultDockerNetwork    = "host"
	defaultJobKubeNamespace = "default"
)

// secretKeys never have their values logged.
var secretKeys = []string{EnvDatabasePassword}

// EnvConfigs resolves the platform settings from a config.Provider.
type EnvConfigs struct {
	resolver *config.Resolver
}

// New creates an EnvConfigs reading from provider.
func New(provider config.Provider, opts ...config.Option) *EnvConfigs {
	opts = append([]config.Option{config.WithSecrets(secretKeys...)}, opts...)
	return &EnvConfigs{resolver: config.NewResolver(provider, opts...)}
}

// NewFromEnv creates an EnvConfigs reading the process environment.
func NewFromEnv(opts ...config.Option) *EnvConfigs {
	return New(config.NewEnvVarProvider(), opts...)
}

// NewFromLookup creates an EnvConfigs reading through lookup, which follows
// os.LookupEnv semantics. JobDefaultEnvMap is unavailable on such configs since
// a lookup function cannot enumerate keys.
func NewFromLookup(lookup func(key string) (string, bool), opts ...config.Option) *EnvConfigs {
	return New(config.LookupFunc(lookup), opts...)
}

// NewFromMap creates an EnvConfigs reading from a fixed map.
func NewFromMap(values map[string]string, opts ...config.Option) *EnvConfigs {
	return New(config.MapProvider(values), opts...)
}

// Resolver exposes the underlying resolver for reading keys this type does not model.
func (c *EnvConfigs) Resolver() *config.Resolver {
	return c.resolver
}

// Report returns the recorded key accesses when created with config.WithIntrospection.
func (c *EnvConfigs) Report() introspection.Report {
	return c.resolver.Report()
}

func (c *EnvConfigs) logger() *zap.Logger {
	return c.resolver.Logger()
}

// AirbyteRole returns the deployment role, if any. It is the only identity setting
// allowed to be unset.
func (c *EnvConfigs) AirbyteRole(ctx context.Context) (string, bool) {
	return c.resolver.Lookup(ctx, EnvAirbyteRole)
}

// AirbyteVersion returns the platform version.
func (c *EnvConfigs) AirbyteVersion(ctx context.Context) (Version, error) {
	return config.Parse(ctx, c.resolver, EnvAirbyteVersion, ParseVersion)
}

// AirbyteVersionOrWarning returns the platform version string, or "Unknown Version"
// when it is unset. It is meant for banners and diagnostics.
func (c *EnvConfigs) AirbyteVersionOrWarning(ctx context.Context) string {
	return c.resolver.WithDefault(ctx, EnvAirbyteVersion, "Unknown Version")
}

// WorkspaceRoot returns the root directory of job workspaces.
func (c *EnvConfigs) WorkspaceRoot(ctx context.Context) (string, error) {
	return config.Parse(ctx, c.resolver, EnvWorkspaceRoot, parsePath)
}

// LocalRoot returns the root directory for local connector files.
func (c *EnvConfigs) LocalRoot(ctx context.Context) (string, error) {
	return config.Parse(ctx, c.resolver, EnvLocalRoot, parsePath)
}

// ConfigRoot returns the root directory of the configuration store.
func (c *EnvConfigs) ConfigRoot(ctx context.Context) (string, error) {
	return config.Parse(ctx, c.resolver, EnvConfigRoot, parsePath)
}

// DatabaseUser returns the database user name.
func (c *EnvConfigs) DatabaseUser(ctx context.Context) (string, error) {
	return c.resolver.Required(ctx, EnvDatabaseUser)
}

// DatabasePassword returns the database password.
func (c *EnvConfigs) DatabasePassword(ctx context.Context) (string, error) {
	return c.resolver.Required(ctx, EnvDatabasePassword)
}

// DatabaseURL returns the database connection URL.
func (c *EnvConfigs) DatabaseURL(ctx context.Context) (string, error) {
	return c.resolver.Required(ctx, EnvDatabaseURL)
}

// WorkspaceDockerMount returns the docker mount of the workspace, falling back to
// WORKSPACE_ROOT.
func (c *EnvConfigs) WorkspaceDockerMount(ctx context.Context) (string, error) {
	res, err := c.resolver.Fallback(ctx, EnvWorkspaceDockerMount, pathFallback(EnvWorkspaceRoot, c.WorkspaceRoot))
	return res.Value, err
}

// LocalDockerMount returns the docker mount of the local root, falling back to
// LOCAL_ROOT.
func (c *EnvConfigs) LocalDockerMount(ctx context.Context) (string, error) {
	res, err := c.resolver.Fallback(ctx, EnvLocalDockerMount, pathFallback(EnvLocalRoot, c.LocalRoot))
	return res.Value, err
}

// DockerNetwork returns the docker network jobs attach to. Defaults to "host".
func (c *EnvConfigs) DockerNetwork(ctx context.Context) string {
	return c.resolver.WithDefault(ctx, EnvDockerNetwork, defaultDockerNetwork)
}

// TrackingStrategy returns the telemetry strategy. Unset or unknown values
// resolve to TrackingStrategyLogging.
func (c *EnvConfigs) TrackingStrategy(ctx context.Context) TrackingStrategy {
	return config.Enum(ctx, c.resolver, EnvTrackingStrategy, TrackingStrategyLogging, matchTrackingStrategy)
}

// WorkerEnvironment returns where jobs run. Unset or unknown values resolve to
// WorkerEnvironmentDocker.
func (c *EnvConfigs) WorkerEnvironment(ctx context.Context) WorkerEnvironment {
	return config.Enum(ctx, c.resolver, EnvWorkerEnvironment, WorkerEnvironmentDocker, matchWorkerEnvironment)
}

// JobDefaultEnvMap returns the JOB_DEFAULT_ENV_ entries keyed by the name with
// the prefix stripped. Values are passed through untouched. The map is empty,
// never nil, when nothing is configured.
func (c *EnvConfigs) JobDefaultEnvMap(ctx context.Context) (map[string]string, error) {
	return c.resolver.WithPrefix(ctx, JobDefaultEnvPrefix)
}

func pathFallback(key string, get func(context.Context) (string, error)) config.FallbackFunc {
	return func(ctx context.Context) (string, string, error) {
		value, err := get(ctx)
		return key, value, err
	}
}

// parsePath cleans a path setting. An empty value stays empty.
func parsePath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return filepath.Clean(value), nil
}
