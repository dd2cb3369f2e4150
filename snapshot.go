package envconfigs

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"

	"github.com/cleitonmarx/envconfigs/config"
)

// snapshotConcurrency bounds the reads in flight against the provider.
const snapshotConcurrency = 8

// Snapshot is every setting resolved at one point in time.
type Snapshot struct {
	AirbyteRole    *string `json:"airbyteRole" yaml:"airbyteRole"`
	AirbyteVersion Version `json:"airbyteVersion" yaml:"airbyteVersion"`

	WorkspaceRoot        string `json:"workspaceRoot" yaml:"workspaceRoot"`
	LocalRoot            string `json:"localRoot" yaml:"localRoot"`
	ConfigRoot           string `json:"configRoot" yaml:"configRoot"`
	WorkspaceDockerMount string `json:"workspaceDockerMount" yaml:"workspaceDockerMount"`
	LocalDockerMount     string `json:"localDockerMount" yaml:"localDockerMount"`
	DockerNetwork        string `json:"dockerNetwork" yaml:"dockerNetwork"`

	DatabaseUser     string `json:"databaseUser" yaml:"databaseUser"`
	DatabasePassword string `json:"databasePassword" yaml:"databasePassword"`
	DatabaseURL      string `json:"databaseUrl" yaml:"databaseUrl"`

	TrackingStrategy  TrackingStrategy  `json:"trackingStrategy" yaml:"trackingStrategy"`
	WorkerEnvironment WorkerEnvironment `json:"workerEnvironment" yaml:"workerEnvironment"`

	JobKubeNamespace                    string                              `json:"jobKubeNamespace" yaml:"jobKubeNamespace"`
	JobKubeMainContainerImagePullPolicy corev1.PullPolicy                   `json:"jobKubeMainContainerImagePullPolicy" yaml:"jobKubeMainContainerImagePullPolicy"`
	JobKubeTolerations                  []Toleration                        `json:"jobKubeTolerations" yaml:"jobKubeTolerations"`
	JobKubeNodeSelectors                config.Optional[map[string]string] `json:"jobKubeNodeSelectors" yaml:"jobKubeNodeSelectors"`
	SpecJobKubeNodeSelectors            config.Optional[map[string]string] `json:"specJobKubeNodeSelectors" yaml:"specJobKubeNodeSelectors"`
	CheckJobKubeNodeSelectors           config.Optional[map[string]string] `json:"checkJobKubeNodeSelectors" yaml:"checkJobKubeNodeSelectors"`
	DiscoverJobKubeNodeSelectors        config.Optional[map[string]string] `json:"discoverJobKubeNodeSelectors" yaml:"discoverJobKubeNodeSelectors"`

	JobMainContainerCPURequest         config.Optional[string] `json:"jobMainContainerCpuRequest" yaml:"jobMainContainerCpuRequest"`
	JobMainContainerCPULimit           config.Optional[string] `json:"jobMainContainerCpuLimit" yaml:"jobMainContainerCpuLimit"`
	JobMainContainerMemoryRequest      config.Optional[string] `json:"jobMainContainerMemoryRequest" yaml:"jobMainContainerMemoryRequest"`
	JobMainContainerMemoryLimit        config.Optional[string] `json:"jobMainContainerMemoryLimit" yaml:"jobMainContainerMemoryLimit"`
	CheckJobMainContainerCPURequest    string                  `json:"checkJobMainContainerCpuRequest" yaml:"checkJobMainContainerCpuRequest"`
	CheckJobMainContainerCPULimit      string                  `json:"checkJobMainContainerCpuLimit" yaml:"checkJobMainContainerCpuLimit"`
	CheckJobMainContainerMemoryRequest string                  `json:"checkJobMainContainerMemoryRequest" yaml:"checkJobMainContainerMemoryRequest"`
	CheckJobMainContainerMemoryLimit   string                  `json:"checkJobMainContainerMemoryLimit" yaml:"checkJobMainContainerMemoryLimit"`

	JobDefaultEnv map[string]string `json:"jobDefaultEnv" yaml:"jobDefaultEnv"`
}

// Redacted returns a copy of s with secret values masked.
func (s Snapshot) Redacted() Snapshot {
	if s.DatabasePassword != "" {
		s.DatabasePassword = "*****"
	}
	return s
}

// configErrors collects missing and invalid settings across goroutines.
type configErrors struct {
	mu   sync.Mutex
	errs []error
}

func (c *configErrors) add(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// join returns the collected errors in a stable order. Errors with the same message,
// such as a job-wide key missing behind several check job fallbacks, are reported once.
func (c *configErrors) join() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.Slice(c.errs, func(i, j int) bool { return c.errs[i].Error() < c.errs[j].Error() })
	c.errs = slices.CompactFunc(c.errs, func(a, b error) bool { return a.Error() == b.Error() })
	return errors.Join(c.errs...)
}

// capture resolves one setting into dst. Missing and invalid settings are
// collected so every problem is reported at once; any other failure aborts the snapshot.
func capture[T any](errs *configErrors, dst *T, get func() (T, error)) func() error {
	return func() error {
		v, err := get()
		if err != nil {
			if errors.Is(err, config.ErrMissing) || errors.Is(err, config.ErrInvalid) {
				errs.add(err)
				return nil
			}
			return err
		}
		*dst = v
		return nil
	}
}

// always adapts a getter that cannot fail.
func always[T any](ctx context.Context, get func(context.Context) T) func() (T, error) {
	return func() (T, error) { return get(ctx), nil }
}

// Snapshot resolves every setting concurrently. Unlike the individual getters it
// does not stop at the first problem: the returned error joins every missing or
// invalid setting. On error the returned Snapshot is the zero value.
func (c *EnvConfigs) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		s    Snapshot
		errs configErrors
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)

	with := func(get func(context.Context) (string, error)) func() (string, error) {
		return func() (string, error) { return get(gctx) }
	}

	g.Go(capture(&errs, &s.AirbyteRole, func() (*string, error) {
		if role, ok := c.AirbyteRole(gctx); ok {
			return &role, nil
		}
		return nil, nil
	}))
	g.Go(capture(&errs, &s.AirbyteVersion, func() (Version, error) { return c.AirbyteVersion(gctx) }))
	g.Go(capture(&errs, &s.WorkspaceRoot, with(c.WorkspaceRoot)))
	g.Go(capture(&errs, &s.LocalRoot, with(c.LocalRoot)))
	g.Go(capture(&errs, &s.ConfigRoot, with(c.ConfigRoot)))
	g.Go(capture(&errs, &s.WorkspaceDockerMount, with(c.WorkspaceDockerMount)))
	g.Go(capture(&errs, &s.LocalDockerMount, with(c.LocalDockerMount)))
	g.Go(capture(&errs, &s.DockerNetwork, always(gctx, c.DockerNetwork)))
	g.Go(capture(&errs, &s.DatabaseUser, with(c.DatabaseUser)))
	g.Go(capture(&errs, &s.DatabasePassword, with(c.DatabasePassword)))
	g.Go(capture(&errs, &s.DatabaseURL, with(c.DatabaseURL)))
	g.Go(capture(&errs, &s.TrackingStrategy, always(gctx, c.TrackingStrategy)))
	g.Go(capture(&errs, &s.WorkerEnvironment, always(gctx, c.WorkerEnvironment)))
	g.Go(capture(&errs, &s.JobKubeNamespace, always(gctx, c.JobKubeNamespace)))
	g.Go(capture(&errs, &s.JobKubeMainContainerImagePullPolicy, always(gctx, c.JobKubeMainContainerImagePullPolicy)))
	g.Go(capture(&errs, &s.JobKubeTolerations, always(gctx, c.JobKubeTolerations)))
	g.Go(capture(&errs, &s.JobKubeNodeSelectors, always(gctx, c.JobKubeNodeSelectors)))
	g.Go(capture(&errs, &s.SpecJobKubeNodeSelectors, always(gctx, c.SpecJobKubeNodeSelectors)))
	g.Go(capture(&errs, &s.CheckJobKubeNodeSelectors, always(gctx, c.CheckJobKubeNodeSelectors)))
	g.Go(capture(&errs, &s.DiscoverJobKubeNodeSelectors, always(gctx, c.DiscoverJobKubeNodeSelectors)))
	g.Go(capture(&errs, &s.JobMainContainerCPURequest, always(gctx, c.JobMainContainerCPURequest)))
	g.Go(capture(&errs, &s.JobMainContainerCPULimit, always(gctx, c.JobMainContainerCPULimit)))
	g.Go(capture(&errs, &s.JobMainContainerMemoryRequest, always(gctx, c.JobMainContainerMemoryRequest)))
	g.Go(capture(&errs, &s.JobMainContainerMemoryLimit, always(gctx, c.JobMainContainerMemoryLimit)))
	g.Go(capture(&errs, &s.CheckJobMainContainerCPURequest, with(c.CheckJobMainContainerCPURequest)))
	g.Go(capture(&errs, &s.CheckJobMainContainerCPULimit, with(c.CheckJobMainContainerCPULimit)))
	g.Go(capture(&errs, &s.CheckJobMainContainerMemoryRequest, with(c.CheckJobMainContainerMemoryRequest)))
	g.Go(capture(&errs, &s.CheckJobMainContainerMemoryLimit, with(c.CheckJobMainContainerMemoryLimit)))
	g.Go(capture(&errs, &s.JobDefaultEnv, func() (map[string]string, error) {
		env, err := c.JobDefaultEnvMap(gctx)
		if errors.Is(err, config.ErrNotListable) {
			return map[string]string{}, nil
		}
		return env, err
	}))

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if err := errs.join(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
