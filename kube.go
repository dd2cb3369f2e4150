package envconfigs

import (
	"context"
	"strings"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/cleitonmarx/envconfigs/config"
)

// Toleration fields recognized in JOB_KUBE_TOLERATIONS entries.
const (
	tolerationFieldKey      = "key"
	tolerationFieldValue    = "value"
	tolerationFieldEffect   = "effect"
	tolerationFieldOperator = "operator"
)

// Toleration lets job pods schedule onto nodes with a matching taint.
// Key and Value are nil when the entry does not set them.
type Toleration struct {
	Key      *string `json:"key" yaml:"key"`
	Effect   string  `json:"effect" yaml:"effect"`
	Value    *string `json:"value" yaml:"value"`
	Operator string  `json:"operator" yaml:"operator"`
}

// ToKube converts t into its Kubernetes form. The "Equals" operator spelling is
// accepted for the Kubernetes "Equal".
func (t Toleration) ToKube() corev1.Toleration {
	out := corev1.Toleration{
		Effect:   corev1.TaintEffect(t.Effect),
		Operator: kubeTolerationOperator(t.Operator),
	}
	if t.Key != nil {
		out.Key = *t.Key
	}
	if t.Value != nil {
		out.Value = *t.Value
	}
	return out
}

func kubeTolerationOperator(op string) corev1.TolerationOperator {
	switch strings.ToLower(op) {
	case "exists":
		return corev1.TolerationOpExists
	case "equal", "equals":
		return corev1.TolerationOpEqual
	default:
		return corev1.TolerationOperator(op)
	}
}

// JobKubeTolerations returns the tolerations applied to job pods, in input order.
//
// JOB_KUBE_TOLERATIONS holds ';'-separated entries of ','-separated field=value pairs,
// e.g. "key=airbyte-server,operator=Exists,effect=NoSchedule". Malformed pairs are
// ignored and entries lacking effect or operator are dropped. An entry without key
// tolerates every taint with its effect. Unset or blank input yields an empty slice.
func (c *EnvConfigs) JobKubeTolerations(ctx context.Context) []Toleration {
	records := c.resolver.Records(ctx, EnvJobKubeTolerations)
	tolerations := make([]Toleration, 0, len(records))
	for _, record := range records {
		t, ok := tolerationFromPairs(record)
		if !ok {
			c.logger().Warn("ignoring toleration, missing effect or operator",
				zap.Any("toleration", record))
			continue
		}
		tolerations = append(tolerations, t)
	}
	return tolerations
}

// JobKubeKubernetesTolerations returns JobKubeTolerations converted for pod specs.
func (c *EnvConfigs) JobKubeKubernetesTolerations(ctx context.Context) []corev1.Toleration {
	tolerations := c.JobKubeTolerations(ctx)
	out := make([]corev1.Toleration, len(tolerations))
	for i, t := range tolerations {
		out[i] = t.ToKube()
	}
	return out
}

func tolerationFromPairs(pairs []config.Pair) (Toleration, bool) {
	fields := make(map[string]string, len(pairs))
	for _, p := range pairs {
		fields[p.Field] = p.Value
	}
	effect, hasEffect := fields[tolerationFieldEffect]
	operator, hasOperator := fields[tolerationFieldOperator]
	if !hasEffect || !hasOperator {
		return Toleration{}, false
	}

	t := Toleration{Effect: effect, Operator: operator}
	if key, ok := fields[tolerationFieldKey]; ok {
		t.Key = &key
	}
	if value, ok := fields[tolerationFieldValue]; ok {
		t.Value = &value
	}
	return t, true
}

// JobKubeNodeSelectors returns the node selectors of job pods. It is absent when
// JOB_KUBE_NODE_SELECTORS is unset or holds no key=value pair.
func (c *EnvConfigs) JobKubeNodeSelectors(ctx context.Context) config.Optional[map[string]string] {
	return c.resolver.StringMap(ctx, EnvJobKubeNodeSelectors)
}

// SpecJobKubeNodeSelectors returns the node selectors of spec job pods.
func (c *EnvConfigs) SpecJobKubeNodeSelectors(ctx context.Context) config.Optional[map[string]string] {
	return c.resolver.StringMap(ctx, EnvSpecJobKubeNodeSelectors)
}

// CheckJobKubeNodeSelectors returns the node selectors of check job pods.
func (c *EnvConfigs) CheckJobKubeNodeSelectors(ctx context.Context) config.Optional[map[string]string] {
	return c.resolver.StringMap(ctx, EnvCheckJobKubeNodeSelectors)
}

// DiscoverJobKubeNodeSelectors returns the node selectors of discover job pods.
func (c *EnvConfigs) DiscoverJobKubeNodeSelectors(ctx context.Context) config.Optional[map[string]string] {
	return c.resolver.StringMap(ctx, EnvDiscoverJobKubeNodeSelectors)
}

// NodeSelector turns configured node selectors into a label selector.
// Absent selectors match every node.
func NodeSelector(selectors config.Optional[map[string]string]) labels.Selector {
	m, ok := selectors.Get()
	if !ok {
		return labels.Everything()
	}
	return labels.SelectorFromSet(m)
}

// JobKubeNamespace returns the namespace job pods are created in.
func (c *EnvConfigs) JobKubeNamespace(ctx context.Context) string {
	return c.resolver.WithDefault(ctx, EnvJobKubeNamespace, defaultJobKubeNamespace)
}

// JobKubeMainContainerImagePullPolicy returns the pull policy of job main containers.
// Unset or unknown values resolve to IfNotPresent.
func (c *EnvConfigs) JobKubeMainContainerImagePullPolicy(ctx context.Context) corev1.PullPolicy {
	return config.Enum(ctx, c.resolver, EnvJobKubeMainContainerImagePullPolicy, corev1.PullIfNotPresent, matchPullPolicy)
}

func matchPullPolicy(s string) (corev1.PullPolicy, bool) {
	for _, p := range []corev1.PullPolicy{corev1.PullAlways, corev1.PullNever, corev1.PullIfNotPresent} {
		if strings.ToUpper(string(p)) == s {
			return p, true
		}
	}
	return "", false
}

// JobMainContainerCPURequest returns the CPU request of job main containers.
// It is absent when JOB_MAIN_CONTAINER_CPU_REQUEST is unset.
func (c *EnvConfigs) JobMainContainerCPURequest(ctx context.Context) config.Optional[string] {
	return c.optional(ctx, EnvJobMainContainerCPURequest)
}

// JobMainContainerCPULimit returns the CPU limit of job main containers.
func (c *EnvConfigs) JobMainContainerCPULimit(ctx context.Context) config.Optional[string] {
	return c.optional(ctx, EnvJobMainContainerCPULimit)
}

// JobMainContainerMemoryRequest returns the memory request of job main containers.
func (c *EnvConfigs) JobMainContainerMemoryRequest(ctx context.Context) config.Optional[string] {
	return c.optional(ctx, EnvJobMainContainerMemoryRequest)
}

// JobMainContainerMemoryLimit returns the memory limit of job main containers.
func (c *EnvConfigs) JobMainContainerMemoryLimit(ctx context.Context) config.Optional[string] {
	return c.optional(ctx, EnvJobMainContainerMemoryLimit)
}

func (c *EnvConfigs) optional(ctx context.Context, key string) config.Optional[string] {
	if value, ok := c.resolver.Lookup(ctx, key); ok {
		return config.Some(value)
	}
	return config.None[string]()
}

// CheckJobMainContainerCPURequest returns the CPU request of check job main
// containers, falling back to JOB_MAIN_CONTAINER_CPU_REQUEST.
func (c *EnvConfigs) CheckJobMainContainerCPURequest(ctx context.Context) (string, error) {
	res, err := c.checkJobResource(ctx, EnvCheckJobMainContainerCPURequest, EnvJobMainContainerCPURequest)
	return res.Value, err
}

// CheckJobMainContainerCPULimit returns the CPU limit of check job main
// containers, falling back to JOB_MAIN_CONTAINER_CPU_LIMIT.
func (c *EnvConfigs) CheckJobMainContainerCPULimit(ctx context.Context) (string, error) {
	res, err := c.checkJobResource(ctx, EnvCheckJobMainContainerCPULimit, EnvJobMainContainerCPULimit)
	return res.Value, err
}

// CheckJobMainContainerMemoryRequest returns the memory request of check job main
// containers, falling back to JOB_MAIN_CONTAINER_MEMORY_REQUEST.
func (c *EnvConfigs) CheckJobMainContainerMemoryRequest(ctx context.Context) (string, error) {
	res, err := c.checkJobResource(ctx, EnvCheckJobMainContainerMemoryRequest, EnvJobMainContainerMemoryRequest)
	return res.Value, err
}

// CheckJobMainContainerMemoryLimit returns the memory limit of check job main
// containers, falling back to JOB_MAIN_CONTAINER_MEMORY_LIMIT.
func (c *EnvConfigs) CheckJobMainContainerMemoryLimit(ctx context.Context) (string, error) {
	res, err := c.checkJobResource(ctx, EnvCheckJobMainContainerMemoryLimit, EnvJobMainContainerMemoryLimit)
	return res.Value, err
}

func (c *EnvConfigs) checkJobResource(ctx context.Context, key, fallbackKey string) (config.Resolution, error) {
	return c.resolver.Fallback(ctx, key, c.resolver.RequiredFallback(fallbackKey))
}

// resourceSetting pairs a container resource with the resolution of its setting.
type resourceSetting struct {
	name    corev1.ResourceName
	request bool
	resolve func(ctx context.Context) (config.Resolution, error)
}

// JobMainContainerResources returns the resource requirements of job main containers.
// Unset and empty settings are left out; values that are not Kubernetes quantities
// fail with *config.InvalidConfigurationError.
func (c *EnvConfigs) JobMainContainerResources(ctx context.Context) (corev1.ResourceRequirements, error) {
	optional := func(key string) func(context.Context) (config.Resolution, error) {
		return func(ctx context.Context) (config.Resolution, error) {
			value, ok := c.optional(ctx, key).Get()
			if !ok {
				return config.Resolution{Kind: config.Missing}, nil
			}
			return config.Resolution{Kind: config.Found, Value: value, Key: key}, nil
		}
	}
	return buildResources(ctx, []resourceSetting{
		{name: corev1.ResourceCPU, request: true, resolve: optional(EnvJobMainContainerCPURequest)},
		{name: corev1.ResourceCPU, resolve: optional(EnvJobMainContainerCPULimit)},
		{name: corev1.ResourceMemory, request: true, resolve: optional(EnvJobMainContainerMemoryRequest)},
		{name: corev1.ResourceMemory, resolve: optional(EnvJobMainContainerMemoryLimit)},
	})
}

// CheckJobMainContainerResources returns the resource requirements of check job
// main containers, each setting falling back to its job-wide counterpart.
func (c *EnvConfigs) CheckJobMainContainerResources(ctx context.Context) (corev1.ResourceRequirements, error) {
	fallback := func(key, fallbackKey string) func(context.Context) (config.Resolution, error) {
		return func(ctx context.Context) (config.Resolution, error) {
			return c.checkJobResource(ctx, key, fallbackKey)
		}
	}
	return buildResources(ctx, []resourceSetting{
		{name: corev1.ResourceCPU, request: true, resolve: fallback(EnvCheckJobMainContainerCPURequest, EnvJobMainContainerCPURequest)},
		{name: corev1.ResourceCPU, resolve: fallback(EnvCheckJobMainContainerCPULimit, EnvJobMainContainerCPULimit)},
		{name: corev1.ResourceMemory, request: true, resolve: fallback(EnvCheckJobMainContainerMemoryRequest, EnvJobMainContainerMemoryRequest)},
		{name: corev1.ResourceMemory, resolve: fallback(EnvCheckJobMainContainerMemoryLimit, EnvJobMainContainerMemoryLimit)},
	})
}

func buildResources(ctx context.Context, settings []resourceSetting) (corev1.ResourceRequirements, error) {
	var reqs corev1.ResourceRequirements
	for _, s := range settings {
		res, err := s.resolve(ctx)
		if err != nil {
			return corev1.ResourceRequirements{}, err
		}
		if !res.Ok() || strings.TrimSpace(res.Value) == "" {
			continue
		}
		q, err := resource.ParseQuantity(strings.TrimSpace(res.Value))
		if err != nil {
			return corev1.ResourceRequirements{}, &config.InvalidConfigurationError{Key: res.Key, Value: res.Value, Err: err}
		}
		list := &reqs.Limits
		if s.request {
			list = &reqs.Requests
		}
		if *list == nil {
			*list = corev1.ResourceList{}
		}
		(*list)[s.name] = q
	}
	return reqs, nil
}
