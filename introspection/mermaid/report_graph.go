package mermaid

import (
	"sort"

	"github.com/cleitonmarx/envconfigs/introspection"
)

const (
	emojiCodeLocation = "📍"
	emojiProvider     = "🗄️"
	emojiKey          = "🗝️"
	emojiSecret       = "🔒"
)

var (
	// node styles
	styleProvider    = Style{Fill: "#e0f7fa", Stroke: "#00838f", StrokeWidth: "2px", Color: "#222222"}
	styleKeyFound    = Style{Fill: "#e8f5e9", Stroke: "#388e3c", StrokeWidth: "2px", Color: "#222222"}
	styleKeyFallback = Style{Fill: "#e3e0fc", Stroke: "#6c47a6", StrokeWidth: "2px", Color: "#222222"}
	styleKeyDefault  = Style{Fill: "#f0f0f0", Stroke: "#888888", StrokeWidth: "1px", Color: "#222222"}
	styleKeyMissing  = Style{Fill: "#fce1e1", Stroke: "#a60202", StrokeWidth: "2px", Color: "#b26a00"}
	styleCaller      = Style{Fill: "#fff3e0", Stroke: "#f57c00", StrokeWidth: "2px", Color: "#222222"}

	// sublines styles
	styleResolution = Style{Color: "green", FontSize: "11px", IsHTML: true}
	styleSecret     = Style{Color: "#b26a00", FontSize: "11px", IsHTML: true}
	styleCodeLoc    = Style{Color: "gray", FontSize: "11px", IsHTML: true}
)

// GenerateConfigGraph renders the report as a Mermaid graph linking providers to the
// keys they supplied and keys to the functions that read them. Each key is styled
// after its most recent resolution.
func GenerateConfigGraph(r introspection.Report) string {
	nodes := make(map[string]Node)
	edges := make(map[Edge]struct{})
	latest := make(map[string]introspection.ConfigAccess)

	for _, access := range r.Configs {
		keyID := keyNodeID(access.Key)
		if prev, ok := latest[access.Key]; !ok || access.Order > prev.Order {
			latest[access.Key] = access
		}

		if access.Provider != "" {
			providerID := providerNodeID(access.Provider)
			nodes[providerID] = Node{
				ID: providerID,
				Label: LabelBuilder{
					Label:    emojiProvider + " " + access.Provider,
					FontSize: 15,
					Bold:     true,
				}.ToHTML(),
				Type:  NodeProvider,
				Style: styleProvider,
			}
			edges[Edge{From: providerID, To: keyID}] = struct{}{}
		}

		caller := access.Caller.Func
		if caller == "" {
			caller = "unknown caller"
		}
		callerID := callerNodeID(caller)
		nodes[callerID] = Node{
			ID: callerID,
			Label: LabelBuilder{
				Label:    caller,
				FontSize: 15,
				Bold:     true,
				SubLines: []string{
					Subline(styleCodeLoc, "%s(%s:%d)", emojiCodeLocation, access.Caller.File, access.Caller.Line),
				},
			}.ToHTML(),
			Type:  NodeCaller,
			Style: styleCaller,
		}
		edges[Edge{From: keyID, To: callerID, Arrow: "-.->"}] = struct{}{}
	}

	for key, access := range latest {
		sublines := []string{Subline(styleResolution, "%s", access.Resolution)}
		if access.Secret {
			sublines = append(sublines, Subline(styleSecret, "%s secret", emojiSecret))
		}
		id := keyNodeID(key)
		nodes[id] = Node{
			ID: id,
			Label: LabelBuilder{
				Label:    emojiKey + " " + key,
				FontSize: 16,
				Bold:     true,
				SubLines: sublines,
			}.ToHTML(),
			Type:  NodeKey,
			Style: keyStyle(access.Resolution),
		}
	}

	g := Graph{}
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g.Nodes = append(g.Nodes, nodes[id])
	}
	for e := range edges {
		g.Edges = append(g.Edges, e)
	}
	return g.RenderTD()
}

func keyStyle(res introspection.Resolution) Style {
	switch res {
	case introspection.ResolutionFound:
		return styleKeyFound
	case introspection.ResolutionFallback:
		return styleKeyFallback
	case introspection.ResolutionDefault:
		return styleKeyDefault
	default:
		return styleKeyMissing
	}
}

func providerNodeID(name string) string { return "provider_" + name }
func keyNodeID(key string) string       { return "key_" + key }
func callerNodeID(fn string) string     { return "caller_" + fn }
