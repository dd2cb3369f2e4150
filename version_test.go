package envconfigs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseVersion(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    [3]uint64
		wantRaw string
		dev     bool
		wantErr bool
	}{
		"release":         {in: "0.30.22", want: [3]uint64{0, 30, 22}, wantRaw: "0.30.22"},
		"suffix":          {in: "0.30.22-alpha", want: [3]uint64{0, 30, 22}, wantRaw: "0.30.22-alpha"},
		"trailing_break":  {in: "1.2.3\n", want: [3]uint64{1, 2, 3}, wantRaw: "1.2.3"},
		"padded":          {in: "  1.2.3 ", want: [3]uint64{1, 2, 3}, wantRaw: "1.2.3"},
		"dev":             {in: "dev", dev: true, wantRaw: "dev"},
		"empty":           {in: "", wantErr: true},
		"two_components":  {in: "1.2", wantErr: true},
		"four_components": {in: "1.2.3.4", wantErr: true},
		"not_numeric":     {in: "a.b.c", wantErr: true},
		"negative":        {in: "1.-2.3", wantErr: true},
		"leading_zero":    {in: "01.2.3", wantErr: true},
		"build_metadata":  {in: "1.2.3+build.7", want: [3]uint64{1, 2, 3}, wantRaw: "1.2.3+build.7"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dev, got.IsDev())
			assert.Equal(t, tt.wantRaw, got.String())
			assert.Equal(t, tt.want, [3]uint64{got.Major(), got.Minor(), got.Patch()})
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	mustParse := func(s string) Version {
		v, err := ParseVersion(s)
		require.NoError(t, err)
		return v
	}
	tests := map[string]struct {
		a, b       string
		want       int
		compatible bool
	}{
		"equal":               {a: "0.30.22", b: "0.30.22", want: 0, compatible: true},
		"suffix_ignored":      {a: "0.30.22-alpha", b: "0.30.22", want: 0, compatible: true},
		"patch_lower":         {a: "0.30.1", b: "0.30.22", want: -1, compatible: true},
		"minor_higher":        {a: "0.31.0", b: "0.30.22", want: 1, compatible: false},
		"major_higher":        {a: "1.0.0", b: "0.99.99", want: 1, compatible: false},
		"dev_beats_release":   {a: "dev", b: "9.9.9", want: 1, compatible: true},
		"release_below_dev":   {a: "9.9.9", b: "dev", want: -1, compatible: true},
		"dev_equals_dev":      {a: "dev", b: "dev", want: 0, compatible: true},
		"numeric_not_lexical": {a: "0.10.0", b: "0.9.0", want: 1, compatible: false},
		"prerelease_ignored":  {a: "0.30.22-alpha", b: "0.30.22-beta", want: 0, compatible: true},
		"metadata_ignored":    {a: "0.30.22+b1", b: "0.30.21", want: 1, compatible: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, b := mustParse(tt.a), mustParse(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, tt.compatible, a.CompatibleWith(b))
		})
	}
}

func TestVersion_Text(t *testing.T) {
	v, err := ParseVersion("0.30.22-alpha")
	require.NoError(t, err)

	data, err := json.Marshal(struct {
		V Version `json:"v"`
	}{V: v})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"0.30.22-alpha"}`, string(data))

	out, err := yaml.Marshal(map[string]Version{"v": v})
	require.NoError(t, err)
	assert.Equal(t, "v: 0.30.22-alpha\n", string(out))

	var decoded Version
	require.NoError(t, decoded.UnmarshalText([]byte("dev")))
	assert.True(t, decoded.IsDev())
	assert.Error(t, decoded.UnmarshalText([]byte("nope")))
}
