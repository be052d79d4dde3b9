package extract

import (
	"testing"

	"github.com/blockberries/witness/pkg/format"
	"github.com/stretchr/testify/require"
)

const testdataPkg = "github.com/blockberries/witness/pkg/extract/testdata"

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern  string
		name     string
		expected bool
	}{
		{"User*", "User", true},
		{"User*", "UserInfo", true},
		{"User*", "Admin", false},
		{"*Info", "UserInfo", true},
		{"*Info", "User", false},
		{"*", "Anything", true},
		{"User", "User", true},
		{"User", "Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, matchGlob(tt.pattern, tt.name))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.IncludePrivate)
	require.True(t, cfg.DetectInterfaces)
	require.Empty(t, cfg.IncludePatterns)
	require.Empty(t, cfg.ExcludePatterns)
}

func TestRegistryBuilderBuildEmpty(t *testing.T) {
	builder := NewRegistryBuilder(nil, nil, nil)
	reg, err := builder.Build()
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.Equal(t, 0, reg.Len())
}

func TestExtractToStringContainsExpectedContainers(t *testing.T) {
	result, err := ExtractToString([]string{testdataPkg}, DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, result)

	require.Contains(t, result, "User")
	require.Contains(t, result, "Address")
	require.Contains(t, result, "Status")
	require.Contains(t, result, "Person")

	require.NotContains(t, result, "privateType")
}

func TestExtractWithPrivate(t *testing.T) {
	cfg := &Config{IncludePrivate: true, DetectInterfaces: true}
	result, err := ExtractToString([]string{testdataPkg}, cfg)
	require.NoError(t, err)
	require.Contains(t, result, "privateType")
}

func TestExtractWithPatterns(t *testing.T) {
	cfg := &Config{IncludePatterns: []string{"User*"}, DetectInterfaces: true}
	result, err := ExtractToString([]string{testdataPkg}, cfg)
	require.NoError(t, err)
	require.Contains(t, result, "User")
	require.NotContains(t, result, "Address")
}

func TestExtractWithExclude(t *testing.T) {
	cfg := &Config{ExcludePatterns: []string{"Admin"}, DetectInterfaces: true}
	result, err := ExtractToString([]string{testdataPkg}, cfg)
	require.NoError(t, err)
	require.NotContains(t, result, "Admin")
	require.Contains(t, result, "User")
}

func TestExtractor(t *testing.T) {
	extractor := NewExtractor()
	cfg := &ExtractorConfig{
		Config:   DefaultConfig(),
		Patterns: []string{testdataPkg},
	}

	reg, err := extractor.Extract(cfg)
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.True(t, reg.Has("User"))
	require.True(t, reg.Has("Address"))
}

func TestCStyleEnumsBecomeUnitVariantEnums(t *testing.T) {
	result, err := ExtractToString([]string{testdataPkg}, DefaultConfig())
	require.NoError(t, err)

	require.Contains(t, result, "Status")
	require.Contains(t, result, "Priority")
	require.Contains(t, result, "StatusUnknown")
	require.Contains(t, result, "StatusActive")
	require.Contains(t, result, "PriorityLow")
	require.Contains(t, result, "PriorityHigh")
}

func TestEmptyInterfaceExcludedByDefault(t *testing.T) {
	result, err := ExtractToString([]string{testdataPkg}, DefaultConfig())
	require.NoError(t, err)

	require.NotContains(t, result, "Serializable")
	require.Contains(t, result, "Person")
}

func TestEmptyInterfaceIncludedWhenConfigured(t *testing.T) {
	cfg := &Config{IncludeEmptyInterfaces: true, DetectInterfaces: true}
	result, err := ExtractToString([]string{testdataPkg}, cfg)
	require.NoError(t, err)

	require.Contains(t, result, "Serializable")
	require.Contains(t, result, "Person")
}

func TestPersonInterfaceBecomesEnumOfItsImplementations(t *testing.T) {
	extractor := NewExtractor()
	reg, err := extractor.Extract(&ExtractorConfig{
		Config:   DefaultConfig(),
		Patterns: []string{testdataPkg},
	})
	require.NoError(t, err)

	cf, ok := reg.Get("Person")
	require.True(t, ok)
	enum, ok := cf.(*format.Enum)
	require.True(t, ok)

	names := make([]string, 0, len(enum.Variants))
	for _, idx := range enum.SortedIndices() {
		names = append(names, enum.Variants[idx].Name)
	}
	require.Contains(t, names, "User")
	require.Contains(t, names, "Admin")

	// Admin/User are folded into the Person enum, not also registered
	// standalone, since pkg/tracer's reflect-driven walk would never
	// encounter either as a top-level container outside the interface.
	require.False(t, reg.Has("Admin"))
}

func TestAddressContainerIsAStructWithVerbatimFieldNames(t *testing.T) {
	extractor := NewExtractor()
	reg, err := extractor.Extract(&ExtractorConfig{
		Config:   DefaultConfig(),
		Patterns: []string{testdataPkg},
	})
	require.NoError(t, err)

	cf, ok := reg.Get("Address")
	require.True(t, ok)
	st, ok := cf.(format.Struct)
	require.True(t, ok)

	names := make([]string, len(st.Fields))
	for i, f := range st.Fields {
		names[i] = f.Name
	}
	require.Equal(t, []string{"Street", "City", "Country", "ZipCode"}, names)
}
