package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
)

const allowedImage = "https://artifacts.example.com/eifs/base_v1_amd64.eif"

func newTestFilter(t *testing.T) *MetadataFilter {
	t.Helper()
	filter, err := NewMetadataFilter(MetadataFilterOptions{
		AllowedImages: []string{allowedImage, "https://artifacts.example.com/eifs/base_v1_arm64.eif"},
	})
	require.NoError(t, err)
	return filter
}

func TestNewMetadataFilterRequiresAllowList(t *testing.T) {
	t.Parallel()

	_, err := NewMetadataFilter(MetadataFilterOptions{})
	require.Error(t, err)

	_, err = NewMetadataFilter(MetadataFilterOptions{AllowedImages: []string{"  ", ""}})
	require.Error(t, err)
}

func TestMetadataFilterEvaluate(t *testing.T) {
	t.Parallel()

	filter := newTestFilter(t)

	cases := []struct {
		name     string
		metadata string
		inScope  bool
		region   string
	}{
		{
			name:     "allowed image in scope",
			metadata: `{"url":"` + allowedImage + `","region":"us-east"}`,
			inScope:  true,
			region:   "us-east",
		},
		{
			name:     "unparseable metadata out of scope",
			metadata: `{not json`,
			inScope:  false,
		},
		{
			name:     "missing image url out of scope",
			metadata: `{"region":"us-east"}`,
			inScope:  false,
		},
		{
			name:     "unlisted image out of scope",
			metadata: `{"url":"https://evil.example.com/other.eif"}`,
			inScope:  false,
		},
		{
			name:     "allowed image without region",
			metadata: `{"url":"` + allowedImage + `"}`,
			inScope:  true,
			region:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			meta, ok := filter.Evaluate(model.JobEvent{JobID: "0xabc123", Metadata: tc.metadata})
			assert.Equal(t, tc.inScope, ok)
			if tc.inScope {
				require.NotNil(t, meta)
				assert.Equal(t, tc.region, meta.RegionOrDefault())
			} else {
				assert.Nil(t, meta)
			}
		})
	}
}
