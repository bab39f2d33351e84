package migrate

import (
	"testing"

	"belt-and-braces/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReformatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		timeRef string
		want    string
		wantErr bool
	}{
		{
			name:    "compact layout",
			timeRef: "20220904T192021Z",
			want:    "2022-09-04 19:20:21.000000 +00:00",
		},
		{
			name:    "iso layout",
			timeRef: "2022-09-04T19:20:21Z",
			want:    "2022-09-04 19:20:21.000000 +00:00",
		},
		{
			name:    "unknown layout",
			timeRef: "04.09.2022 19:20",
			wantErr: true,
		},
		{
			name:    "empty",
			timeRef: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReformatTimestamp(tt.timeRef)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertGroupsEntriesByTopic(t *testing.T) {
	entries := []Entry{
		{
			ID:        "1",
			Topic:     "thing",
			TimeRef:   "20220904T192021Z",
			Summary:   "the precious build",
			SourceURL: "https://example.com/vcs/branch/xyz/",
			Tag:       "2022.9.4",
			TargetURL: "https://example.com/brm/family/product/version/",
		},
		{
			ID:        "2",
			Topic:     "thing",
			TimeRef:   "2022-09-05T08:00:00Z",
			Summary:   "a later build",
			SourceURL: "https://example.com/vcs/branch/abc/",
			Tag:       "2022.9.5",
			TargetURL: "https://example.com/brm/family/product/next/",
		},
		{
			ID:        "3",
			Topic:     "other",
			TimeRef:   "20220101T000000Z",
			Summary:   "first of the year",
			SourceURL: "https://example.com/vcs/branch/new/",
			Tag:       "2022.1.1",
			TargetURL: "https://example.com/brm/family/other/version/",
		},
	}

	products, err := Convert(entries)
	require.NoError(t, err)
	require.Len(t, products, 2)

	thing := products["thing"]
	require.NotNil(t, thing)
	assert.Equal(t, "ABCD", thing.Family)
	assert.Equal(t, "thing", thing.Name)
	assert.Equal(t, "Explain me later.", thing.Description)
	require.Len(t, thing.Builds, 2)

	first, ok := thing.Builds[0]["1"]
	require.True(t, ok)
	assert.Equal(t, "the precious build", first.Description)
	assert.Equal(t, "2022-09-04 19:20:21.000000 +00:00", first.Timestamp)
	assert.Equal(t, domain.EmptySHA512, first.SHA512)

	second, ok := thing.Builds[1]["2"]
	require.True(t, ok)
	assert.Equal(t, "2022-09-05 08:00:00.000000 +00:00", second.Timestamp)

	other := products["other"]
	require.NotNil(t, other)
	require.Len(t, other.Builds, 1)
}

func TestConvertRejectsBadTimeRef(t *testing.T) {
	entries := []Entry{
		{ID: "9", Topic: "thing", TimeRef: "never"},
	}

	_, err := Convert(entries)
	assert.Error(t, err)
}

func TestConvertEmptyInput(t *testing.T) {
	products, err := Convert(nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}
