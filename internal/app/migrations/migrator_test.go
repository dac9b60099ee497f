package migrations

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"001_init.sql", "001"},
		{"sql/002_add_index.sql", "002"},
		{"003.sql", "003.sql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Version(tt.file), tt.file)
	}
}

func TestFilesAreSortedAndEmbedded(t *testing.T) {
	m := NewMigrator(nil, zerolog.Nop())

	files, err := m.Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_init.sql", files[0])
	assert.IsIncreasing(t, files)
}
