package volunteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalViolations(t *testing.T) {
	v := Volunteer{LatenessCount: 2, WarningsCount: 1}
	assert.Equal(t, 3, v.TotalViolations())
}

func TestParseEditableField(t *testing.T) {
	for _, name := range []string{"full_name", "contacts"} {
		field, err := ParseEditableField(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(field))
	}

	for _, name := range []string{"status", "lateness_count", "", "full_name; DROP TABLE volunteers"} {
		_, err := ParseEditableField(name)
		assert.Error(t, err, name)
	}
}
