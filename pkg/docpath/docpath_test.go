package docpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacultyKey(t *testing.T) {
	key, err := Faculty("engineering", "computer-science", "sch-123")
	require.NoError(t, err)
	assert.Equal(t, "colleges/engineering/departments/computer-science/faculty/sch-123", key)
}

func TestEmptySegmentRejected(t *testing.T) {
	_, err := Faculty("engineering", "", "sch-123")
	require.Error(t, err)

	_, err = Department("  ", "computer-science")
	require.Error(t, err)
}

func TestSeparatorInSegmentRejected(t *testing.T) {
	_, err := Department("eng/neering", "cs")
	require.Error(t, err)
}

func TestErrorStopsChain(t *testing.T) {
	b := New("root").Child("").Child("later")
	_, err := b.String()
	require.Error(t, err)
}
