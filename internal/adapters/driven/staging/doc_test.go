package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName_RoundTrip(t *testing.T) {
	for _, id := range []string{
		"0a1b2c3d-0000-4000-8000-000000000001",
		"with/slash",
		"spaces and ünïcode",
		"50%",
		".hidden",
	} {
		t.Run(id, func(t *testing.T) {
			name := ObjectName(id)
			assert.NotContains(t, name, "/")
			assert.NotEqual(t, '.', name[0])

			got, ok := UUIDFromName(name)
			assert.True(t, ok)
			assert.Equal(t, id, got)
		})
	}
}

func TestUUIDFromName_Rejects(t *testing.T) {
	for _, name := range []string{"readme.txt", ".tmp-abc.xml", ".xml", "bad%zz.xml"} {
		t.Run(name, func(t *testing.T) {
			_, ok := UUIDFromName(name)
			assert.False(t, ok)
		})
	}
}
