package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	id   string
	name string
}

func TestFilter(t *testing.T) {
	rows := []row{
		{"C-1", "first"},
		{"C-2", "second"},
		{"C-1", "duplicate, first wins"},
		{" C-3 ", "needs trim"},
		{"", "no key"},
		{"C-4", "already persisted"},
	}
	existing := Set([]string{"C-4", " C-5 "})

	got := Filter(rows, func(r row) string { return r.id }, existing)

	assert.Equal(t, []row{
		{"C-1", "first"},
		{"C-2", "second"},
		{" C-3 ", "needs trim"},
	}, got)
}

func TestFilter_Idempotence(t *testing.T) {
	rows := []row{{"A", ""}, {"B", ""}}

	first := Filter(rows, func(r row) string { return r.id }, Set(nil))
	assert.Len(t, first, 2)

	// after the first load the keys exist; the second pass inserts nothing
	loaded := make([]string, 0, len(first))
	for _, r := range first {
		loaded = append(loaded, r.id)
	}
	second := Filter(rows, func(r row) string { return r.id }, Set(loaded))
	assert.Empty(t, second)
}
