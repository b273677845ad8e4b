package postgrest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderBy(t *testing.T) {
	testCases := []struct {
		name   string
		orders []OrderParam
		want   string
	}{
		{
			name:   "single descending column",
			orders: []OrderParam{Desc("created_at")},
			want:   "created_at.desc",
		},
		{
			name:   "mixed directions",
			orders: []OrderParam{Desc("created_at"), Asc("id")},
			want:   "created_at.desc,id.asc",
		},
		{
			name:   "server default direction",
			orders: []OrderParam{{Column: "name"}},
			want:   "name",
		},
		{
			name:   "nulls position",
			orders: []OrderParam{{Column: "done", Direction: "asc", NullsPosition: "first"}},
			want:   "done.asc.nullsfirst",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := OrderBy(tc.orders...)
			assert.Equal(t, "order", f.Key)
			assert.Equal(t, tc.want, f.Value)
		})
	}
}

func TestSelect(t *testing.T) {
	f := Select("id", "name", "done")
	assert.Equal(t, "select", f.Key)
	assert.Equal(t, "id,name,done", f.Value)
}
