package postgrest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskDescriptor = Descriptor{
	Table:       "tasks",
	NaturalKeys: []string{"name"},
	PrimaryKey: func(attrs map[string]any) FilterSpec {
		return FilterSpec{{Key: "id", Value: fmt.Sprintf("eq.%v", attrs["id"])}}
	},
}

func TestResourceAttr(t *testing.T) {
	r := newResource(&taskDescriptor, map[string]any{"id": float64(1), "name": "a"})

	v, ok := r.Attr("name")
	require.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = r.Attr("missing")
	assert.False(t, ok)
}

func TestResourceAttrsReturnsCopy(t *testing.T) {
	r := newResource(&taskDescriptor, map[string]any{"id": float64(1)})

	attrs := r.Attrs()
	attrs["id"] = float64(99)

	v, _ := r.Attr("id")
	assert.Equal(t, float64(1), v, "mutating the copy must not touch the snapshot")
}

func TestResourceDecodeInto(t *testing.T) {
	type task struct {
		ID   int    `mapstructure:"id"`
		Name string `mapstructure:"name"`
		Done bool   `mapstructure:"done"`
	}

	r := newResource(&taskDescriptor, map[string]any{
		"id":   float64(7),
		"name": "rotate certificates",
		"done": true,
	})

	var got task
	require.NoError(t, r.DecodeInto(&got))
	assert.Equal(t, task{ID: 7, Name: "rotate certificates", Done: true}, got)
}

func TestResourceAsTime(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  time.Time
		fails bool
	}{
		{
			name:  "without fractional seconds",
			value: "2024-03-01T09:30:00+00:00",
			want:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "with fractional seconds",
			value: "2024-03-02T11:15:42.123456+00:00",
			want:  time.Date(2024, 3, 2, 11, 15, 42, 123456000, time.UTC),
		},
		{
			name:  "without zone offset",
			value: "2024-03-02T11:15:42.123456",
			want:  time.Date(2024, 3, 2, 11, 15, 42, 123456000, time.UTC),
		},
		{
			name:  "not a timestamp",
			value: "yesterday",
			fails: true,
		},
		{
			name:  "not a string",
			value: float64(42),
			fails: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newResource(&taskDescriptor, map[string]any{"created_at": tc.value})
			got, err := r.AsTime("created_at")
			if tc.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %v, got %v", tc.want, got)
		})
	}

	t.Run("missing attribute", func(t *testing.T) {
		r := newResource(&taskDescriptor, map[string]any{})
		_, err := r.AsTime("created_at")
		require.Error(t, err)
	})
}

func TestResourceSame(t *testing.T) {
	a := newResource(&taskDescriptor, map[string]any{"id": float64(1), "name": "a"})
	b := newResource(&taskDescriptor, map[string]any{"id": float64(1), "name": "renamed"})
	c := newResource(&taskDescriptor, map[string]any{"id": float64(2), "name": "a"})

	assert.True(t, a.Same(b), "same primary key means same row")
	assert.False(t, a.Same(c))
	assert.False(t, a.Same(nil))
}

func TestResourceSameWithoutPrimaryKey(t *testing.T) {
	desc := Descriptor{Table: "tasks"}
	a := newResource(&desc, map[string]any{"id": float64(1)})
	b := newResource(&desc, map[string]any{"id": float64(1)})
	assert.False(t, a.Same(b), "no primary-key extractor means identity is unknown")
}
