package postgrest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	testCases := []struct {
		name string
		spec FilterSpec
		want QueryParams
	}{
		{
			name: "bare column passes through",
			spec: FilterSpec{{Key: "id", Value: "eq.1"}},
			want: QueryParams{{Name: "id", Value: "eq.1"}},
		},
		{
			name: "input order is preserved",
			spec: FilterSpec{
				{Key: "id", Value: "lte.10"},
				{Key: "col1", Value: "eq.foo"},
			},
			want: QueryParams{
				{Name: "id", Value: "lte.10"},
				{Name: "col1", Value: "eq.foo"},
			},
		},
		{
			name: "jsonb marker extracts final segment as text",
			spec: FilterSpec{{Key: "col__jsonb__attr", Value: "eq.false"}},
			want: QueryParams{{Name: "col->>attr", Value: "eq.false"}},
		},
		{
			name: "jsonb marker with intermediate segments",
			spec: FilterSpec{{Key: "data__jsonb__a__b", Value: "eq.1"}},
			want: QueryParams{{Name: "data->a->>b", Value: "eq.1"}},
		},
		{
			name: "json marker stays as json",
			spec: FilterSpec{{Key: "data__json__a__b", Value: "eq.1"}},
			want: QueryParams{{Name: "data->a->b", Value: "eq.1"}},
		},
		{
			name: "underscored column without marker passes through",
			spec: FilterSpec{{Key: "created_at", Value: "gte.2024-01-01"}},
			want: QueryParams{{Name: "created_at", Value: "gte.2024-01-01"}},
		},
		{
			name: "double underscore without marker passes through",
			spec: FilterSpec{{Key: "a__b__c", Value: "eq.1"}},
			want: QueryParams{{Name: "a__b__c", Value: "eq.1"}},
		},
		{
			name: "reserved keys pass through",
			spec: FilterSpec{
				{Key: "select", Value: "id,name"},
				{Key: "order", Value: "id.desc"},
				{Key: "limit", Value: "10"},
				{Key: "offset", Value: "20"},
			},
			want: QueryParams{
				{Name: "select", Value: "id,name"},
				{Name: "order", Value: "id.desc"},
				{Name: "limit", Value: "10"},
				{Name: "offset", Value: "20"},
			},
		},
		{
			name: "empty spec compiles to empty params",
			spec: FilterSpec{},
			want: QueryParams{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compile(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Len(t, got, len(tc.spec))
		})
	}
}

func TestCompileRejectsDuplicateKeys(t *testing.T) {
	_, err := Compile(FilterSpec{
		{Key: "id", Value: "eq.1"},
		{Key: "id", Value: "eq.2"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate filter key")
}

func TestCompileRejectsEmptyKey(t *testing.T) {
	_, err := Compile(FilterSpec{{Key: "", Value: "eq.1"}})
	require.Error(t, err)
}

func TestQueryParamsEncode(t *testing.T) {
	testCases := []struct {
		name   string
		params QueryParams
		want   string
	}{
		{
			name:   "empty",
			params: nil,
			want:   "",
		},
		{
			name: "order preserved",
			params: QueryParams{
				{Name: "id", Value: "lte.10"},
				{Name: "col1", Value: "eq.foo"},
			},
			want: "id=lte.10&col1=eq.foo",
		},
		{
			name:   "json path arrows stay literal",
			params: QueryParams{{Name: "data->a->>b", Value: "eq.1"}},
			want:   "data->a->>b=eq.1",
		},
		{
			name:   "values are escaped",
			params: QueryParams{{Name: "name", Value: "eq.disk one"}},
			want:   "name=eq.disk+one",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.params.Encode())
		})
	}
}

func TestCompileThenEncode(t *testing.T) {
	spec := FilterSpec{
		{Key: "id", Value: "lte.10"},
		{Key: "col1", Value: "eq.foo"},
	}

	params, err := Compile(spec)
	require.NoError(t, err)
	assert.Equal(t, "id=lte.10&col1=eq.foo", params.Encode())
}
