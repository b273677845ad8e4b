// Package postgrest is a client for PostgREST-compatible HTTP APIs.
//
// It compiles declarative filter expressions into PostgREST's query-string
// grammar and maps JSON responses back into immutable Resource snapshots.
// The HTTP round-trip itself is delegated to a Transport; a default
// implementation lives in pkg/httputil.
//
// Filter values carry the PostgREST operator prefix verbatim:
//
//	Filter              | Query parameter
//	--------------------|------------------------------------------------
//	{"id", "eq.1"}      | id=eq.1
//	{"id", "lte.10"}    | id=lte.10
//	{"name", "like.*x*"}| name=like.*x*
//	{"done", "is.null"} | done=is.null
//	{"select", "a,b"}   | select=a,b (reserved key, passed through)
//	{"order", "a.desc"} | order=a.desc (reserved key, passed through)
//
// Keys may traverse JSON/JSONB columns. A double-underscore chain whose
// second segment is the marker "jsonb" extracts the final segment as text;
// the marker "json" keeps the whole path as JSON:
//
//	Key                  | Query parameter name
//	---------------------|---------------------
//	data__jsonb__done    | data->>done
//	data__jsonb__a__b    | data->a->>b
//	data__json__a__b     | data->a->b
//
// A key without a marker is used verbatim, so ordinary column names that
// happen to contain underscores keep working.
//
// Example usage:
//
//	desc := postgrest.Descriptor{
//		Table:       "tasks",
//		NaturalKeys: []string{"name"},
//		PrimaryKey: func(attrs map[string]any) postgrest.FilterSpec {
//			return postgrest.FilterSpec{{Key: "id", Value: fmt.Sprintf("eq.%v", attrs["id"])}}
//		},
//	}
//	client := postgrest.New("http://localhost:3000", desc, httputil.NewClient())
//	task, created, err := client.GetOrCreate(ctx, map[string]any{"name": "ship it"})
//
// The operator grammar is PostgREST's; this package treats operator values as
// opaque strings. For details, see:
// https://docs.postgrest.org/en/stable/references/api/tables_views.html
package postgrest
