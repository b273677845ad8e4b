package postgrest

import "strings"

// OrderParam describes one column of an order clause.
type OrderParam struct {
	Column        string
	Direction     string // asc or desc; empty means server default (asc)
	NullsPosition string // first or last; empty means server default (last)
}

// Desc is a convenience constructor for descending order on a column.
func Desc(column string) OrderParam {
	return OrderParam{Column: column, Direction: "desc"}
}

// Asc is a convenience constructor for ascending order on a column.
func Asc(column string) OrderParam {
	return OrderParam{Column: column, Direction: "asc"}
}

// OrderBy builds the reserved "order" filter from the given columns, e.g.
// OrderBy(Desc("created_at"), Asc("id")) renders order=created_at.desc,id.asc.
func OrderBy(orders ...OrderParam) Filter {
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		part := o.Column
		if o.Direction != "" {
			part += "." + o.Direction
		}
		if o.NullsPosition != "" {
			part += ".nulls" + o.NullsPosition
		}
		parts = append(parts, part)
	}
	return Filter{Key: "order", Value: strings.Join(parts, ",")}
}

// Select builds the reserved "select" filter restricting returned columns.
func Select(columns ...string) Filter {
	return Filter{Key: "select", Value: strings.Join(columns, ",")}
}
