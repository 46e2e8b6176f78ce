package comment

import (
	"net/url"
	"strconv"
)

// Query parameter names understood by GET /data.
const (
	ParamNumComments = "num-comments"
	ParamSortValue   = "sort-value"
	ParamSortOrder   = "sort-order"
)

// SortField is the comment attribute the backend sorts by.
type SortField string

// SortOrder is the direction the backend sorts in.
type SortOrder string

// Sort vocabulary known to this client. The backend may accept others.
const (
	SortTimestamp SortField = "timestamp"
	SortSentiment SortField = "sentiment"
	SortName      SortField = "name"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// FilterCriteria holds the visitor's display filters. Values are passed to the
// backend verbatim; an empty field means the control had no value.
type FilterCriteria struct {
	MaxCount  string
	SortField SortField
	SortOrder SortOrder
}

// NewFilterCriteria builds criteria from typed values.
func NewFilterCriteria(maxCount int, field SortField, order SortOrder) FilterCriteria {
	return FilterCriteria{
		MaxCount:  strconv.Itoa(maxCount),
		SortField: field,
		SortOrder: order,
	}
}

// Values returns the criteria as /data query parameters. Empty fields are omitted
// so the backend can apply its defaults.
func (f FilterCriteria) Values() url.Values {
	v := url.Values{}
	if f.MaxCount != "" {
		v.Set(ParamNumComments, f.MaxCount)
	}
	if f.SortField != "" {
		v.Set(ParamSortValue, string(f.SortField))
	}
	if f.SortOrder != "" {
		v.Set(ParamSortOrder, string(f.SortOrder))
	}
	return v
}

// FilterFromValues reads criteria from query parameters without validation.
func FilterFromValues(v url.Values) FilterCriteria {
	return FilterCriteria{
		MaxCount:  v.Get(ParamNumComments),
		SortField: SortField(v.Get(ParamSortValue)),
		SortOrder: SortOrder(v.Get(ParamSortOrder)),
	}
}
