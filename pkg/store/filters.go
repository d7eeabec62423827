package store

import (
	"fmt"
	"sort"
	"strings"
)

// Filters selects one page of an ordered listing.
type Filters struct {
	Page    int
	PerPage int
}

// DefaultFilters returns the first page of ten.
func DefaultFilters() Filters {
	return Filters{Page: 1, PerPage: 10}
}

// ValidationError maps a parameter name to a problem with its value.
type ValidationError map[string]string

// Error implements the error interface.
func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "invalid filters: " + strings.Join(parts, ", ")
}

// Validate checks the page bounds.
func (f Filters) Validate() error {
	errs := ValidationError{}
	if f.Page <= 0 {
		errs["page"] = "must be greater than zero"
	}
	if f.Page > 10_000_000 {
		errs["page"] = "must be a maximum of 10 million"
	}
	if f.PerPage <= 0 {
		errs["perpage"] = "must be greater than zero"
	}
	if f.PerPage > 100 {
		errs["perpage"] = "must be a maximum of 100"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f Filters) limit() int {
	return f.PerPage
}

func (f Filters) offset() int {
	return (f.Page - 1) * f.PerPage
}

// Metadata describes the page returned by a listing.
type Metadata struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// calculateMetadata derives page counts from the total row count.
func calculateMetadata(total int, f Filters) Metadata {
	pages := 0
	if total > 0 {
		pages = (total + f.PerPage - 1) / f.PerPage
	}
	return Metadata{
		Page:  f.Page,
		Pages: pages,
		Size:  f.PerPage,
		Total: total,
	}
}
