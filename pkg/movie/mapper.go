package movie

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/omdb-catalog/pkg/omdb"
)

// ErrDataShape matches every *FieldError.
var ErrDataShape = errors.New("omdb payload has unexpected shape")

// FieldError reports a missing or mistyped provider field.
type FieldError struct {
	Field string
	// Reason is "missing" or a type description.
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("omdb payload field %q: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrDataShape.
func (e *FieldError) Is(target error) bool {
	return target == ErrDataShape
}

// Provider field names read by MapDetail.
const (
	FieldExternalID = "imdbID"
	FieldTitle      = "Title"
	FieldYear       = "Year"
	FieldGenre      = "Genre"
	FieldReleased   = "Released"
	FieldLanguage   = "Language"
	FieldDirector   = "Director"
	FieldWriter     = "Writer"
	FieldActors     = "Actors"
	FieldSearch     = "Search"
)

// MapDetail builds a Movie from a detail lookup. Every field must be present
// as a string; values are copied verbatim. Year becomes nil unless it is a
// plain integer. On error the zero Movie is returned.
func MapDetail(p omdb.Payload) (Movie, error) {
	var fields [9]string
	names := [9]string{
		FieldExternalID, FieldTitle, FieldYear,
		FieldGenre, FieldReleased, FieldLanguage,
		FieldDirector, FieldWriter, FieldActors,
	}
	for i, name := range names {
		s, err := stringField(p, name)
		if err != nil {
			return Movie{}, err
		}
		fields[i] = s
	}

	return Movie{
		ExternalID: fields[0],
		Title:      fields[1],
		Year:       parseYear(fields[2]),
		Genre:      fields[3],
		Released:   fields[4],
		Language:   fields[5],
		Director:   fields[6],
		Writer:     fields[7],
		Actors:     fields[8],
	}, nil
}

// SearchIDs returns the external identifiers of a search page in provider
// order.
func SearchIDs(p omdb.Payload) ([]string, error) {
	raw, ok := p[FieldSearch]
	if !ok {
		return nil, &FieldError{Field: FieldSearch, Reason: "missing"}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &FieldError{Field: FieldSearch, Reason: fmt.Sprintf("want array, got %T", raw)}
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, &FieldError{
				Field:  fmt.Sprintf("%s[%d]", FieldSearch, i),
				Reason: fmt.Sprintf("want object, got %T", item),
			}
		}
		id, err := stringField(entry, FieldExternalID)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fe.Field = fmt.Sprintf("%s[%d].%s", FieldSearch, i, fe.Field)
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func stringField(p map[string]any, name string) (string, error) {
	raw, ok := p[name]
	if !ok {
		return "", &FieldError{Field: name, Reason: "missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{Field: name, Reason: fmt.Sprintf("want string, got %T", raw)}
	}
	return s, nil
}

// parseYear accepts a plain base-10 integer; "N/A", ranges like "2019–2022"
// and empty strings yield nil.
func parseYear(s string) *int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil
	}
	y := int32(n)
	return &y
}
