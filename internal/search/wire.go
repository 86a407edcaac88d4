package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Wire format: a flat string dictionary in indexed bracket notation.
//
//	filters[i][fields]  comma-separated OR fields (required per index)
//	filters[i][op]      operator code (required per index)
//	filters[i][val]     omitted for null/notnull
//	filters[i][case]    "true" forces case sensitivity
//	sortings[i][prop]   raw property name (required per index)
//	sortings[i][ord]    asc|desc
//	skip, take          paging, both or neither

// ToDictionary serializes the parameters into the flat wire dictionary.
func (sp *SearchParameters) ToDictionary() map[string]string {
	dict := map[string]string{}
	for i, f := range sp.Filters {
		prefix := fmt.Sprintf("filters[%d]", i)
		dict[prefix+"[fields]"] = strings.Join(f.Fields, ",")
		dict[prefix+"[op]"] = f.Operator.Code()
		if f.Operator.HasValue() {
			dict[prefix+"[val]"] = f.Value
		}
		if f.CaseSensitive {
			dict[prefix+"[case]"] = "true"
		}
	}
	for i, s := range sp.Sortings {
		prefix := fmt.Sprintf("sortings[%d]", i)
		dict[prefix+"[prop]"] = s.PropertyName
		dict[prefix+"[ord]"] = s.Direction.Code()
	}
	if sp.Paging != nil {
		dict["skip"] = strconv.Itoa(sp.Paging.Skip)
		dict["take"] = strconv.Itoa(sp.Paging.Take)
	}
	return dict
}

// FromDictionary parses the flat wire dictionary. A filter or sorting index
// that is present but misses a required sub-key fails with
// ErrMalformedDictionary.
func FromDictionary(dict map[string]string) (*SearchParameters, error) {
	sp := &SearchParameters{}

	filterIdx, sortingIdx := collectIndexes(dict)

	for _, i := range filterIdx {
		prefix := fmt.Sprintf("filters[%d]", i)
		rawFields, ok := dict[prefix+"[fields]"]
		if !ok || strings.TrimSpace(rawFields) == "" {
			return nil, fmt.Errorf("%w: %s[fields] is required", ErrMalformedDictionary, prefix)
		}
		code, ok := dict[prefix+"[op]"]
		if !ok {
			return nil, fmt.Errorf("%w: %s[op] is required", ErrMalformedDictionary, prefix)
		}
		op, err := ParseOperator(code)
		if err != nil {
			return nil, err
		}

		var fields []string
		for _, f := range strings.Split(rawFields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: %s[fields] is empty", ErrMalformedDictionary, prefix)
		}

		filter := Filter{Fields: fields, Operator: op}
		if op.HasValue() {
			filter.Value = dict[prefix+"[val]"]
		}
		if raw, ok := dict[prefix+"[case]"]; ok {
			forced, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[case]: %v", ErrMalformedDictionary, prefix, err)
			}
			filter.CaseSensitive = forced
		}
		sp.Filters = append(sp.Filters, filter)
	}

	for _, i := range sortingIdx {
		prefix := fmt.Sprintf("sortings[%d]", i)
		prop, ok := dict[prefix+"[prop]"]
		if !ok || strings.TrimSpace(prop) == "" {
			return nil, fmt.Errorf("%w: %s[prop] is required", ErrMalformedDictionary, prefix)
		}
		dir, err := ParseDirection(dict[prefix+"[ord]"])
		if err != nil {
			return nil, err
		}
		sp.Sortings = append(sp.Sortings, Sorting{PropertyName: prop, Direction: dir})
	}

	rawSkip, hasSkip := dict["skip"]
	rawTake, hasTake := dict["take"]
	if hasSkip || hasTake {
		if !hasTake {
			return nil, fmt.Errorf("%w: take is required when skip is set", ErrMalformedDictionary)
		}
		skip := 0
		if hasSkip {
			parsed, err := strconv.Atoi(rawSkip)
			if err != nil {
				return nil, fmt.Errorf("%w: skip: %v", ErrMalformedDictionary, err)
			}
			skip = parsed
		}
		take, err := strconv.Atoi(rawTake)
		if err != nil {
			return nil, fmt.Errorf("%w: take: %v", ErrMalformedDictionary, err)
		}
		paging, err := NewPaging(skip, take)
		if err != nil {
			return nil, err
		}
		sp.Paging = &paging
	}

	return sp, nil
}

// collectIndexes extracts the sorted distinct index sets for filters[...]
// and sortings[...] keys.
func collectIndexes(dict map[string]string) (filters, sortings []int) {
	fset := map[int]bool{}
	sset := map[int]bool{}
	for key := range dict {
		if i, ok := bracketIndex(key, "filters"); ok {
			fset[i] = true
		} else if i, ok := bracketIndex(key, "sortings"); ok {
			sset[i] = true
		}
	}
	for i := range fset {
		filters = append(filters, i)
	}
	for i := range sset {
		sortings = append(sortings, i)
	}
	sort.Ints(filters)
	sort.Ints(sortings)
	return filters, sortings
}

func bracketIndex(key, group string) (int, bool) {
	if !strings.HasPrefix(key, group+"[") {
		return 0, false
	}
	rest := key[len(group)+1:]
	end := strings.IndexByte(rest, ']')
	if end <= 0 {
		return 0, false
	}
	i, err := strconv.Atoi(rest[:end])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
