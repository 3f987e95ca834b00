package models

import (
	"fmt"
	"strings"
)

// SearchType is the retrieval mode requested by the caller.
type SearchType string

const (
	SearchSemantic SearchType = "semantic"
	SearchKeyword  SearchType = "keyword"
	SearchHybrid   SearchType = "hybrid"
)

// ParseSearchType normalizes s into a [SearchType], defaulting to [SearchHybrid] when s is empty.
func ParseSearchType(s string) (SearchType, error) {
	switch SearchType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return SearchHybrid, nil
	case SearchSemantic:
		return SearchSemantic, nil
	case SearchKeyword:
		return SearchKeyword, nil
	case SearchHybrid:
		return SearchHybrid, nil
	default:
		return "", fmt.Errorf("unknown search type %q (want semantic, keyword or hybrid)", s)
	}
}
