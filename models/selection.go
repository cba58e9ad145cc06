package models

import "fmt"

// MaxCompare is the capacity of the compare list.
const MaxCompare = 3

// SelectionKind names one of the two persisted selections
type SelectionKind string

const (
	SelectionFavorites SelectionKind = "favorites"
	SelectionCompare   SelectionKind = "compare"
)

func ParseSelectionKind(s string) (SelectionKind, error) {
	switch SelectionKind(s) {
	case SelectionFavorites, SelectionCompare:
		return SelectionKind(s), nil
	}
	return "", fmt.Errorf("unknown selection %q", s)
}

// SelectionState holds a client's favorites and compare list in insertion order.
type SelectionState struct {
	Favorites []string `json:"favorites"`
	Compare   []string `json:"compare"`
}

func (s SelectionState) IsFavorite(id string) bool {
	return contains(s.Favorites, id)
}

func (s SelectionState) InCompare(id string) bool {
	return contains(s.Compare, id)
}

// Clone returns a copy that shares no backing arrays with s.
func (s SelectionState) Clone() SelectionState {
	return SelectionState{
		Favorites: append([]string{}, s.Favorites...),
		Compare:   append([]string{}, s.Compare...),
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
