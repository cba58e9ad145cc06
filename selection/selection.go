package selection

import "rowlly_listings/models"

// ToggleFavorite adds id to favorites, or removes it if already present.
func ToggleFavorite(s models.SelectionState, id string) models.SelectionState {
	next := s.Clone()
	next.Favorites = toggle(next.Favorites, id, -1)
	return next
}

// ToggleCompare removes id from the compare list, or adds it when there is
// room. Adding to a full list returns the state unchanged.
func ToggleCompare(s models.SelectionState, id string) models.SelectionState {
	next := s.Clone()
	next.Compare = toggle(next.Compare, id, models.MaxCompare)
	return next
}

// Clear empties one of the two collections.
func Clear(s models.SelectionState, kind models.SelectionKind) models.SelectionState {
	next := s.Clone()
	switch kind {
	case models.SelectionFavorites:
		next.Favorites = []string{}
	case models.SelectionCompare:
		next.Compare = []string{}
	}
	return next
}

// CanAddToCompare reports whether toggling id into the compare list would
// take effect.
func CanAddToCompare(s models.SelectionState, id string) bool {
	return len(s.Compare) < models.MaxCompare || s.InCompare(id)
}

// toggle works on a slice the caller owns. capacity < 0 means unbounded.
func toggle(ids []string, id string, capacity int) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	if capacity >= 0 && len(ids) >= capacity {
		return ids
	}
	return append(ids, id)
}
