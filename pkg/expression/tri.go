package expression

// Tri is a three-valued logic outcome.
type Tri int8

const (
	Unknown Tri = iota
	False
	True
)

// TriOf maps a raw engine value onto Tri. The second result is false when the
// value is neither a boolean nor nil.
func TriOf(value any) (Tri, bool) {
	switch v := value.(type) {
	case nil:
		return Unknown, true
	case bool:
		if v {
			return True, true
		}
		return False, true
	default:
		return Unknown, false
	}
}

// Collapse narrows a three-valued outcome to a concrete boolean. Unknown
// collapses to false; every gating resolver goes through this function.
func (t Tri) Collapse() bool {
	return t == True
}

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}
