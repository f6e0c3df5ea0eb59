package choices

// ViewState records whether this is the first sample a reader has seen of
// an instance since the instance last became ALIVE.
type ViewState uint8

const (
	New ViewState = iota
	NotNew
)

func (v ViewState) String() string {
	switch v {
	case New:
		return "NEW"
	case NotNew:
		return "NOT_NEW"
	default:
		return "INVALID_VIEW_STATE"
	}
}

// Valid reports whether v is one of the defined ViewState values.
func (v ViewState) Valid() bool {
	switch v {
	case New, NotNew:
		return true
	default:
		return false
	}
}
