package domain

// historyCap bounds how many recently viewed product ids are kept.
const historyCap = 10

// ViewHistory holds recently viewed product ids, most recent first.
type ViewHistory []int

// Push returns the history with id at the front. Re-viewing an id moves it
// to the front instead of duplicating it; the result is capped at 10.
func (h ViewHistory) Push(id int) ViewHistory {
	out := make(ViewHistory, 0, len(h)+1)
	out = append(out, id)
	for _, v := range h {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) > historyCap {
		out = out[:historyCap]
	}
	return out
}

// Contains reports whether id was recently viewed.
func (h ViewHistory) Contains(id int) bool {
	for _, v := range h {
		if v == id {
			return true
		}
	}
	return false
}
