package progression

// comboBonuses are the flat XP bonuses awarded the moment the combo count
// crosses each threshold. A bonus is paid once per crossing: staying at or
// above a tier does not pay it again, but re-reaching the threshold after a
// reset does.
var comboBonuses = map[int]int64{
	3:  5,
	5:  10,
	10: 25,
	20: 50,
}

// ComboTracker counts consecutive correct answers within a session and maps
// the count to a reward multiplier. It is transient state: combos are never
// persisted in the progress snapshot and vanish with the session.
//
// The tracker is not safe for concurrent use; the owning service guards it.
type ComboTracker struct {
	current int
}

// NewComboTracker returns a tracker with no accumulated combo.
func NewComboTracker() *ComboTracker {
	return &ComboTracker{}
}

// RecordCorrect increments the combo and returns the flat bonus XP earned by
// this answer, which is non-zero only when a threshold was just crossed.
func (c *ComboTracker) RecordCorrect() int64 {
	c.current++
	return comboBonuses[c.current]
}

// RecordWrong resets the combo after an incorrect answer.
func (c *ComboTracker) RecordWrong() {
	c.current = 0
}

// Reset clears the combo, e.g. when a session ends.
func (c *ComboTracker) Reset() {
	c.current = 0
}

// Current returns the current consecutive-correct count.
func (c *ComboTracker) Current() int {
	return c.current
}

// Multiplier returns the reward multiplier for the current combo tier.
func (c *ComboTracker) Multiplier() float64 {
	switch {
	case c.current >= 20:
		return 2.5
	case c.current >= 10:
		return 2.0
	case c.current >= 5:
		return 1.5
	case c.current >= 3:
		return 1.2
	default:
		return 1.0
	}
}
