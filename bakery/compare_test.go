package bakery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLess(t *testing.T) {
	tests := []struct {
		name   string
		ta     Ticket
		a      ID
		tb     Ticket
		b      ID
		expect bool
	}{
		{"lower ticket wins", 1, 9, 2, 0, true},
		{"higher ticket loses", 3, 0, 2, 9, false},
		{"tie broken by lower id", 4, 1, 4, 2, true},
		{"tie broken against higher id", 4, 2, 4, 1, false},
		{"identical pair is not less", 4, 2, 4, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Less(tt.ta, tt.a, tt.tb, tt.b))
		})
	}
}

// No two distinct participants may each see the other as lower, whatever
// tickets they hold.
func TestLessIsStrictTotalOrder(t *testing.T) {
	for ta := Ticket(0); ta < 4; ta++ {
		for tb := Ticket(0); tb < 4; tb++ {
			for a := ID(0); a < 4; a++ {
				for b := ID(0); b < 4; b++ {
					ab, ba := Less(ta, a, tb, b), Less(tb, b, ta, a)
					if ta == tb && a == b {
						assert.False(t, ab)
						continue
					}
					assert.True(t, ab != ba, "(%d,%d) vs (%d,%d)", ta, a, tb, b)
				}
			}
		}
	}
}
