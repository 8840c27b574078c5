package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_likeEscaper(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "phys", want: "phys"},
		{in: "100%", want: `100\%`},
		{in: "M_TH", want: `M\_TH`},
		{in: `a\b`, want: `a\\b`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, likeEscaper.Replace(tt.in))
		})
	}
}
