package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{27509, "remaining: 7h 38min 29s"},
		{3600, "remaining: 1h 00min 00s"},
		{3599, "remaining: 59min 59s"},
		{65, "remaining: 01min 05s"},
		{59, "remaining: 59s"},
		{5, "remaining: 05s"},
		{0, "remaining: 00s"},
		{-3, "remaining: 00s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.seconds))
		})
	}
}
