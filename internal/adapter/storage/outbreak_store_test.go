package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "plain fragment untouched",
			fragment: "avian influenza - India",
			want:     "avian influenza - India",
		},
		{
			name:     "percent sign quoted",
			fragment: "Avian influenza kills 30% of flock",
			want:     `Avian influenza kills 30\% of flock`,
		},
		{
			name:     "underscore quoted",
			fragment: "foot_and_mouth - Brazil",
			want:     `foot\_and\_mouth - Brazil`,
		},
		{
			name:     "backslash quoted before wildcards",
			fragment: `50\% culled`,
			want:     `50\\\% culled`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.fragment))
		})
	}
}
