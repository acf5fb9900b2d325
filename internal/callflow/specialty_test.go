package callflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSpecialty(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"dermatology", "dermatology", true},
		{"I have a skin problem", "dermatology", true},
		{"something with my heart", "cardiology", true},
		{"it's for my child", "pediatrics", true},
		{"I think I have a fracture", "traumatology", true},
		{"an eye exam", "ophthalmology", true},
		{"just a general checkup", "general medicine", true},
		{"dentist", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := matchSpecialty(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
