package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperatorForPhone(t *testing.T) {
	tests := []struct {
		phone    string
		expected string
	}{
		{"0961234567", OperatorMTN},
		{"0761234567", OperatorMTN},
		{"260961234567", OperatorMTN},
		{"+260761234567", OperatorMTN},
		{"0951234567", OperatorZamtel},
		{"0751234567", OperatorZamtel},
		{"+260951234567", OperatorZamtel},
		{"0971234567", OperatorAirtel},
		{"0771234567", OperatorAirtel},
		{"260971234567", OperatorAirtel},
		{"+260 97 123 4567", OperatorAirtel},
		{"", OperatorAirtel}, // default
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.expected, OperatorForPhone(tt.phone))
		})
	}
}
