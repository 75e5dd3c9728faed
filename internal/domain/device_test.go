package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDeviceName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"cpc prefix", "User reports issues on CPC-AB12345 since Monday", "CPC-AB12345"},
		{"laptop prefix", "slow boot LAPTOP-9XYZ lately", "LAPTOP-9XYZ"},
		{"desktop lowercase", "reimage desktop-0441 please", "desktop-0441"},
		{"workstation", "WS-104-A unreachable over VPN", "WS-104-A"},
		{"no match", "printer on the 3rd floor jams", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDeviceName(tt.text))
		})
	}
}

func TestNormalizeCompliance(t *testing.T) {
	assert.Equal(t, ComplianceStateCompliant, NormalizeCompliance("compliant"))
	assert.Equal(t, ComplianceStateNonCompliant, NormalizeCompliance("noncompliant"))
	assert.Equal(t, ComplianceStateInGracePeriod, NormalizeCompliance("inGracePeriod"))
	assert.Equal(t, ComplianceStateUnknown, NormalizeCompliance("whatever"))
}
