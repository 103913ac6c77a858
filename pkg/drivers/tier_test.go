package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHighTier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Unlimited Data Plan", true},
		{"UNLIMITED talk & text", true},
		{"60GB Plan", true},
		{"Prepaid 51gb monthly", true},
		{"50GB Plan", false},
		{"40GB Plan", false},
		{"Plan 40 GB", false},
		{"Starter", false},
		{"", false},
		{"99999999999999999999999gb", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHighTier(tt.name), "IsHighTier(%q)", tt.name)
	}
}

func TestAllowance(t *testing.T) {
	gb, unlimited, ok := Allowance("Max 75GB + 5GB roaming")
	assert.True(t, ok)
	assert.False(t, unlimited)
	assert.Equal(t, 75, gb)

	_, unlimited, ok = Allowance("Unlimited")
	assert.True(t, ok)
	assert.True(t, unlimited)

	_, _, ok = Allowance("no allowance")
	assert.False(t, ok)
}

func TestIsValueTier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Basic 5GB", true},
		{"SuperSAVE bundle", true},
		{"Family 4All", true},
		{"Lifeline Assist", true},
		{"Premium 100GB", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValueTier(tt.name), "IsValueTier(%q)", tt.name)
	}
}
