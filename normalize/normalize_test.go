package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {

	tests := []struct {
		input    string
		expected string
	}{
		{"Brașov", "brasov"},
		{"  Cheile Bicazului ", "cheile bicazului"},
		{"SIGHIȘOARA", "sighisoara"},
		{"Târgu Mureș", "targu mures"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeFilename(t *testing.T) {

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"separators", "Cheile_Bicazului-2019.jpg", "cheile bicazului 2019"},
		{"directory", "/Trips/Romania/Lacul Roșu.JPEG", "lacul rosu"},
		{"dots", "bran.castle.morning.png", "bran castle morning"},
		{"repeated separators", "vama__veche--sunset.jpg", "vama veche sunset"},
		{"no extension", "Sibiu", "sibiu"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeFilename(tt.input))
		})
	}
}

func TestNormalizeFilenameIsDeterministic(t *testing.T) {

	name := "Mănăstirea_Voroneț-01.jpg"
	assert.Equal(t, NormalizeFilename(name), NormalizeFilename(name))
}

func TestQuery(t *testing.T) {

	assert.Equal(t, "transfagarasan", Query("IMG_20190812_Transfăgărășan.jpg"))
	assert.Equal(t, "", Query("IMG_1234.jpg"))
	assert.Equal(t, "lacul rosu dawn", Query("DSC_0042 Lacul Roșu dawn.jpg"))
	assert.Equal(t, "", Query("20190812.jpg"))
}
