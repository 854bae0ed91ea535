package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$125", FormatPriceSF(124.6))
	assert.Equal(t, "$250,000", FormatPrice(250000))
	assert.Equal(t, "$1,325,500", FormatPrice(1325500))
	assert.Equal(t, "$0", FormatPrice(0))
	assert.Equal(t, "12,345", FormatCount(12345))
	assert.Equal(t, "7", FormatCount(7))
	assert.Equal(t, "1,850", FormatNumber(1849.7))
	assert.Equal(t, "1998", FormatYear(1998))
	assert.Equal(t, "25.0%", FormatPercent(0.25))
	assert.Equal(t, "-4.3%", FormatPercent(-0.0432))
}
