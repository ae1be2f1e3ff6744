package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "veras-goods", Slugify("Vera's Goods"))
	assert.Equal(t, "rosies-yarn", Slugify("Rosie’s Yarn"))
	assert.Equal(t, "camping-gear-2", Slugify("  Camping -- Gear 2 "))
	assert.Equal(t, "", Slugify("!!!"))
}
