package linksep_test

import (
	"testing"

	"github.com/fwojciec/linksep"
	"github.com/stretchr/testify/assert"
)

func TestSubstringTarget_Match(t *testing.T) {
	t.Parallel()

	target := linksep.SubstringTarget(linksep.DefaultTarget)

	t.Run("matches anchor href", func(t *testing.T) {
		t.Parallel()
		assert.True(t, target.Match(`<a href="/wiki/Kevin_Bacon">Kevin Bacon</a>`))
	})

	t.Run("matches plain text mention", func(t *testing.T) {
		t.Parallel()
		assert.True(t, target.Match(`<p>see /wiki/Kevin_Bacon for details</p>`))
	})

	t.Run("does not match other pages", func(t *testing.T) {
		t.Parallel()
		assert.False(t, target.Match(`<a href="/wiki/Kevin_Costner">Kevin Costner</a>`))
	})

	t.Run("empty target never matches", func(t *testing.T) {
		t.Parallel()
		assert.False(t, linksep.SubstringTarget("").Match("anything"))
	})
}
