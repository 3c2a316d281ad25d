package twin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesCatalog(t *testing.T) {
	t.Parallel()

	cat := Profiles()
	require.NotEmpty(t, cat.Judges)
	require.NotEmpty(t, cat.Opposing)

	for _, j := range cat.Judges {
		assert.NotEmpty(t, j.Name)
		for _, score := range []int{
			j.Characteristics.PleadingStrictness,
			j.Characteristics.PrecedentWeight,
			j.Characteristics.PolicyReceptivity,
			j.Characteristics.PlaintiffFriendly,
		} {
			assert.GreaterOrEqual(t, score, 1, "judge %s", j.Name)
			assert.LessOrEqual(t, score, 10, "judge %s", j.Name)
		}
	}
	for _, o := range cat.Opposing {
		assert.NotEmpty(t, o.Name)
		assert.GreaterOrEqual(t, o.AggressivenessScore, 1)
		assert.LessOrEqual(t, o.AggressivenessScore, 10)
	}
}

func TestJudgeByName(t *testing.T) {
	t.Parallel()

	j, ok := JudgeByName("Hon. Sarah Mitchell")
	require.True(t, ok)
	assert.Equal(t, 8, j.Characteristics.PrecedentWeight)

	// Case-insensitive.
	_, ok = JudgeByName("hon. sarah mitchell")
	assert.True(t, ok)

	_, ok = JudgeByName("Hon. Nobody")
	assert.False(t, ok)

	_, ok = JudgeByName("")
	assert.False(t, ok)
}

func TestOpposingByName(t *testing.T) {
	t.Parallel()

	o, ok := OpposingByName("ADA Rachel Tormey")
	require.True(t, ok)
	assert.Equal(t, 8, o.AggressivenessScore)

	_, ok = OpposingByName("Unknown Firm")
	assert.False(t, ok)
}

func TestJudgePromptBlock(t *testing.T) {
	t.Parallel()

	j, ok := JudgeByName("Hon. Marcus Keenan")
	require.True(t, ok)

	block := j.PromptBlock()
	assert.Contains(t, block, "Judge Profile (Hon. Marcus Keenan)")
	assert.Contains(t, block, "Pleading Strictness: 8/10")
	assert.Contains(t, block, "Precedent Weight: 7/10")
	assert.Contains(t, block, "Policy Receptivity: 3/10")
	assert.Contains(t, block, "Plaintiff Friendly: 5/10")
	assert.Contains(t, block, "Notes:")
}

func TestOpposingPromptBlock(t *testing.T) {
	t.Parallel()

	o, ok := OpposingByName("ADA Paul Nakamura")
	require.True(t, ok)

	block := o.PromptBlock()
	assert.Contains(t, block, "Opposing Counsel Profile (ADA Paul Nakamura)")
	assert.Contains(t, block, "Aggressiveness: 5/10")
	assert.Contains(t, block, "Typical Arguments: The statutory standard is objective")
	assert.Contains(t, block, "Likely Moves:")
}

func TestPromptContext(t *testing.T) {
	t.Parallel()

	pc := PromptContext("Hon. Sarah Mitchell", "Miller & Associates LLP")
	assert.Contains(t, pc.JudgeProfile, "Hon. Sarah Mitchell")
	assert.Contains(t, pc.OpposingProfile, "Miller & Associates LLP")

	// Unknown names degrade to empty blocks rather than failing.
	pc = PromptContext("Hon. Nobody", "")
	assert.Empty(t, pc.JudgeProfile)
	assert.Empty(t, pc.OpposingProfile)
}
