package critic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const validObject = `{"completeness":5,"quality":4,"robustness":3,"consistency":2,"specificity":1,"feedback":"ok"}`

func TestNormalize_Fenced(t *testing.T) {
	cases := map[string]string{
		"json fence":       "```json\n" + validObject + "\n```",
		"upper json fence": "```JSON\n" + validObject + "\n```",
		"bare fence":       "```\n" + validObject + "\n```",
		"no fence":         validObject,
		"padded":           "  \n\t" + validObject + "\n\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			c := Normalize(input)
			assert.True(t, c.Found())
			assert.Equal(t, validObject, c.JSON)
		})
	}
}

func TestNormalize_SurroundingProse(t *testing.T) {
	input := "Here is my evaluation:\n\n" + validObject + "\n\nHope this helps!"

	c := Normalize(input)

	assert.True(t, c.Found())
	assert.Equal(t, validObject, c.JSON)
}

func TestNormalize_FirstOpenLastClose(t *testing.T) {
	input := `a {"x":1} b {"y":2} c`

	c := Normalize(input)

	assert.True(t, c.Found())
	assert.Equal(t, `{"x":1} b {"y":2}`, c.JSON)
}

func TestNormalize_NoCandidate(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not json at all",
		"```json\n```",
		"only an opening { brace",
		"only a closing } brace",
		"} reversed {",
		"[1, 2, 3]",
	}

	for _, input := range inputs {
		c := Normalize(input)
		assert.False(t, c.Found(), "input %q", input)
		assert.Equal(t, NoCandidate, c)
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```Json {\"a\":1}```"))
	assert.Equal(t, "plain text", StripFences("  plain text  "))
	assert.Equal(t, "", StripFences("```"))
}

func TestIsFinal(t *testing.T) {
	assert.True(t, IsFinal(validObject))
	assert.True(t, IsFinal("```json\n"+validObject+"\n```"))
	assert.True(t, IsFinal(`{"papers": []}`))

	assert.False(t, IsFinal("Let me search for that."))
	assert.False(t, IsFinal(`[{"title":"x"}]`))
	assert.False(t, IsFinal(`{"unterminated": }`))
	assert.False(t, IsFinal("Result: "+validObject))
	assert.False(t, IsFinal(""))
}
