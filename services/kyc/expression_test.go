package kyc_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/services/kyc"
)

func staticLookup(tags map[string][]string) kyc.TagLookup {
	return func(org string, tag string) ([]string, error) {
		key := org + "." + tag
		if key == "Broken.tag" {
			return nil, fmt.Errorf("lookup failed")
		}
		return tags[key], nil
	}
}

func TestParseExpression(t *testing.T) {
	lookup := staticLookup(map[string][]string{
		"Huobi.level":   {"A", "B"},
		"Huobi.country": {"CN"},
	})

	cases := map[string]bool{
		"Huobi.level@A":                                    true,
		"Huobi.level@C":                                    false,
		"Huobi.age@NULL":                                   true,
		"Huobi.level@NULL":                                 false,
		"Huobi.level@C || Huobi.country@CN":                true,
		"Huobi.level@A && Huobi.country@US":                false,
		"Huobi.level@C || Huobi.level@B && Huobi.age@NULL": true,
		"(Huobi.level@C || Huobi.level@B) && Huobi.age@X":  false,
		"((Huobi.level@A))":                                true,
		// short-circuit: the failing lookup is never reached
		"Huobi.level@A || Broken.tag@x": true,
		"Huobi.level@C && Broken.tag@x": false,
	}

	for input, expected := range cases {
		expr, err := kyc.ParseExpression(input)
		require.NoError(t, err, input)

		result, err := expr.Eval(lookup)
		require.NoError(t, err, input)
		assert.Equal(t, expected, result, input)
	}
}

func TestParseExpression_Precedence(t *testing.T) {
	expr, err := kyc.ParseExpression("a.b@c || d.e@f && g.h@i")
	require.NoError(t, err)
	assert.Equal(t, "(a.b@c || (d.e@f && g.h@i))", expr.String())
}

func TestParseExpression_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"Huobi.level",
		"Huobi@A",
		".level@A",
		"Huobi.level@",
		"Huobi.le vel@A",
		"Huobi.level@A &&",
		"Huobi.level@A & Huobi.level@B",
		"(Huobi.level@A",
		"Huobi.level@A)",
		"Huobi.level@A Huobi.level@B",
		"Huobi.lev$el@A",
	}

	for _, input := range inputs {
		_, err := kyc.ParseExpression(input)
		assert.Error(t, err, input)
	}
}

func TestExpression_LookupError(t *testing.T) {
	expr, err := kyc.ParseExpression("Broken.tag@x")
	require.NoError(t, err)

	_, err = expr.Eval(staticLookup(nil))
	assert.Error(t, err)
}
