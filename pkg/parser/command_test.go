package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwapCommand(t *testing.T) {
	req, err := ParseSwapCommand("100000000 EQabc to EQdef")
	require.NoError(t, err)
	assert.Equal(t, int64(100000000), req.AmountIn.Int64())
	assert.Equal(t, "EQabc", req.InputAsset)
	assert.Equal(t, "EQdef", req.OutputAsset)
}

func TestParseSwapCommandWithPrefix(t *testing.T) {
	req, err := ParseSwapCommand("swap 5 0xAbC to 0xDeF")
	require.NoError(t, err)
	assert.Equal(t, int64(5), req.AmountIn.Int64())
	assert.Equal(t, "0xAbC", req.InputAsset, "asset case must be preserved")
}

func TestParseSwapCommandInvalid(t *testing.T) {
	cases := []string{
		"",
		"EQabc to EQdef",
		"100 EQabc EQdef",
		"1.5 EQabc to EQdef", // fractional amounts are not smallest units
		"0 EQabc to EQdef",
		"-3 EQabc to EQdef",
	}
	for _, command := range cases {
		_, err := ParseSwapCommand(command)
		assert.Error(t, err, "command %q", command)
	}
}
