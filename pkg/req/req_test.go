package req

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Bet   string `json:"bet"`
	Skill int    `json:"skill"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	p, err := Decode[payload](strings.NewReader(`{"bet":"10.50","skill":7}`))
	require.NoError(t, err)
	assert.Equal(t, payload{Bet: "10.50", Skill: 7}, p)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"empty":         "",
		"malformed":     `{"bet":`,
		"unknown field": `{"bet":"1","extra":true}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode[payload](strings.NewReader(body))
			require.Error(t, err)
		})
	}
}
