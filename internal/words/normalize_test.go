package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase", input: "ESTRELA", want: "estrela"},
		{name: "strip diacritics", input: "Constelação", want: "constelacao"},
		{name: "strip cedilla and tilde", input: "açúcar", want: "acucar"},
		{name: "trim spaces", input: "  sol  ", want: "sol"},
		{name: "hyphen kept", input: "Arco-Íris", want: "arco-iris"},
		{name: "digits and punctuation removed", input: "lua!!! 42", want: "lua"},
		{name: "inner whitespace kept", input: "primeiros socorros", want: "primeiros socorros"},
		{name: "empty", input: "", want: ""},
		{name: "only spaces", input: "   \t ", want: ""},
		{name: "only punctuation", input: "?!.,", want: ""},
		{name: "non latin letters kept", input: "Ωmega", want: "ωmega"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Céu Estrelado", "  Ação-Rápida ", "ÁÉÍÓÚ ãõ ç", "x", "", "Ωmega!", "naïve résumé"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFirstToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "Estrela cadente", want: "estrela"},
		{input: "   lua   cheia ", want: "lua"},
		{input: "sol", want: "sol"},
		{input: "", want: ""},
		{input: "  ", want: ""},
		{input: "123 galáxia", want: "galaxia"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstToken(tt.input), "input %q", tt.input)
	}
}
