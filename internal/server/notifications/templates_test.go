package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmail_ResetSenha(t *testing.T) {
	body, err := renderEmail("reset_senha", map[string]string{
		"ResetURL": "https://app.example.com/reset-password?token=abc.def",
	})
	require.NoError(t, err)
	assert.Contains(t, body, `href="https://app.example.com/reset-password?token=abc.def"`)
	assert.Contains(t, body, "uma única vez")
}

func TestRenderEmail_ResetSenhaEscapesURL(t *testing.T) {
	body, err := renderEmail("reset_senha", map[string]string{
		"ResetURL": `https://x.com/?a="><script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, body, `"><script>`)
}

func TestRenderEmail_ContaAprovadaWithAndWithoutNome(t *testing.T) {
	body, err := renderEmail("conta_aprovada", map[string]string{"Nome": "Maria Silva"})
	require.NoError(t, err)
	assert.Contains(t, body, "Olá, Maria Silva,")

	body, err = renderEmail("conta_aprovada", map[string]string{})
	require.NoError(t, err)
	assert.Contains(t, body, "Olá,")
	assert.NotContains(t, body, "Olá, ,")
}

func TestRenderEmail_UnknownTemplate(t *testing.T) {
	_, err := renderEmail("nao_existe", nil)
	assert.Error(t, err)
}

func TestSMSCadastroPendente(t *testing.T) {
	msg := smsCadastroPendente("medico@hospital.com")
	assert.Contains(t, msg, "medico@hospital.com")
	assert.Contains(t, msg, "pendente")
}
