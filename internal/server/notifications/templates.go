package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectCadastroRecebido = "Plantão Fácil — cadastro recebido"
	subjectContaAprovada    = "Plantão Fácil — conta aprovada"
	subjectContaRejeitada   = "Plantão Fácil — cadastro não aprovado"
	subjectResetSenha       = "Plantão Fácil — redefinição de senha"
)

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "cadastro_recebido"}}
<p>Olá,</p>
<p>Recebemos o seu cadastro no Plantão Fácil. Ele está pendente de aprovação
por um coordenador. Você receberá um email assim que a conta for liberada.</p>
<p>Equipe Plantão Fácil</p>
{{end}}

{{define "conta_aprovada"}}
<p>Olá{{if .Nome}}, {{.Nome}}{{end}},</p>
<p>Sua conta no Plantão Fácil foi aprovada. Você já pode entrar e se
inscrever nos plantões disponíveis.</p>
<p>Equipe Plantão Fácil</p>
{{end}}

{{define "conta_rejeitada"}}
<p>Olá{{if .Nome}}, {{.Nome}}{{end}},</p>
<p>Seu cadastro no Plantão Fácil não foi aprovado. Em caso de dúvida, entre
em contato com a coordenação do seu hospital.</p>
<p>Equipe Plantão Fácil</p>
{{end}}

{{define "reset_senha"}}
<p>Olá,</p>
<p>Recebemos um pedido para redefinir a sua senha. O link abaixo é válido
por tempo limitado e pode ser usado uma única vez:</p>
<p><a href="{{.ResetURL}}">Redefinir senha</a></p>
<p>Se você não pediu a redefinição, ignore este email.</p>
<p>Equipe Plantão Fácil</p>
{{end}}
`))

func renderEmail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.String(), nil
}

func smsCadastroPendente(email string) string {
	return fmt.Sprintf("Plantão Fácil: novo cadastro pendente de aprovação (%s).", email)
}
