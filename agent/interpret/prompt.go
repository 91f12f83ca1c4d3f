package interpret

import (
	"fmt"
	"strings"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/session"
)

const historyTurns = 10

// buildPrompt renders the shape-specific extraction prompt. Every prompt
// instructs the model to answer either with a grammar token or with plain
// conversational text that can be surfaced to the customer as-is.
func buildPrompt(sess *session.Session, utterance string, shape contract.Shape) string {
	var b strings.Builder

	b.WriteString("Você é um assistente virtual do Banco Ágil.\n")
	if shape.IncludeHistory {
		if h := sess.RecentHistory(historyTurns); h != "" {
			b.WriteString("\nHISTÓRICO RECENTE:\n")
			b.WriteString(h)
		}
	}
	fmt.Fprintf(&b, "\nMensagem do cliente: %q\n\n", utterance)

	switch shape.Kind {
	case contract.ShapeCPF:
		b.WriteString(`Extraia o CPF do cliente (11 dígitos, ignore pontos e traços).
Se encontrar, responda APENAS no formato: CPF:12345678900
Se não encontrar, responda com texto natural pedindo o CPF ou esclarecendo a necessidade da autenticação.`)
	case contract.ShapeBirthDate:
		b.WriteString(`Extraia a data de nascimento e normalize para AAAA-MM-DD.
Se encontrar, responda APENAS no formato: DATA:1990-05-15
Formatos aceitos: DD/MM/AAAA ou AAAA-MM-DD.
Se não encontrar, responda com texto natural pedindo a data no formato DD/MM/AAAA.`)
	case contract.ShapeIntent:
		b.WriteString(`Identifique a necessidade do cliente entre os agentes disponíveis:
- CREDITO → consulta de limite, aumento de limite, cartão de crédito
- CAMBIO → cotação de moedas (dólar, euro, libra, etc.)
- ENTREVISTA → entrevista financeira para atualizar o score
Se identificar, responda APENAS com o comando (CREDITO, CAMBIO ou ENTREVISTA).
Se não estiver claro, responda com texto natural pedindo esclarecimento, mencionando o que o cliente disse.`)
	case contract.ShapeCreditIntent:
		b.WriteString(`Você é o agente de crédito. Classifique a mensagem:
- CONSULTAR_LIMITE → cliente quer saber o limite atual
- SOLICITAR_AUMENTO:valor → cliente quer aumentar o limite (ex: SOLICITAR_AUMENTO:10000)
- CAMBIO → assunto é cotação de moedas
- ENTREVISTA → assunto é entrevista ou score
Se identificar, responda APENAS com o comando.
Se não estiver claro, responda com texto natural pedindo esclarecimento sobre crédito.`)
	case contract.ShapeYesNo:
		b.WriteString(`Você ofereceu uma entrevista de crédito ao cliente e aguarda a resposta.
- Se a mensagem aceita a ENTREVISTA explicitamente → responda APENAS: SIM
- Se a mensagem recusa → responda APENAS: NAO
- Se a mensagem fala de limite, valores ou outro assunto, NÃO é aceitação → responda APENAS: NAO_SEI`)
	case contract.ShapeInterviewField:
		writeFieldPrompt(&b, shape.Field)
	case contract.ShapeCurrency:
		b.WriteString(`Identifique a moeda desejada (USD, EUR, GBP, JPY, CHF, CAD, AUD, CNY, ARS, CLP, MXN).
Se identificar, responda APENAS no formato: MOEDA:USD
Se o assunto for crédito responda APENAS: CREDITO. Se for entrevista: ENTREVISTA.
Se não estiver claro, responda com texto natural perguntando qual moeda consultar.`)
	}
	return b.String()
}

func writeFieldPrompt(b *strings.Builder, field session.InterviewField) {
	switch field {
	case session.FieldIncome:
		b.WriteString(`Extraia a renda mensal do cliente como número.
Se encontrar, responda APENAS no formato: VALOR:8000
Reconheça multiplicadores ("8 mil" = 8000). Se não encontrar, responda com texto pedindo a renda mensal.`)
	case session.FieldExpenses:
		b.WriteString(`Extraia as despesas fixas mensais como número (pode ser 0; "nenhuma" = 0).
Se encontrar, responda APENAS no formato: VALOR:3000
Se não encontrar, responda com texto pedindo o valor das despesas fixas.`)
	case session.FieldEmployment:
		b.WriteString(`Classifique o tipo de emprego: formal, autonomo ou desempregado.
Mapeie "CLT"/"carteira assinada" → formal; "PJ"/"MEI"/"freelancer" → autonomo.
Se identificar, responda APENAS no formato: EMPREGO:formal
Se não identificar, responda com texto pedindo o tipo de emprego.`)
	case session.FieldDependents:
		b.WriteString(`Extraia o número de dependentes ("nenhum" = 0).
Se encontrar, responda APENAS no formato: DEPENDENTES:2
Se não encontrar, responda com texto pedindo quantos dependentes o cliente possui.`)
	case session.FieldHasDebt:
		b.WriteString(`O cliente possui dívidas ativas?
Responda APENAS DIVIDAS:SIM ou DIVIDAS:NAO.
Se não estiver claro, responda com texto perguntando se há dívidas ativas.`)
	}
}
