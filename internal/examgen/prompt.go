package examgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `Actúa como un Preparador de Oposiciones para TAI (Técnicos Auxiliares de Informática) con 20 años de experiencia.

INSTRUCCIONES DE ESTILO:
- Las preguntas deben ser técnicas, precisas y desafiantes, nivel real de oposición.
- Cada pregunta tiene exactamente 4 opciones y una sola correcta.
- La EXPLICACIÓN debe ser DIDÁCTICA y DETALLADA:
    1. Confirma por qué la opción correcta es acertada (fundamento técnico/teórico).
    2. Explica brevemente por qué las otras opciones son incorrectas (trampas típicas, conceptos confusos).
- En "refutations" escribe, para cada opción en orden, por qué es incorrecta. Deja vacía la de la opción correcta.
- No repitas ninguna pregunta de la lista "Ya preguntadas".

CRITERIO DE CONTEXTO:
Si hay TEXTO DE CONTEXTO, úsalo como fuente primaria. Si no, usa el temario oficial actual.`

const noContext = "NO HAY CONTEXTO ESPECÍFICO. Genera preguntas variadas del temario general."

// buildUserMessage constructs the per-batch request.
func buildUserMessage(in BatchInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Genera un examen tipo test de %d preguntas.\n", in.Count)
	fmt.Fprintf(&b, "Dificultad: %s\n", in.Difficulty)
	if in.Topic != "" {
		fmt.Fprintf(&b, "Tema: %s\n", in.Topic)
	}
	if in.Mode == ModeSimulacro {
		b.WriteString("Reparte las preguntas entre todos los temas del contexto.\n")
	}

	b.WriteString("\nYa preguntadas en este examen:\n")
	b.WriteString(buildDedup(in.Prior, cfg.MaxPriorQuestions))

	if ctx := truncateRunes(strings.TrimSpace(in.Context), cfg.MaxContextChars); ctx != "" {
		b.WriteString("\n\nTEXTO DE CONTEXTO (Resumido):\n")
		b.WriteString(ctx)
	} else {
		b.WriteString("\n\n")
		b.WriteString(noContext)
	}

	return b.String()
}

// buildDedup formats prior prompts, keeping the most recent max.
// Returns "Ninguna" when there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "Ninguna"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
