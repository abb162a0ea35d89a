package ai

import (
	"fmt"
	"strings"
)

const SystemConsultant = "Eres un consultor experto en subvenciones públicas españolas y europeas. " +
	"Redactas en español de España, con tono técnico, preciso y persuasivo, sin inventar datos que no se te hayan dado."

// ProjectBrief carries the project and client facts every report prompt needs.
type ProjectBrief struct {
	ProjectName         string
	CallName            string
	FundingBody         string
	RequestedAmount     float64
	ClientName          string
	ClientSector        string
	ClientSize          string
	ClientRegion        string
	ClientDescription   string
	WritingInstructions string
}

func (b ProjectBrief) write(sb *strings.Builder) {
	sb.WriteString("Datos del proyecto:\n")
	fmt.Fprintf(sb, "- Proyecto: %s\n", b.ProjectName)
	if b.CallName != "" {
		fmt.Fprintf(sb, "- Convocatoria: %s\n", b.CallName)
	}
	if b.FundingBody != "" {
		fmt.Fprintf(sb, "- Organismo convocante: %s\n", b.FundingBody)
	}
	if b.RequestedAmount > 0 {
		fmt.Fprintf(sb, "- Importe solicitado: %.2f EUR\n", b.RequestedAmount)
	}
	sb.WriteString("\nDatos del cliente:\n")
	fmt.Fprintf(sb, "- Empresa: %s\n", b.ClientName)
	if b.ClientSector != "" {
		fmt.Fprintf(sb, "- Sector: %s\n", b.ClientSector)
	}
	if b.ClientSize != "" {
		fmt.Fprintf(sb, "- Tamaño: %s\n", b.ClientSize)
	}
	if b.ClientRegion != "" {
		fmt.Fprintf(sb, "- Comunidad autónoma: %s\n", b.ClientRegion)
	}
	if b.ClientDescription != "" {
		fmt.Fprintf(sb, "- Descripción: %s\n", b.ClientDescription)
	}
}

func writeBases(sb *strings.Builder, bases string) {
	sb.WriteString("\nExtractos de las bases de la convocatoria:\n")
	if strings.TrimSpace(bases) == "" {
		sb.WriteString("(no hay extractos disponibles)\n")
		return
	}
	sb.WriteString(bases)
	sb.WriteString("\n")
}

// ViabilityPrompt asks for the eligibility report as JSON.
func ViabilityPrompt(b ProjectBrief, bases string) Prompt {
	var sb strings.Builder
	sb.WriteString("Evalúa si el cliente puede optar a la convocatoria y con qué probabilidad de éxito.\n\n")
	b.write(&sb)
	writeBases(&sb, bases)
	sb.WriteString(`
Responde SOLO con un objeto JSON con esta forma:
{"score": 0-100, "eligible": true|false, "summary": "...",
 "requirements": [{"requirement": "...", "met": true|false, "comment": "..."}],
 "risks": ["..."], "recommendations": ["..."]}`)
	return Prompt{System: SystemConsultant, User: sb.String(), JSON: true}
}

// ReviewPrompt asks for a review of the current memoria técnica as JSON.
func ReviewPrompt(b ProjectBrief, memoria string) Prompt {
	var sb strings.Builder
	sb.WriteString("Revisa la memoria técnica siguiente como lo haría un evaluador de la convocatoria.\n\n")
	b.write(&sb)
	sb.WriteString("\nMemoria técnica:\n")
	sb.WriteString(memoria)
	sb.WriteString(`

Responde SOLO con un objeto JSON con esta forma:
{"overall_score": 0-100, "strengths": ["..."], "weaknesses": ["..."],
 "suggestions": [{"section": "...", "suggestion": "..."}]}`)
	return Prompt{System: SystemConsultant, User: sb.String(), JSON: true}
}

// SummaryPrompt asks for a plain-text summary of the call bases.
func SummaryPrompt(b ProjectBrief, bases string) Prompt {
	var sb strings.Builder
	sb.WriteString("Resume las bases de la convocatoria para el equipo consultor: objeto, beneficiarios, ")
	sb.WriteString("gastos subvencionables, cuantía, plazos y criterios de valoración.\n\n")
	b.write(&sb)
	writeBases(&sb, bases)
	return Prompt{System: SystemConsultant, User: sb.String()}
}

// SectionsPrompt asks for a first draft of the memoria técnica sections as JSON.
func SectionsPrompt(b ProjectBrief, bases string) Prompt {
	var sb strings.Builder
	sb.WriteString("Propón la estructura de la memoria técnica con un primer borrador de cada apartado.\n\n")
	b.write(&sb)
	if b.WritingInstructions != "" {
		sb.WriteString("\nInstrucciones de redacción:\n")
		sb.WriteString(b.WritingInstructions)
		sb.WriteString("\n")
	}
	writeBases(&sb, bases)
	sb.WriteString(`
Responde SOLO con un objeto JSON con esta forma:
{"sections": [{"title": "...", "content": "..."}]}`)
	return Prompt{System: SystemConsultant, User: sb.String(), JSON: true}
}
