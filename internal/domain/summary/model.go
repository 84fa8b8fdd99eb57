package summary

import (
	"fmt"
	"strings"

	"momentum/internal/domain/training"
)

// MaxWords bounds the length requested from the generator.
const MaxWords = 150

// Input is everything the generator sees about a trainee.
type Input struct {
	ModelName     string
	StartDate     string
	HasExperience bool
	Completed     []string
	Pending       []string
	InternalNotes string
}

// NewInput extracts the summary input from a record.
// PRE: none
// POST: Completed and Pending together hold every checklist label exactly once
func NewInput(rec training.Record) Input {
	completed, pending := rec.Progress.Split()
	return Input{
		ModelName:     rec.TrainerPanel.ModelName,
		StartDate:     rec.TrainerPanel.StartDate,
		HasExperience: rec.TrainerPanel.HasExperience,
		Completed:     completed,
		Pending:       pending,
		InternalNotes: rec.TrainerPanel.InternalNotes,
	}
}

// Total returns the number of checklist topics covered by the input.
func (in Input) Total() int {
	return len(in.Completed) + len(in.Pending)
}

// Prompt renders the instruction text sent to the generator.
func Prompt(in Input) string {
	experience := "No"
	if in.HasExperience {
		experience = "Sí"
	}
	notes := strings.TrimSpace(in.InternalNotes)
	if notes == "" {
		notes = "No hay notas adicionales."
	}

	var b strings.Builder
	b.WriteString("Actúa como un capacitador profesional para modelos webcam. ")
	b.WriteString("Genera un resumen conciso y profesional del progreso de la capacitación para la siguiente modelo:\n\n")
	fmt.Fprintf(&b, "- **Nombre:** %s\n", in.ModelName)
	fmt.Fprintf(&b, "- **Fecha de Inicio:** %s\n", in.StartDate)
	fmt.Fprintf(&b, "- **Tiene Experiencia:** %s\n\n", experience)
	b.WriteString("**Progreso de la Capacitación:**\n")
	fmt.Fprintf(&b, "- **Temas Completados (%d/%d):**\n%s", len(in.Completed), in.Total(), bulletList(in.Completed))
	fmt.Fprintf(&b, "- **Temas Pendientes (%d/%d):**\n%s\n", len(in.Pending), in.Total(), bulletList(in.Pending))
	fmt.Fprintf(&b, "**Notas Internas del Capacitador:**\n\"%s\"\n\n", notes)
	b.WriteString("**Instrucciones para el resumen:**\n")
	b.WriteString("1. Comienza con un saludo y el nombre de la modelo.\n")
	b.WriteString("2. Menciona el estado general de su progreso.\n")
	b.WriteString("3. Destaca los temas que ya domina y las áreas que aún necesitan trabajo.\n")
	b.WriteString("4. Incorpora las notas internas para dar un toque más personal al resumen.\n")
	b.WriteString("5. Finaliza con una recomendación o siguiente paso claro.\n")
	fmt.Fprintf(&b, "6. El resumen debe ser claro, directo, estar en español y no exceder las %d palabras.\n", MaxWords)
	return b.String()
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "  - Ninguno\n"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("  - ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}
