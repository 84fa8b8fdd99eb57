package training

import "fmt"

// InputKind selects the control used to edit a scalar field.
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputNumber   InputKind = "number"
	InputDate     InputKind = "date"
)

// FieldSpec declares one editable scalar of a fixed-shape substructure.
type FieldSpec struct {
	Section Section
	Key     string
	Label   string
	Kind    InputKind
}

// Fields is the catalog of editable scalars outside the tier list.
var Fields = []FieldSpec{
	{SectionImportantDates, "cutoffDate", "Fecha de Corte", InputText},
	{SectionImportantDates, "paymentDate", "Fecha de Pago", InputText},
	{SectionImportantDates, "paymentFrequency", "Frecuencia de Pago", InputText},
	{SectionPaymentMethods, "transfers", "Transferencias", InputTextarea},
	{SectionPaymentMethods, "availableBanks", "Bancos Disponibles", InputTextarea},
	{SectionPaymentMethods, "currencies", "Monedas", InputText},
	{SectionPaymentMethods, "dollarRate", "Tasa del Dólar del Estudio", InputText},
	{SectionComplementaryInfo, "modelObservations", "Observaciones de la Modelo", InputTextarea},
	{SectionComplementaryInfo, "internalPolicies", "Políticas Internas Básicas", InputTextarea},
	{SectionComplementaryInfo, "adminResponsibilities", "Responsabilidades Administrativas", InputTextarea},
	{SectionTrainerPanel, "modelName", "Nombre de la Modelo", InputText},
	{SectionTrainerPanel, "startDate", "Fecha de Inicio", InputDate},
	{SectionTrainerPanel, "internalNotes", "Notas Internas del Capacitador", InputTextarea},
}

// TierFields declares the editable scalars of a payment tier.
var TierFields = []FieldSpec{
	{SectionPaymentTiers, "percentage", "Nivel (%)", InputNumber},
	{SectionPaymentTiers, "explanation", "Explicación", InputText},
}

// FieldsOf returns the catalog entries for one section.
func FieldsOf(s Section) []FieldSpec {
	var out []FieldSpec
	for _, f := range Fields {
		if f.Section == s {
			out = append(out, f)
		}
	}
	return out
}

// LookupField finds a catalog entry.
func LookupField(s Section, key string) (FieldSpec, error) {
	for _, f := range Fields {
		if f.Section == s && f.Key == key {
			return f, nil
		}
	}
	return FieldSpec{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, s, key)
}

// FieldValue reads a scalar declared in Fields.
func (r Record) FieldValue(s Section, key string) (string, error) {
	switch s {
	case SectionImportantDates:
		switch key {
		case "cutoffDate":
			return r.ImportantDates.CutoffDate, nil
		case "paymentDate":
			return r.ImportantDates.PaymentDate, nil
		case "paymentFrequency":
			return r.ImportantDates.PaymentFrequency, nil
		}
	case SectionPaymentMethods:
		switch key {
		case "transfers":
			return r.PaymentMethods.Transfers, nil
		case "availableBanks":
			return r.PaymentMethods.AvailableBanks, nil
		case "currencies":
			return r.PaymentMethods.Currencies, nil
		case "dollarRate":
			return r.PaymentMethods.DollarRate, nil
		}
	case SectionComplementaryInfo:
		switch key {
		case "modelObservations":
			return r.ComplementaryInfo.ModelObservations, nil
		case "internalPolicies":
			return r.ComplementaryInfo.InternalPolicies, nil
		case "adminResponsibilities":
			return r.ComplementaryInfo.AdminResponsibilities, nil
		}
	case SectionTrainerPanel:
		switch key {
		case "modelName":
			return r.TrainerPanel.ModelName, nil
		case "startDate":
			return r.TrainerPanel.StartDate, nil
		case "internalNotes":
			return r.TrainerPanel.InternalNotes, nil
		}
	}
	return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, s, key)
}

// With returns a copy of d with one key replaced.
func (d ImportantDates) With(key, value string) (ImportantDates, error) {
	switch key {
	case "cutoffDate":
		d.CutoffDate = value
	case "paymentDate":
		d.PaymentDate = value
	case "paymentFrequency":
		d.PaymentFrequency = value
	default:
		return d, fmt.Errorf("%w: %s.%s", ErrUnknownField, SectionImportantDates, key)
	}
	return d, nil
}

// With returns a copy of m with one key replaced.
func (m PaymentMethods) With(key, value string) (PaymentMethods, error) {
	switch key {
	case "transfers":
		m.Transfers = value
	case "availableBanks":
		m.AvailableBanks = value
	case "currencies":
		m.Currencies = value
	case "dollarRate":
		m.DollarRate = value
	default:
		return m, fmt.Errorf("%w: %s.%s", ErrUnknownField, SectionPaymentMethods, key)
	}
	return m, nil
}

// With returns a copy of c with one key replaced.
func (c ComplementaryInfo) With(key, value string) (ComplementaryInfo, error) {
	switch key {
	case "modelObservations":
		c.ModelObservations = value
	case "internalPolicies":
		c.InternalPolicies = value
	case "adminResponsibilities":
		c.AdminResponsibilities = value
	default:
		return c, fmt.Errorf("%w: %s.%s", ErrUnknownField, SectionComplementaryInfo, key)
	}
	return c, nil
}

// With returns a copy of p with one string key replaced.
// hasExperience is toggled separately and is not accepted here.
func (p TrainerPanel) With(key, value string) (TrainerPanel, error) {
	switch key {
	case "modelName":
		p.ModelName = value
	case "startDate":
		p.StartDate = value
	case "internalNotes":
		p.InternalNotes = value
	default:
		return p, fmt.Errorf("%w: %s.%s", ErrUnknownField, SectionTrainerPanel, key)
	}
	return p, nil
}

// With returns a copy of t with one key replaced.
func (t PaymentTier) With(key, value string) (PaymentTier, error) {
	switch key {
	case "percentage":
		t.Percentage = value
	case "explanation":
		t.Explanation = value
	default:
		return t, fmt.Errorf("%w: %s.%s", ErrUnknownField, SectionPaymentTiers, key)
	}
	return t, nil
}
