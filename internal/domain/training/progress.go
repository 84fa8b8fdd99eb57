package training

import (
	"fmt"
	"math"
)

// Topic is one of the fixed checklist keys.
type Topic string

const (
	TopicPaymentTiers         Topic = "paymentTiers"
	TopicImportantDates       Topic = "importantDates"
	TopicPaymentMethods       Topic = "paymentMethods"
	TopicComplementaryInfo    Topic = "complementaryInfo"
	TopicSchedules            Topic = "schedules"
	TopicStarterKit           Topic = "starterKit"
	TopicIndustryExplanation  Topic = "industryExplanation"
	TopicWorkTools            Topic = "workTools"
	TopicMonitorCommunication Topic = "monitorCommunication"
)

// TopicInfo pairs a checklist key with its display label.
type TopicInfo struct {
	Key   Topic
	Label string
}

// Topics is the checklist in display order.
var Topics = []TopicInfo{
	{TopicPaymentTiers, "Porcentajes de Pago"},
	{TopicImportantDates, "Fechas Importantes"},
	{TopicPaymentMethods, "Métodos de Pago"},
	{TopicComplementaryInfo, "Info. Complementaria"},
	{TopicSchedules, "Horarios"},
	{TopicStarterKit, "Kit Inicial"},
	{TopicIndustryExplanation, "Explicación Industria"},
	{TopicWorkTools, "Herramientas de Trabajo"},
	{TopicMonitorCommunication, "Comunicación con Monitor"},
}

// ParseTopic maps a wire name onto the checklist set.
func ParseTopic(name string) (Topic, error) {
	for _, t := range Topics {
		if string(t.Key) == name {
			return t.Key, nil
		}
	}
	return "", fmt.Errorf("%w: topic %q", ErrUnknownField, name)
}

// Label returns the display label of a topic, or the key itself when unknown.
func (t Topic) Label() string {
	for _, info := range Topics {
		if info.Key == t {
			return info.Label
		}
	}
	return string(t)
}

// Progress maps checklist keys to completion flags.
// Imported records may carry other keys; they are kept verbatim.
type Progress map[string]bool

// NewProgress returns a map with every topic present and false.
func NewProgress() Progress {
	p := make(Progress, len(Topics))
	for _, t := range Topics {
		p[string(t.Key)] = false
	}
	return p
}

// Clone returns an independent copy. A nil map stays nil.
func (p Progress) Clone() Progress {
	if p == nil {
		return nil
	}
	out := make(Progress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Toggle returns a copy with the topic flipped.
// INVARIANT: p is not modified
func (p Progress) Toggle(t Topic) Progress {
	out := p.Clone()
	if out == nil {
		out = NewProgress()
	}
	out[string(t)] = !out[string(t)]
	return out
}

// Completed counts the true entries.
func (p Progress) Completed() int {
	n := 0
	for _, v := range p {
		if v {
			n++
		}
	}
	return n
}

// CompletionRatio returns round(100 * true / total), or 0 for an empty map.
// PRE: none
// POST: result is in [0, 100]
func CompletionRatio(p Progress) int {
	if len(p) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.Completed()) / float64(len(p))))
}

// Split partitions the checklist labels into completed and pending, in display order.
func (p Progress) Split() (completed, pending []string) {
	for _, t := range Topics {
		if p[string(t.Key)] {
			completed = append(completed, t.Label)
		} else {
			pending = append(pending, t.Label)
		}
	}
	return completed, pending
}

// CheckKeys reports whether p holds exactly the fixed checklist keys.
func (p Progress) CheckKeys() error {
	if len(p) != len(Topics) {
		return fmt.Errorf("%w: progress has %d keys, want %d", ErrUnknownField, len(p), len(Topics))
	}
	for _, t := range Topics {
		if _, ok := p[string(t.Key)]; !ok {
			return fmt.Errorf("%w: progress missing %q", ErrUnknownField, t.Key)
		}
	}
	return nil
}
