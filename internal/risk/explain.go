package risk

import (
	"math"
	"sort"
)

// Attributions below this magnitude are treated as noise and dropped from the
// explanation list.
const attributionNoiseFloor = 0.01

// DefaultTopN caps how many explanations a response carries.
const DefaultTopN = 8

// featureLabels maps model features to the human-readable labels shown to
// clients. Features without a label fall back to the raw feature code.
var featureLabels = map[string]string{
	"LBXWBCSI": "Лейкоциты (WBC)",
	"LBXLYPCT": "Лимфоциты (%)",
	"LBXMOPCT": "Моноциты (%)",
	"LBXNEPCT": "Нейтрофилы (%)",
	"LBXEOPCT": "Эозинофилы (%)",
	"LBXBAPCT": "Базофилы (%)",
	"LBXRBCSI": "Эритроциты (RBC)",
	"LBXHGB":   "Гемоглобин",
	"LBXHCT":   "Гематокрит (HCT)",
	"LBXMCVSI": "Средний объем эритроцита (MCV)",
	"LBXMC":    "Содержание гемоглобина в эритроците (MCH)",
	"LBXMCHSI": "Концентрация гемоглобина (MCHC)",
	"LBXRDW":   "Ширина распределения эритроцитов (RDW)",
	"LBXPLTSI": "Тромбоциты (PLT)",
	"LBXMPSI":  "Средний объем тромбоцита (MPV)",
	"RIAGENDR": "Пол",
	"RIDAGEYR": "Возраст",
	"LBXSGL":   "Глюкоза",
	"LBXSCH":   "Холестерин",
	"BMXBMI":   "Индекс массы тела (ИМТ)",
	"BMXHT":    "Рост",
	"BMXWT":    "Вес",
	"BMXWAIST": "Окружность талии",
	"BP_SYS":   "Систолическое давление",
	"BP_DIA":   "Диастолическое давление",
}

var negativeNarratives = map[string]string{
	"LBXRDW":   "Профиль RDW вносит вклад в снижение индекса железа и может быть связан с дефицитным паттерном.",
	"LBXHGB":   "Уровень гемоглобина в текущем профиле уменьшает оценку запасов железа.",
	"LBXMCVSI": "MCV в текущем профиле сдвигает прогноз в сторону более низкого индекса железа.",
	"LBXMC":    "MCH в текущем профиле связан со снижением итоговой оценки железа.",
	"LBXMCHSI": "MCHC в текущем профиле снижает прогнозируемый индекс железа.",
}

var positiveNarratives = map[string]string{
	"BMXBMI":   "Текущий ИМТ в модели повышает расчетный индекс железа.",
	"LBXWBCSI": "Профиль лейкоцитов в модели увеличивает итоговый индекс железа.",
	"LBXPLTSI": "Текущее значение тромбоцитов вносит положительный вклад в индекс железа.",
}

const (
	genericNegativeNarrative = "Этот показатель снижает итоговый индекс железа в модели."
	genericPositiveNarrative = "Этот показатель повышает итоговый индекс железа в модели."
)

// Explanation is one ranked, human-readable attribution record.
type Explanation struct {
	Feature   string  `json:"feature"`
	Label     string  `json:"label"`
	Impact    float64 `json:"impact"`
	Direction string  `json:"direction"`
	Text      string  `json:"text"`
}

// narrativeFor picks the per-feature narrative template, falling back to a
// generic sentence for unmapped features.
func narrativeFor(feature, direction string) string {
	if direction == "negative" {
		if text, ok := negativeNarratives[feature]; ok {
			return text
		}
		return genericNegativeNarrative
	}
	if text, ok := positiveNarratives[feature]; ok {
		return text
	}
	return genericPositiveNarrative
}

func labelFor(feature string) string {
	if label, ok := featureLabels[feature]; ok {
		return label
	}
	return feature
}

func toExplanation(a Attribution) Explanation {
	direction := "positive"
	if a.Impact < 0 {
		direction = "negative"
	}
	return Explanation{
		Feature:   a.Feature,
		Label:     labelFor(a.Feature),
		Impact:    round4(a.Impact),
		Direction: direction,
		Text:      narrativeFor(a.Feature, direction),
	}
}

// Explanations ranks the model's attributions for a payload: noise-floor
// filtered, sorted ascending by impact, then the most negative and most
// positive contributions concatenated and capped at topN total.
func (e *Engine) Explanations(p *LabPayload, topN int) []Explanation {
	if topN <= 0 {
		topN = DefaultTopN
	}
	attrs := e.model.Explain(buildVector(e.features, p.Sparse()))

	if !e.trained {
		// Reduced fallback set: the three formula terms, lowest impact first.
		sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Impact < attrs[j].Impact })
		out := make([]Explanation, 0, len(attrs))
		for _, a := range attrs {
			out = append(out, toExplanation(a))
		}
		return out
	}

	var kept []Attribution
	for _, a := range attrs {
		if math.Abs(a.Impact) < attributionNoiseFloor {
			continue
		}
		kept = append(kept, a)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Impact < kept[j].Impact })

	var negative, positive []Explanation
	for _, a := range kept {
		if a.Impact < 0 {
			negative = append(negative, toExplanation(a))
		} else {
			positive = append(positive, toExplanation(a))
		}
	}
	if len(negative) > topN {
		negative = negative[:topN]
	}
	if len(positive) > topN {
		positive = positive[:topN]
	}
	out := append(negative, positive...)
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
