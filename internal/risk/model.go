package risk

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"strings"
)

// FeatureVector is one observation in canonical feature order. Absent fields
// carry NaN as the missing-value sentinel; zero is a legitimate measurement
// and must never stand in for "not measured".
type FeatureVector struct {
	names  []string
	values []float64
}

// Get returns the value for a feature name and whether it is present.
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range v.names {
		if n == name {
			if math.IsNaN(v.values[i]) {
				return 0, false
			}
			return v.values[i], true
		}
	}
	return 0, false
}

// getOr returns the feature value or def when the feature is absent.
func (v FeatureVector) getOr(name string, def float64) float64 {
	if x, ok := v.Get(name); ok {
		return x
	}
	return def
}

// buildVector normalizes the payload, derives BMI from height and weight when
// BMI itself is absent, and lays the result out in fixed feature order.
func buildVector(features []string, fields Fields) FeatureVector {
	f := Normalize(fields)

	if _, ok := f["BMXBMI"]; !ok {
		ht, okHT := f["BMXHT"]
		wt, okWT := f["BMXWT"]
		if okHT && okWT && ht > 0 && wt > 0 {
			m := ht / 100
			f["BMXBMI"] = wt / (m * m)
		}
	}

	v := FeatureVector{
		names:  features,
		values: make([]float64, len(features)),
	}
	for i, name := range features {
		if x, ok := f[name]; ok {
			v.values[i] = x
		} else {
			v.values[i] = math.NaN()
		}
	}
	// Gender is accepted by the API and persisted upstream, but is not sent
	// into model scoring.
	for i, name := range features {
		if name == "RIAGENDR" {
			v.values[i] = math.NaN()
		}
	}
	return v
}

// Attribution is a signed per-feature contribution to the iron index.
type Attribution struct {
	Feature string
	Impact  float64
}

// Model scores a feature vector and attributes the score to its inputs. The
// trained artifact and the built-in fallback are interchangeable behind this
// interface.
type Model interface {
	Score(v FeatureVector) float64
	Explain(v FeatureVector) []Attribution
}

// artifactFile is the on-disk layout of an exported scoring artifact: a linear
// surrogate of the trained regressor with per-feature weights and baselines.
type artifactFile struct {
	ModelName string             `json:"model_name"`
	Bias      float64            `json:"bias"`
	Weights   map[string]float64 `json:"weights"`
	Baselines map[string]float64 `json:"baselines"`
}

// trainedArtifact implements Model on top of a loaded artifact file.
type trainedArtifact struct {
	bias      float64
	weights   map[string]float64
	baselines map[string]float64
}

func (m *trainedArtifact) Score(v FeatureVector) float64 {
	score := m.bias
	for _, a := range m.contributions(v) {
		score += a.Impact
	}
	return score
}

// contributions computes the signed per-feature impact relative to the
// feature's training baseline. Absent features contribute exactly zero.
func (m *trainedArtifact) contributions(v FeatureVector) []Attribution {
	var out []Attribution
	for _, name := range v.names {
		w, ok := m.weights[name]
		if !ok {
			continue
		}
		x, present := v.Get(name)
		if !present {
			out = append(out, Attribution{Feature: name})
			continue
		}
		out = append(out, Attribution{Feature: name, Impact: w * (x - m.baselines[name])})
	}
	return out
}

func (m *trainedArtifact) Explain(v FeatureVector) []Attribution {
	return m.contributions(v)
}

// Defaults used by the fallback formula when a field is absent. These are the
// physiological mid-range values the formula was tuned against.
const (
	fallbackDefaultHGB = 120
	fallbackDefaultMCV = 85
	fallbackDefaultRDW = 14
)

// fallbackHeuristic is the deterministic linear formula used when no trained
// artifact is loadable, so the service degrades in accuracy rather than
// availability.
type fallbackHeuristic struct{}

func (fallbackHeuristic) terms(v FeatureVector) []Attribution {
	return []Attribution{
		{Feature: "LBXHGB", Impact: 0.10 * v.getOr("LBXHGB", fallbackDefaultHGB)},
		{Feature: "LBXMCVSI", Impact: 0.08 * v.getOr("LBXMCVSI", fallbackDefaultMCV)},
		{Feature: "LBXRDW", Impact: -0.20 * v.getOr("LBXRDW", fallbackDefaultRDW)},
	}
}

func (h fallbackHeuristic) Score(v FeatureVector) float64 {
	score := -7.0
	for _, t := range h.terms(v) {
		score += t.Impact
	}
	return score
}

func (h fallbackHeuristic) Explain(v FeatureVector) []Attribution {
	return h.terms(v)
}

// loadModel reads the scoring artifact from path. A missing or unreadable
// artifact is not an error: it selects the fallback heuristic, and the
// returned flag reports which path was taken.
func loadModel(path string) (Model, bool) {
	if path == "" {
		return fallbackHeuristic{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallbackHeuristic{}, false
	}
	var af artifactFile
	if err := json.Unmarshal(data, &af); err != nil {
		return fallbackHeuristic{}, false
	}
	if len(af.Weights) == 0 {
		return fallbackHeuristic{}, false
	}
	if af.Baselines == nil {
		af.Baselines = map[string]float64{}
	}
	return &trainedArtifact{
		bias:      af.Bias,
		weights:   af.Weights,
		baselines: af.Baselines,
	}, true
}

// loadFeatures reads the newline-separated feature list, falling back to the
// built-in order when the file is absent or empty.
func loadFeatures(path string) []string {
	if path == "" {
		return Features
	}
	f, err := os.Open(path)
	if err != nil {
		return Features
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			names = append(names, line)
		}
	}
	if len(names) == 0 {
		return Features
	}
	return names
}

// Engine binds one loaded model (or the fallback) to the feature order and
// exposes the scoring operations. Construct it once at startup and share it:
// the loaded artifact is read-only and safe for concurrent use.
type Engine struct {
	modelName string
	features  []string
	model     Model
	trained   bool
}

// NewEngine loads the artifact and feature list once. modelName is the
// externally configured artifact identifier reported in every response.
func NewEngine(modelName, modelPath, featuresPath string) *Engine {
	model, trained := loadModel(modelPath)
	return &Engine{
		modelName: modelName,
		features:  loadFeatures(featuresPath),
		model:     model,
		trained:   trained,
	}
}

// ModelName reports the configured artifact identifier.
func (e *Engine) ModelName() string { return e.modelName }

// Trained reports whether a trained artifact was loaded (false means the
// fallback heuristic is active).
func (e *Engine) Trained() bool { return e.trained }

// PredictIronIndex scores a payload. Negative values indicate deficiency.
func (e *Engine) PredictIronIndex(p *LabPayload) float64 {
	return e.model.Score(buildVector(e.features, p.Sparse()))
}
