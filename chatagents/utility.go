package chatagents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/casbin/govaluate"

	"github.com/walterfan/agentcore/internal/tools"
)

type calculateArgs struct {
	Expression string `json:"expression"`
}

var calculateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"expression": map[string]any{
			"type":        "string",
			"description": "Mathematical expression to evaluate, e.g. '2 + 3 * sqrt(16)'",
		},
	},
	"required": []any{"expression"},
}

// calculateFunctions mirrors the original calculator tool's supported
// function set (sqrt, sin, cos, log) plus the pi/e constants, expressed
// as govaluate custom functions since govaluate's expression grammar has
// no builtin math-function table of its own.
var calculateFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt": func(args ...interface{}) (interface{}, error) { return mathUnary(args, math.Sqrt) },
	"sin":  func(args ...interface{}) (interface{}, error) { return mathUnary(args, math.Sin) },
	"cos":  func(args ...interface{}) (interface{}, error) { return mathUnary(args, math.Cos) },
	"log":  func(args ...interface{}) (interface{}, error) { return mathUnary(args, math.Log) },
}

// mathUnary adapts a float64->float64 math function to govaluate's
// variadic interface{} function signature, requiring exactly one
// numeric argument.
func mathUnary(args []interface{}, fn func(float64) float64) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly one argument, got %d", len(args))
	}
	v, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("expected a numeric argument")
	}
	return fn(v), nil
}

// CalculateDescriptor builds the calculate tool: basic arithmetic,
// sqrt/sin/cos/log, and the pi/e constants, evaluated with
// github.com/casbin/govaluate rather than a hand-rolled parser.
func CalculateDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name: "calculate",
		Description: "Evaluate mathematical expressions. Supports basic arithmetic, functions " +
			"(sqrt, sin, cos, log), and constants (pi, e).",
		Schema: calculateSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a calculateArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("calculate: %w", err)
			}
			expr, err := govaluate.NewEvaluableExpressionWithFunctions(a.Expression, calculateFunctions)
			if err != nil {
				return nil, fmt.Errorf("calculate: parse expression: %w", err)
			}
			result, err := expr.Evaluate(map[string]interface{}{"pi": math.Pi, "e": math.E})
			if err != nil {
				return nil, fmt.Errorf("calculate: evaluate expression: %w", err)
			}
			return map[string]any{"expression": a.Expression, "result": result}, nil
		},
	}
}

type datetimeArgs struct {
	Timezone string `json:"timezone"`
	Format   string `json:"format"`
}

var datetimeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"timezone": map[string]any{"type": "string", "description": "IANA timezone name, e.g. 'Asia/Shanghai', 'UTC'"},
		"format":   map[string]any{"type": "string", "description": "optional Go time layout string"},
	},
}

// weekdayLocale generalizes the original's WEEKDAY_CHINESE table to a
// locale keyed map, so additional locales can be added without touching
// call sites.
var weekdayLocale = map[string][7]string{
	"zh": {"星期一", "星期二", "星期三", "星期四", "星期五", "星期六", "星期日"},
}

// GetDatetimeDescriptor builds the get_datetime tool.
func GetDatetimeDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "get_datetime",
		Description: "Get the current date and time. Can specify timezone.",
		Schema:      datetimeSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a datetimeArgs
			if len(args) > 0 {
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("get_datetime: %w", err)
				}
			}
			tzName := a.Timezone
			if tzName == "" {
				tzName = "UTC"
			}
			loc, err := time.LoadLocation(tzName)
			if err != nil {
				loc = time.UTC
				tzName = "UTC"
			}
			now := time.Now().In(loc)
			formatted := now.Format("2006-01-02 15:04:05 MST")
			if a.Format != "" {
				formatted = now.Format(a.Format)
			}
			weekdayChinese := ""
			if names, ok := weekdayLocale["zh"]; ok {
				weekdayChinese = names[(int(now.Weekday())+6)%7]
			}
			return map[string]any{
				"datetime":        formatted,
				"date":            now.Format("2006-01-02"),
				"time":            now.Format("15:04:05"),
				"weekday":         now.Weekday().String(),
				"weekday_chinese": weekdayChinese,
				"timezone":        tzName,
				"unix_timestamp":  now.Unix(),
			}, nil
		},
	}
}

type weatherArgs struct {
	City string `json:"city"`
}

var weatherSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"city": map[string]any{"type": "string", "description": "city name or AD code, e.g. 'Beijing', '北京'"},
	},
	"required": []any{"city"},
}

// GetWeatherDescriptor builds the get_weather tool. No real
// weather-endpoint value is in scope, so this always returns a canned
// response instead of calling a real weather API.
func GetWeatherDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name: "get_weather",
		Description: "Get current weather for a city. Provide a city name (e.g., 'Beijing', '北京') " +
			"or AD code. Returns temperature, weather condition, wind, humidity, and suggestions.",
		Schema: weatherSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a weatherArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("get_weather: %w", err)
			}
			if a.City == "" {
				return nil, fmt.Errorf("get_weather: city is required")
			}
			return map[string]any{
				"city":        a.City,
				"condition":   "unavailable",
				"temperature": nil,
				"suggestion":  "live weather data is not wired in this deployment; check a weather service directly.",
			}, nil
		},
	}
}
