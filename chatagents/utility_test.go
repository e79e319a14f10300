package chatagents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateBasicArithmetic(t *testing.T) {
	tool := CalculateDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{"expression":"2 + 3 * 4"}`))
	require.NoError(t, err)
	require.Equal(t, float64(14), out.(map[string]any)["result"])
}

func TestCalculateSqrtFunction(t *testing.T) {
	tool := CalculateDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{"expression":"sqrt(16)"}`))
	require.NoError(t, err)
	require.Equal(t, float64(4), out.(map[string]any)["result"])
}

func TestCalculateRejectsInvalidExpression(t *testing.T) {
	tool := CalculateDescriptor()
	_, err := tool.Call(context.Background(), json.RawMessage(`{"expression":"2 + * 3"}`))
	require.Error(t, err)
}

func TestGetDatetimeDefaultsToUTC(t *testing.T) {
	tool := GetDatetimeDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	m := out.(map[string]any)
	require.Equal(t, "UTC", m["timezone"])
	require.NotEmpty(t, m["weekday_chinese"])
}

func TestGetDatetimeFallsBackOnInvalidTimezone(t *testing.T) {
	tool := GetDatetimeDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{"timezone":"Not/AZone"}`))
	require.NoError(t, err)
	require.Equal(t, "UTC", out.(map[string]any)["timezone"])
}

func TestGetWeatherRequiresCity(t *testing.T) {
	tool := GetWeatherDescriptor()
	_, err := tool.Call(context.Background(), json.RawMessage(`{"city":""}`))
	require.Error(t, err)
}

func TestGetWeatherReturnsCannedResponse(t *testing.T) {
	tool := GetWeatherDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{"city":"Beijing"}`))
	require.NoError(t, err)
	require.Equal(t, "Beijing", out.(map[string]any)["city"])
}
