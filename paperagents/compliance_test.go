package paperagents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetChecklistMapsPaperType(t *testing.T) {
	tool := GetChecklistDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{"paper_type":"rct"}`))
	require.NoError(t, err)
	require.Equal(t, ChecklistCONSORT, out.(map[string]any)["checklist_type"])
}

func TestGetChecklistRejectsUnknownPaperType(t *testing.T) {
	tool := GetChecklistDescriptor()
	_, err := tool.Call(context.Background(), json.RawMessage(`{"paper_type":"unknown"}`))
	require.Error(t, err)
}

func TestGenerateComplianceReportFlagsFailures(t *testing.T) {
	tool := GenerateComplianceReportDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{
		"checklist_type": "CONSORT",
		"items": [
			{"item_id": "randomization", "status": "pass"},
			{"item_id": "blinding", "status": "fail"}
		]
	}`))
	require.NoError(t, err)
	report := out.(map[string]any)
	require.Equal(t, true, report["needs_revision"])
	require.Equal(t, []any{"blinding"}, report["failed_items"])
}

func TestGenerateComplianceReportNoRevisionWhenAllPass(t *testing.T) {
	tool := GenerateComplianceReportDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{
		"checklist_type": "STROBE",
		"items": [{"item_id": "setting", "status": "pass"}]
	}`))
	require.NoError(t, err)
	require.Equal(t, false, out.(map[string]any)["needs_revision"])
}
