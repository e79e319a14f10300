package paperagents

import (
	"time"

	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/node"
	"github.com/walterfan/agentcore/internal/router"
	"github.com/walterfan/agentcore/internal/telemetry"
	"github.com/walterfan/agentcore/internal/tools"
)

// LiteratureSystemPrompt is the literature sub-agent's system prompt,
// grounded on original_source's agents/literature/system.v1.yaml.
const LiteratureSystemPrompt = "You are the literature sub-agent of a medical paper writing pipeline. " +
	"Search PubMed and ClinicalTrials.gov for references relevant to the research question, fetch " +
	"abstracts as needed, and format citations. Gather enough references (at least 10) before finishing."

// StatsSystemPrompt is the stats sub-agent's system prompt, grounded on
// original_source's agents/stats/system.v1.yaml.
const StatsSystemPrompt = "You are the statistics sub-agent of a medical paper writing pipeline. " +
	"Run the statistical tests and sample-size calculations the study design calls for, then compile " +
	"the results into a stats report with generate_stats_report before finishing."

// WriterSystemPrompt is the writer sub-agent's system prompt.
const WriterSystemPrompt = "You are the writer sub-agent of a medical paper writing pipeline. " +
	"Write each IMRAD section (abstract, introduction, methods, results, discussion) from the supplied " +
	"references and stats report, revising sections when feedback is provided, then merge them into the " +
	"final manuscript with merge_sections before finishing."

// ComplianceSystemPrompt is the compliance sub-agent's system prompt.
const ComplianceSystemPrompt = "You are the compliance sub-agent of a medical paper writing pipeline. " +
	"Fetch the correct reporting checklist for the paper type, check the manuscript against it, and " +
	"generate a compliance report with generate_compliance_report before finishing."

// NewLiteratureNode builds the literature sub-agent stage node. Its
// artifact is state.Artifacts["references"], bound to search_pubmed's
// result.
func NewLiteratureNode(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*StageNode, error) {
	reg, err := tools.NewRegistry(
		SearchPubMedDescriptor(),
		SearchClinicalTrialsDescriptor(),
		GetArticleAbstractDescriptor(),
		FormatCitationDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	n, err := node.New(router.StageLiterature, LiteratureSystemPrompt, reg, client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	return &StageNode{Node: n, ArtifactKey: "references", ArtifactTools: []string{"search_pubmed"}}, nil
}

// NewStatsNode builds the stats sub-agent stage node. Its artifact is
// state.Artifacts["stats_report"], bound to generate_stats_report's
// result.
func NewStatsNode(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*StageNode, error) {
	reg, err := tools.NewRegistry(
		RunTTestDescriptor(),
		RunChiSquareDescriptor(),
		RunSurvivalAnalysisDescriptor(),
		ComputeSampleSizeDescriptor(),
		GenerateStatsReportDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	n, err := node.New(router.StageStats, StatsSystemPrompt, reg, client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	return &StageNode{Node: n, ArtifactKey: "stats_report", ArtifactTools: []string{"generate_stats_report"}}, nil
}

// NewWriterNode builds the writer sub-agent stage node. Its artifact is
// state.Artifacts["manuscript"], bound to merge_sections' result.
func NewWriterNode(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*StageNode, error) {
	reg, err := tools.NewRegistry(
		WriteSectionDescriptor(),
		ReviseSectionDescriptor(),
		MergeSectionsDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	n, err := node.New(router.StageWriter, WriterSystemPrompt, reg, client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	return &StageNode{Node: n, ArtifactKey: "manuscript", ArtifactTools: []string{"merge_sections"}}, nil
}

// NewComplianceNode builds the compliance sub-agent stage node. Its
// artifact is state.Artifacts["compliance_report"], bound to
// generate_compliance_report's result — the same artifact
// internal/revision.Check reads to decide whether to loop back to the
// writer.
func NewComplianceNode(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*StageNode, error) {
	reg, err := tools.NewRegistry(
		GetChecklistDescriptor(),
		CheckComplianceDescriptor(),
		GenerateComplianceReportDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	n, err := node.New(router.StageCompliance, ComplianceSystemPrompt, reg, client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	return &StageNode{Node: n, ArtifactKey: "compliance_report", ArtifactTools: []string{"generate_compliance_report"}}, nil
}

// RequiredArtifacts is the stage-name -> artifact-key map
// internal/executor.Executor.RequiredArtifacts expects for the paper
// workflow: a stage that completes without error must leave its
// artifact behind.
func RequiredArtifacts() map[string]string {
	return map[string]string{
		router.StageLiterature: "references",
		router.StageStats:      "stats_report",
		router.StageWriter:     "manuscript",
		router.StageCompliance: "compliance_report",
	}
}

// Build constructs all four paper stage nodes sharing one model client
// and telemetry sink, keyed by the stage name internal/router.PaperRouter
// routes to.
func Build(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (map[string]*StageNode, error) {
	literature, err := NewLiteratureNode(client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	stats, err := NewStatsNode(client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	writer, err := NewWriterNode(client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}
	compliance, err := NewComplianceNode(client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, err
	}

	return map[string]*StageNode{
		router.StageLiterature: literature,
		router.StageStats:      stats,
		router.StageWriter:     writer,
		router.StageCompliance: compliance,
	}, nil
}
