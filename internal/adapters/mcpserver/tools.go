package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type SearchArgs struct {
	LoanID  string `json:"loan_id"`
	Query   string `json:"query"`
	K       int    `json:"k"`
	DocType string `json:"doc_type"`
}

type SearchResult struct {
	Hits  []domain.SearchHit `json:"hits"`
	Count int                `json:"count"`
}

type QuestionArgs struct {
	LoanID   string `json:"loan_id"`
	Question string `json:"question"`
}

type ClaimArgs struct {
	LoanID string `json:"loan_id"`
	Claim  string `json:"claim"`
}

type LoanArgs struct {
	LoanID string `json:"loan_id"`
}

type ExtractResult struct {
	Extractions []domain.FieldExtraction `json:"extractions"`
}

type AssessArgs struct {
	Fields domain.ProjectFields `json:"fields"`
	Text   string               `json:"text"`
	Claims []domain.Claim       `json:"claims"`
}

type AssessResult struct {
	ESG          domain.ESGScore             `json:"esg"`
	Eligibility  domain.GLPEligibilityResult `json:"eligibility"`
	DNSH         domain.DNSHSummary          `json:"dnsh"`
	CarbonLockin domain.CarbonLockinResult   `json:"carbon_lockin"`
	SectorRisk   domain.SectorRisk           `json:"sector_risk"`
}

type SPTArgs struct {
	Baseline     float64          `json:"baseline_emissions"`
	Reduction    domain.Reduction `json:"target_reduction"`
	BaselineYear int              `json:"baseline_year"`
	TargetYear   int              `json:"target_year"`
	Sector       string           `json:"sector"`
}

func (s *Server) registerTools() {
	loanID := mcp.WithString("loan_id", mcp.Required(), mcp.Description("Loan identifier"))

	s.mcp.AddTool(mcp.NewTool("glc_search",
		mcp.WithDescription("Semantic search over indexed loan document chunks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to find in the loan documents")),
		mcp.WithString("loan_id", mcp.Description("Loan to search; empty searches every loan")),
		mcp.WithNumber("k", mcp.Description("Number of chunks to return (default 5)")),
		mcp.WithString("doc_type", mcp.Description("Restrict results to one document type")),
	), mcp.NewTypedToolHandler(s.search))

	s.mcp.AddTool(mcp.NewTool("glc_answer",
		mcp.WithDescription("Answer a question from one loan's documents with confidence and sources."),
		loanID,
		mcp.WithString("question", mcp.Required(), mcp.Description("Question to answer from the documents")),
	), mcp.NewTypedToolHandler(s.answer))

	s.mcp.AddTool(mcp.NewTool("glc_verify_claim",
		mcp.WithDescription("Check whether a loan's documents support a claim."),
		loanID,
		mcp.WithString("claim", mcp.Required(), mcp.Description("Statement to check against the documents")),
	), mcp.NewTypedToolHandler(s.verifyClaim))

	s.mcp.AddTool(mcp.NewTool("glc_extract_all",
		mcp.WithDescription("Answer the standard green loan questions for one loan."),
		loanID,
	), mcp.NewTypedToolHandler(s.extractAll))

	s.mcp.AddTool(mcp.NewTool("glc_assess",
		mcp.WithDescription("Compute ESG score, GLP eligibility, DNSH and carbon lock-in for project fields."),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("Loan application fields: sector, location, use_of_proceeds, scope1_tco2, ...")),
		mcp.WithString("text", mcp.Description("Extracted document text to consider")),
		mcp.WithArray("claims", mcp.Description("Claims with confidences used for verifiability")),
	), mcp.NewTypedToolHandler(s.assess))

	s.mcp.AddTool(mcp.NewTool("glc_calibrate_spt",
		mcp.WithDescription("Calibrate a sustainability performance target against the 1.5C pathway."),
		mcp.WithNumber("baseline_emissions", mcp.Required(), mcp.Description("Baseline emissions in tCO2e")),
		mcp.WithString("target_reduction", mcp.Required(), mcp.Description("Reduction target, e.g. 30%")),
		mcp.WithNumber("baseline_year", mcp.Description("Baseline year (default 2025)")),
		mcp.WithNumber("target_year", mcp.Description("Target year (default baseline year + 5)")),
		mcp.WithString("sector", mcp.Description("Borrower sector")),
	), mcp.NewTypedToolHandler(s.calibrateSPT))

	s.mcp.AddTool(mcp.NewTool("glc_index_stats",
		mcp.WithDescription("Chunk count and sources indexed for a loan."),
		loanID,
	), mcp.NewTypedToolHandler(s.stats))
}

// structured returns v as structured content with its JSON as the text
// fallback for clients that only read text.
func structured(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return toolError("encode result", err)
	}
	return mcp.NewToolResultStructured(v, string(raw)), nil
}

func toolError(msg string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultErrorFromErr(msg, err), nil
}

func (s *Server) search(ctx context.Context, _ mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	hits, err := s.ports.Index.Search(ctx, domain.SearchQuery{Text: args.Query, LoanID: args.LoanID, K: args.K, DocType: args.DocType})
	if err != nil {
		return toolError("search failed", err)
	}
	return structured(SearchResult{Hits: hits, Count: len(hits)})
}

func (s *Server) answer(ctx context.Context, _ mcp.CallToolRequest, args QuestionArgs) (*mcp.CallToolResult, error) {
	res, err := s.ports.Extraction.Answer(ctx, args.Question, args.LoanID)
	if err != nil {
		return toolError("answer failed", err)
	}
	return structured(res)
}

func (s *Server) verifyClaim(ctx context.Context, _ mcp.CallToolRequest, args ClaimArgs) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(args.Claim) == "" {
		return mcp.NewToolResultError("claim is required"), nil
	}
	res, err := s.ports.Extraction.VerifyClaim(ctx, args.Claim, args.LoanID)
	if err != nil {
		return toolError("verification failed", err)
	}
	return structured(res)
}

func (s *Server) extractAll(ctx context.Context, _ mcp.CallToolRequest, args LoanArgs) (*mcp.CallToolResult, error) {
	out, err := s.ports.Extraction.ExtractAll(ctx, args.LoanID)
	if err != nil {
		return toolError("extraction failed", err)
	}
	return structured(ExtractResult{Extractions: out})
}

func (s *Server) assess(_ context.Context, _ mcp.CallToolRequest, args AssessArgs) (*mcp.CallToolResult, error) {
	a := s.ports.Assessment
	return structured(AssessResult{
		ESG:          a.Score(args.Fields, args.Claims, nil, args.Text),
		Eligibility:  a.AssessGLPEligibility(args.Fields, args.Text),
		DNSH:         a.AssessDNSH(args.Fields, args.Text),
		CarbonLockin: a.AssessCarbonLockin(args.Fields, args.Text),
		SectorRisk:   a.SectorRisk(args.Fields.Sector),
	})
}

func (s *Server) calibrateSPT(_ context.Context, _ mcp.CallToolRequest, args SPTArgs) (*mcp.CallToolResult, error) {
	cal := s.ports.Assessment.CalibrateSPT(args.Baseline, args.Reduction.String(), args.BaselineYear, args.TargetYear, args.Sector)
	if cal == nil {
		return mcp.NewToolResultError("cannot calibrate: baseline must be positive and target a percentage"), nil
	}
	return structured(cal)
}

func (s *Server) stats(_ context.Context, _ mcp.CallToolRequest, args LoanArgs) (*mcp.CallToolResult, error) {
	return structured(s.ports.Index.Stats(args.LoanID))
}
