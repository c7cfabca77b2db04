package judge0

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contest-session-service/internal/domain"
)

// Config holds the connection settings for a Judge0 CE instance.
// AuthToken is optional; it is sent as X-Auth-Token when set.
type Config struct {
	URL       string
	AuthToken string
	Timeout   time.Duration
}

// languageIDs maps editor language tags to Judge0 CE language IDs.
var languageIDs = map[string]int{
	"python":     71,
	"python3":    71,
	"javascript": 63,
	"js":         63,
	"java":       62,
	"cpp":        54,
	"c++":        54,
	"go":         60,
}

// LanguageID resolves a language tag, case-insensitively.
func LanguageID(language string) (int, bool) {
	id, ok := languageIDs[strings.ToLower(strings.TrimSpace(language))]
	return id, ok
}

// Grader runs every test case of a question through Judge0 and compares
// trimmed stdout with the expected output.
type Grader struct {
	url       string
	authToken string
	client    *http.Client
}

func NewGrader(cfg Config) *Grader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Grader{
		url:       strings.TrimRight(cfg.URL, "/"),
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: timeout},
	}
}

type submission struct {
	Stdout        string
	Stderr        string
	CompileOutput string
	Status        string
}

func (g *Grader) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.TerminalResult, error) {
	langID, ok := LanguageID(req.Language)
	if !ok {
		return domain.TerminalResult{}, fmt.Errorf("unsupported language %q", req.Language)
	}

	// Without test cases the verdict alone decides: a clean run is one passing outcome.
	if len(req.Tests) == 0 {
		sub, err := g.submit(ctx, req.Source, langID, "")
		if err != nil {
			return domain.TerminalResult{}, err
		}
		passed := accepted(sub.Status)
		return domain.TerminalResult{
			TestOutcomes: []domain.TestOutcome{{TestID: req.QuestionID, Passed: passed}},
			RawOutput:    fmt.Sprintf("Run: %s\n%s", verdict(passed), sub.output()),
		}, nil
	}

	var out strings.Builder
	result := domain.TerminalResult{TestOutcomes: make([]domain.TestOutcome, 0, len(req.Tests))}
	for i, tc := range req.Tests {
		sub, err := g.submit(ctx, req.Source, langID, tc.Input)
		if err != nil {
			return domain.TerminalResult{}, fmt.Errorf("test %s: %w", tc.ID, err)
		}
		passed := accepted(sub.Status)
		passed = passed && strings.TrimSpace(sub.Stdout) == strings.TrimSpace(tc.ExpectedOutput)
		result.TestOutcomes = append(result.TestOutcomes, domain.TestOutcome{TestID: tc.ID, Passed: passed})

		fmt.Fprintf(&out, "Test %d: %s\n", i+1, verdict(passed))
		if text := sub.output(); text != "" {
			out.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				out.WriteByte('\n')
			}
		}
		// Compilation failures fail every test the same way.
		if sub.CompileOutput != "" && strings.Contains(sub.Status, "Compilation") {
			for _, rest := range req.Tests[i+1:] {
				result.TestOutcomes = append(result.TestOutcomes, domain.TestOutcome{TestID: rest.ID, Passed: false})
			}
			break
		}
	}
	result.RawOutput = out.String()
	return result, nil
}

// submit posts source code to Judge0 and waits synchronously for the result.
// Source code and stdin travel base64-encoded in both directions.
func (g *Grader) submit(ctx context.Context, source string, languageID int, stdin string) (submission, error) {
	reqBody := map[string]interface{}{
		"source_code": base64.StdEncoding.EncodeToString([]byte(source)),
		"language_id": languageID,
	}
	if stdin != "" {
		reqBody["stdin"] = base64.StdEncoding.EncodeToString([]byte(stdin))
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return submission{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.url+"/submissions?base64_encoded=true&wait=true", bytes.NewReader(bodyJSON))
	if err != nil {
		return submission{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.authToken != "" {
		httpReq.Header.Set("X-Auth-Token", g.authToken)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return submission{}, fmt.Errorf("submit to judge0: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return submission{}, fmt.Errorf("judge0 returned HTTP %d", resp.StatusCode)
	}

	var raw struct {
		Stdout        *string `json:"stdout"`
		Stderr        *string `json:"stderr"`
		CompileOutput *string `json:"compile_output"`
		Status        struct {
			Description string `json:"description"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return submission{}, fmt.Errorf("decode judge0 response: %w", err)
	}

	return submission{
		Stdout:        decode(raw.Stdout),
		Stderr:        decode(raw.Stderr),
		CompileOutput: decode(raw.CompileOutput),
		Status:        raw.Status.Description,
	}, nil
}

func (s submission) output() string {
	switch {
	case s.CompileOutput != "":
		return s.CompileOutput
	case s.Stderr != "":
		return s.Stdout + s.Stderr
	default:
		return s.Stdout
	}
}

func decode(field *string) string {
	if field == nil {
		return ""
	}
	dec, err := base64.StdEncoding.DecodeString(*field)
	if err != nil {
		return ""
	}
	return string(dec)
}

// accepted treats a missing status as success.
func accepted(status string) bool {
	return status == "Accepted" || status == ""
}

func verdict(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
