package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/odontoprint/gapheal/internal/domain"
)

const (
	maxDraftTitleLength   = 120
	maxDraftExcerptLength = 300
)

const draftSystemPrompt = `Você é um redator técnico especializado em impressão 3D odontológica.
Você escreve FAQs claras e precisas sobre resinas, impressoras, parâmetros de impressão,
pós-processamento e fluxos digitais para dentistas e técnicos de laboratório.
Responda SOMENTE com um objeto JSON com os campos:
"draft_title" (string, até 120 caracteres),
"draft_excerpt" (string, até 300 caracteres),
"faqs" (lista de objetos {"question", "answer"}, pelo menos 1),
"keywords" (lista de strings).
As respostas devem ser tecnicamente corretas e em português.`

// ChatClient defines the interface for generating structured text
type ChatClient interface {
	GenerateCompletion(ctx context.Context, system, user string) (string, error)
}

// DraftGenerator turns a cluster of raw user questions into a
// structured FAQ draft via a generative-text provider.
type DraftGenerator struct {
	chat    ChatClient
	uuidGen UUIDGenerator
}

// NewDraftGenerator creates a new DraftGenerator instance
func NewDraftGenerator(chat ChatClient) *DraftGenerator {
	return &DraftGenerator{chat: chat, uuidGen: &DefaultUUIDGenerator{}}
}

// NewDraftGeneratorWithUUIDGen creates a DraftGenerator with a custom
// UUID generator (for testing)
func NewDraftGeneratorWithUUIDGen(chat ChatClient, uuidGen UUIDGenerator) *DraftGenerator {
	return &DraftGenerator{chat: chat, uuidGen: uuidGen}
}

// GenerationResult carries the outcome of one cluster's generation:
// either a draft or the raw response plus the reason it was skipped.
type GenerationResult struct {
	Draft       *domain.Draft
	RawResponse string
}

// Generate builds one generation request for the cluster and parses
// the structured response into a Draft with status draft. A malformed
// response is a per-cluster failure: the caller skips the cluster and
// the run continues.
func (g *DraftGenerator) Generate(ctx context.Context, cluster domain.Cluster) (*GenerationResult, error) {
	questions := cluster.Questions()
	if len(questions) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "cluster has no questions")
	}

	raw, err := g.chat.GenerateCompletion(ctx, draftSystemPrompt, buildDraftPrompt(questions))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "draft generation failed", err)
	}

	payload, err := parseDraftPayload(raw)
	if err != nil {
		return &GenerationResult{RawResponse: raw}, err
	}

	draft := domain.NewDraft(
		g.uuidGen.NewString(),
		payload.Title,
		payload.Excerpt,
		payload.FAQs,
		payload.Keywords,
		cluster.GapIDs(),
		questions,
		time.Now().UTC(),
	)

	return &GenerationResult{Draft: draft, RawResponse: raw}, nil
}

func buildDraftPrompt(questions []string) string {
	var b strings.Builder
	b.WriteString("Os usuários fizeram as seguintes perguntas que o assistente não soube responder bem:\n\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nEscreva um rascunho de FAQ que responda a todas elas.")
	return b.String()
}

// draftPayload is the schema expected from the generation provider.
type draftPayload struct {
	Title    string       `json:"draft_title"`
	Excerpt  string       `json:"draft_excerpt"`
	FAQs     []domain.FAQ `json:"faqs"`
	Keywords []string     `json:"keywords"`
}

// parseDraftPayload strips an optional fenced code block, parses the
// JSON and validates it against the expected schema immediately.
func parseDraftPayload(raw string) (*draftPayload, error) {
	cleaned := stripCodeFence(raw)

	var payload draftPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "malformed generation response", err)
	}

	payload.Title = strings.TrimSpace(payload.Title)
	payload.Excerpt = strings.TrimSpace(payload.Excerpt)

	if payload.Title == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "generation response is missing draft_title")
	}
	if len([]rune(payload.Title)) > maxDraftTitleLength {
		payload.Title = string([]rune(payload.Title)[:maxDraftTitleLength])
	}
	if len([]rune(payload.Excerpt)) > maxDraftExcerptLength {
		payload.Excerpt = string([]rune(payload.Excerpt)[:maxDraftExcerptLength])
	}

	if len(payload.FAQs) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "generation response contains no faqs")
	}
	for i, faq := range payload.FAQs {
		if strings.TrimSpace(faq.Question) == "" || strings.TrimSpace(faq.Answer) == "" {
			return nil, domain.NewDomainError(domain.ErrCodeValidation,
				fmt.Sprintf("generation response faq %d is incomplete", i))
		}
	}

	return &payload, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or
// without a language tag, e.g. ```json ... ```.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
