package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/odontoprint/gapheal/internal/domain"
)

func testCluster(questions ...string) domain.Cluster {
	members := make([]domain.EmbeddedGap, len(questions))
	for i, q := range questions {
		members[i] = embeddedGap("gap-"+q[:1], q, 1, []float32{1, 0})
	}
	return domain.Cluster{Centroid: members[0], Members: members}
}

func TestDraftGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	validResponse := `{
		"draft_title": "Resinas para guias cirúrgicos",
		"draft_excerpt": "Como escolher e validar resinas biocompatíveis.",
		"faqs": [{"question": "Qual resina usar?", "answer": "Use resina classe I biocompatível."}],
		"keywords": ["resina", "guia cirúrgico"]
	}`

	t.Run("creates draft from valid response", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGeneratorWithUUIDGen(mockChat, NewMockUUIDGenerator("draft-1"))

		cluster := testCluster("qual resina para guia?", "que resina usar em guia cirúrgico?")

		mockChat.On("GenerateCompletion", mock.Anything, draftSystemPrompt, mock.MatchedBy(func(user string) bool {
			return strings.Contains(user, "1. qual resina para guia?") &&
				strings.Contains(user, "2. que resina usar em guia cirúrgico?")
		})).Return(validResponse, nil)

		result, err := generator.Generate(ctx, cluster)

		require.NoError(t, err)
		require.NotNil(t, result.Draft)
		assert.Equal(t, "draft-1", result.Draft.ID)
		assert.Equal(t, "Resinas para guias cirúrgicos", result.Draft.Title)
		assert.Equal(t, domain.DraftStatusDraft, result.Draft.Status)
		assert.Equal(t, cluster.GapIDs(), result.Draft.GapIDs)
		assert.Equal(t, cluster.Questions(), result.Draft.SourceQuestions)
		assert.Equal(t, validResponse, result.RawResponse)
		mockChat.AssertExpectations(t)
	})

	t.Run("strips markdown code fence", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGeneratorWithUUIDGen(mockChat, NewMockUUIDGenerator("draft-1"))

		fenced := "```json\n" + validResponse + "\n```"
		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).Return(fenced, nil)

		result, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.NoError(t, err)
		assert.Equal(t, "Resinas para guias cirúrgicos", result.Draft.Title)
	})

	t.Run("returns raw response when JSON is malformed", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGenerator(mockChat)

		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).
			Return("desculpe, não posso responder em JSON", nil)

		result, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.Error(t, err)
		require.NotNil(t, result)
		assert.Nil(t, result.Draft)
		assert.Equal(t, "desculpe, não posso responder em JSON", result.RawResponse)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})

	t.Run("rejects response without title", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGenerator(mockChat)

		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"draft_excerpt": "x", "faqs": [{"question": "q", "answer": "a"}]}`, nil)

		result, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "draft_title")
		assert.Nil(t, result.Draft)
	})

	t.Run("rejects response without faqs", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGenerator(mockChat)

		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"draft_title": "t", "draft_excerpt": "x", "faqs": []}`, nil)

		_, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "faqs")
	})

	t.Run("rejects faq with empty answer", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGenerator(mockChat)

		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"draft_title": "t", "faqs": [{"question": "q", "answer": "  "}]}`, nil)

		_, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "incomplete")
	})

	t.Run("truncates overlong title", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGeneratorWithUUIDGen(mockChat, NewMockUUIDGenerator("draft-1"))

		longTitle := strings.Repeat("á", 200)
		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"draft_title": "`+longTitle+`", "faqs": [{"question": "q", "answer": "a"}]}`, nil)

		result, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.NoError(t, err)
		assert.Len(t, []rune(result.Draft.Title), maxDraftTitleLength)
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mockChat := new(MockChatClient)
		generator := NewDraftGenerator(mockChat)

		mockChat.On("GenerateCompletion", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("rate limited"))

		result, err := generator.Generate(ctx, testCluster("qual resina?"))

		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("rejects empty cluster", func(t *testing.T) {
		generator := NewDraftGenerator(new(MockChatClient))

		_, err := generator.Generate(ctx, domain.Cluster{})

		require.Error(t, err)
	})
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}

func TestBuildDraftPrompt(t *testing.T) {
	prompt := buildDraftPrompt([]string{"pergunta um", "pergunta dois"})

	assert.Contains(t, prompt, "1. pergunta um")
	assert.Contains(t, prompt, "2. pergunta dois")
	assert.Contains(t, prompt, "rascunho de FAQ")
}
