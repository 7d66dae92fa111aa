package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/odontoprint/gapheal/internal/domain"
)

func reviewableDraft(id string, gapIDs ...string) *domain.Draft {
	return domain.NewDraft(
		id,
		"Resinas para guias cirúrgicos",
		"Como escolher resinas biocompatíveis.",
		[]domain.FAQ{{Question: "Qual resina usar?", Answer: "Resina classe I."}},
		[]string{"resina", "guia"},
		gapIDs,
		[]string{"qual resina usar?"},
		time.Now().UTC(),
	)
}

func publishInputFor(draft *domain.Draft) PublishInput {
	return PublishInput{
		Draft:    draft,
		Title:    draft.Title,
		Excerpt:  draft.Excerpt,
		FAQs:     draft.FAQs,
		Keywords: draft.Keywords,
	}
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("creates content and resolves gaps with a note referencing the slug", func(t *testing.T) {
		mockContents := new(MockContentRepository)
		mockGaps := new(MockGapRepository)
		publisher := NewPublisherWithUUIDGen(NewMockUUIDGenerator("content-1"))

		draft := reviewableDraft("d1", "g1", "g2")

		mockContents.On("SlugExists", mock.Anything, "resinas-para-guias-cirurgicos-faq-auto").Return(false, nil)
		mockContents.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.PublishedContent) bool {
			return c.ID == "content-1" &&
				c.Slug == "resinas-para-guias-cirurgicos-faq-auto" &&
				c.Title == draft.Title
		})).Return(nil)
		mockGaps.On("ResolveBatch", mock.Anything, []string{"g1", "g2"},
			"Respondido pela FAQ publicada em /faq/resinas-para-guias-cirurgicos-faq-auto").Return(nil)

		content, err := publisher.Publish(ctx, mockContents, mockGaps, publishInputFor(draft))

		require.NoError(t, err)
		assert.Equal(t, "content-1", content.ID)
		assert.Equal(t, "resinas-para-guias-cirurgicos-faq-auto", content.Slug)
		mockContents.AssertExpectations(t)
		mockGaps.AssertExpectations(t)
	})

	t.Run("slug collision appends numeric suffix starting at 2", func(t *testing.T) {
		mockContents := new(MockContentRepository)
		mockGaps := new(MockGapRepository)
		publisher := NewPublisherWithUUIDGen(NewMockUUIDGenerator("content-2"))

		draft := reviewableDraft("d1", "g1")

		mockContents.On("SlugExists", mock.Anything, "resinas-para-guias-cirurgicos-faq-auto").Return(true, nil)
		mockContents.On("SlugExists", mock.Anything, "resinas-para-guias-cirurgicos-faq-auto-2").Return(false, nil)
		mockContents.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.PublishedContent) bool {
			return c.Slug == "resinas-para-guias-cirurgicos-faq-auto-2"
		})).Return(nil)
		mockGaps.On("ResolveBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		content, err := publisher.Publish(ctx, mockContents, mockGaps, publishInputFor(draft))

		require.NoError(t, err)
		assert.Equal(t, "resinas-para-guias-cirurgicos-faq-auto-2", content.Slug)
	})

	t.Run("returns exhausted error when every suffix collides", func(t *testing.T) {
		mockContents := new(MockContentRepository)
		mockGaps := new(MockGapRepository)
		publisher := NewPublisher()

		draft := reviewableDraft("d1", "g1")

		mockContents.On("SlugExists", mock.Anything, mock.Anything).Return(true, nil)

		_, err := publisher.Publish(ctx, mockContents, mockGaps, publishInputFor(draft))

		require.ErrorIs(t, err, domain.ErrSlugExhausted)
		mockContents.AssertNumberOfCalls(t, "SlugExists", maxSlugAttempts)
		mockContents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockGaps.AssertNotCalled(t, "ResolveBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("content creation failure leaves gaps untouched", func(t *testing.T) {
		mockContents := new(MockContentRepository)
		mockGaps := new(MockGapRepository)
		publisher := NewPublisher()

		draft := reviewableDraft("d1", "g1")

		mockContents.On("SlugExists", mock.Anything, mock.Anything).Return(false, nil)
		mockContents.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		_, err := publisher.Publish(ctx, mockContents, mockGaps, publishInputFor(draft))

		require.Error(t, err)
		mockGaps.AssertNotCalled(t, "ResolveBatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Resinas para modelos", "resinas-para-modelos"},
		{"portuguese accents folded", "Calibração de impressão 3D", "calibracao-de-impressao-3d"},
		{"punctuation collapsed", "Qual resina usar? (Guia 2026)", "qual-resina-usar-guia-2026"},
		{"leading and trailing separators trimmed", "  ---Resina---  ", "resina"},
		{"consecutive separators collapse to one hyphen", "resina  /  impressora", "resina-impressora"},
		{"cedilla", "Pós-processamento: lavagem", "pos-processamento-lavagem"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}
