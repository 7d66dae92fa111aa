package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontoprint/gapheal/internal/domain"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors give 1", func(t *testing.T) {
		v := []float32{0.5, 0.3, 0.2}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors give 0", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("opposite vectors give -1", func(t *testing.T) {
		a := []float32{1, 2}
		b := []float32{-1, -2}
		assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("length mismatch gives 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("zero magnitude gives 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	})

	t.Run("empty vectors give 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	})
}

func embeddedGap(id, question string, frequency int32, vector []float32) domain.EmbeddedGap {
	return domain.EmbeddedGap{
		Gap:    domain.NewGap(id, question, frequency, domain.GapStatusPending, time.Now().UTC()),
		Vector: vector,
	}
}

func TestGapClusterer_Cluster(t *testing.T) {
	clusterer := NewGapClusterer(0.75)

	t.Run("empty input gives no clusters", func(t *testing.T) {
		assert.Nil(t, clusterer.Cluster(nil))
	})

	t.Run("single gap forms its own cluster", func(t *testing.T) {
		gaps := []domain.EmbeddedGap{
			embeddedGap("g1", "Qual resina usar?", 3, []float32{1, 0}),
		}

		clusters := clusterer.Cluster(gaps)

		require.Len(t, clusters, 1)
		assert.Equal(t, "g1", clusters[0].Centroid.Gap.ID)
		assert.Equal(t, 1, clusters[0].Size())
	})

	t.Run("similar gaps join the same cluster", func(t *testing.T) {
		gaps := []domain.EmbeddedGap{
			embeddedGap("g1", "resina para modelo", 5, []float32{1, 0}),
			embeddedGap("g2", "qual resina modelo", 2, []float32{0.99, 0.01}),
			embeddedGap("g3", "tempo de cura nab", 1, []float32{0, 1}),
		}

		clusters := clusterer.Cluster(gaps)

		require.Len(t, clusters, 2)
		assert.Equal(t, "g1", clusters[0].Centroid.Gap.ID)
		assert.ElementsMatch(t, []string{"g1", "g2"}, clusters[0].GapIDs())
		assert.Equal(t, []string{"g3"}, clusters[1].GapIDs())
	})

	t.Run("most frequent gap becomes the centroid", func(t *testing.T) {
		gaps := []domain.EmbeddedGap{
			embeddedGap("rare", "pergunta rara", 1, []float32{1, 0}),
			embeddedGap("popular", "pergunta popular", 10, []float32{0.98, 0.05}),
		}

		clusters := clusterer.Cluster(gaps)

		require.Len(t, clusters, 1)
		assert.Equal(t, "popular", clusters[0].Centroid.Gap.ID)
	})

	t.Run("frequency ties keep input order", func(t *testing.T) {
		gaps := []domain.EmbeddedGap{
			embeddedGap("first", "primeira pergunta", 3, []float32{1, 0}),
			embeddedGap("second", "segunda pergunta", 3, []float32{0, 1}),
		}

		clusters := clusterer.Cluster(gaps)

		require.Len(t, clusters, 2)
		assert.Equal(t, "first", clusters[0].Centroid.Gap.ID)
		assert.Equal(t, "second", clusters[1].Centroid.Gap.ID)
	})

	t.Run("every gap lands in exactly one cluster", func(t *testing.T) {
		gaps := []domain.EmbeddedGap{
			embeddedGap("g1", "a", 4, []float32{1, 0, 0}),
			embeddedGap("g2", "b", 3, []float32{0.9, 0.1, 0}),
			embeddedGap("g3", "c", 2, []float32{0, 1, 0}),
			embeddedGap("g4", "d", 1, []float32{0, 0, 1}),
			embeddedGap("g5", "e", 1, []float32{0, 0.95, 0.05}),
		}

		clusters := clusterer.Cluster(gaps)

		var all []string
		for _, cluster := range clusters {
			all = append(all, cluster.GapIDs()...)
		}
		assert.ElementsMatch(t, []string{"g1", "g2", "g3", "g4", "g5"}, all)
	})

	t.Run("similarity exactly at threshold joins the cluster", func(t *testing.T) {
		// cos(a,b) = 0.8 exactly
		a := []float32{1, 0}
		b := []float32{0.8, 0.6}
		gaps := []domain.EmbeddedGap{
			embeddedGap("g1", "ancora", 2, a),
			embeddedGap("g2", "vizinha", 1, b),
		}

		clusters := NewGapClusterer(0.8).Cluster(gaps)

		require.Len(t, clusters, 1)
		assert.Equal(t, 2, clusters[0].Size())
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		gaps := []domain.EmbeddedGap{
			embeddedGap("low", "menos frequente", 1, []float32{1, 0}),
			embeddedGap("high", "mais frequente", 9, []float32{0, 1}),
		}

		clusterer.Cluster(gaps)

		assert.Equal(t, "low", gaps[0].Gap.ID)
		assert.Equal(t, "high", gaps[1].Gap.ID)
	})
}

func TestNewGapClusterer_DefaultThreshold(t *testing.T) {
	clusterer := NewGapClusterer(0)
	assert.Equal(t, DefaultSimilarityThreshold, clusterer.threshold)
}
