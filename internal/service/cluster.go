package service

import (
	"math"
	"sort"

	"github.com/odontoprint/gapheal/internal/domain"
)

// DefaultSimilarityThreshold is the cosine similarity above which two
// questions are considered to ask the same thing.
const DefaultSimilarityThreshold = 0.75

// CosineSimilarity computes dot(a,b) / (|a| * |b|). It returns 0 when
// the vectors have different lengths or either has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// GapClusterer groups embedded gaps into topic clusters using greedy
// centroid single-pass clustering.
//
// The algorithm is order-dependent and centroid-biased on purpose:
// gaps are visited in descending frequency order (stable within ties),
// so the most frequently asked question anchors its cluster. The
// review workflow depends on this exact semantics, so it must not be
// swapped for hierarchical or k-means clustering.
type GapClusterer struct {
	threshold float64
}

// NewGapClusterer creates a GapClusterer. A non-positive threshold
// falls back to the default.
func NewGapClusterer(threshold float64) *GapClusterer {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &GapClusterer{threshold: threshold}
}

// Cluster partitions the input gaps into clusters. Every input gap is
// assigned to exactly one cluster, and every cluster's centroid is one
// of its members.
func (c *GapClusterer) Cluster(gaps []domain.EmbeddedGap) []domain.Cluster {
	if len(gaps) == 0 {
		return nil
	}

	unassigned := make([]domain.EmbeddedGap, len(gaps))
	copy(unassigned, gaps)
	sort.SliceStable(unassigned, func(i, j int) bool {
		return unassigned[i].Gap.Frequency > unassigned[j].Gap.Frequency
	})

	var clusters []domain.Cluster
	for len(unassigned) > 0 {
		centroid := unassigned[0]
		unassigned = unassigned[1:]

		cluster := domain.Cluster{
			Centroid: centroid,
			Members:  []domain.EmbeddedGap{centroid},
		}

		remaining := unassigned[:0]
		for _, candidate := range unassigned {
			if CosineSimilarity(centroid.Vector, candidate.Vector) >= c.threshold {
				cluster.Members = append(cluster.Members, candidate)
			} else {
				remaining = append(remaining, candidate)
			}
		}
		unassigned = remaining

		clusters = append(clusters, cluster)
	}

	return clusters
}
