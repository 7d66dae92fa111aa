package domain

// EmbeddedGap pairs a gap with the embedding of its question. Vectors
// are transient: they are recomputed on every heal run and never
// persisted.
type EmbeddedGap struct {
	Gap    *Gap
	Vector []float32
}

// Cluster is a transient grouping of semantically similar gaps. The
// centroid is always a member. Clusters produced by one run partition
// the input gap set: every gap belongs to exactly one cluster.
type Cluster struct {
	Centroid EmbeddedGap
	Members  []EmbeddedGap
}

// Size returns the number of gaps in the cluster, centroid included.
func (c *Cluster) Size() int {
	return len(c.Members)
}

// GapIDs returns the member gap IDs in cluster order.
func (c *Cluster) GapIDs() []string {
	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.Gap.ID)
	}
	return ids
}

// Questions returns the member questions in cluster order.
func (c *Cluster) Questions() []string {
	questions := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		questions = append(questions, m.Gap.Question)
	}
	return questions
}
