package reassembler

import "gelfmover/internal/receiver/chunkstore"

type Instance struct {
	Namespace []string
	store     *chunkstore.Store
	Metrics   MetricStorage
}
