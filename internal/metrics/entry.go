// In-memory metric history for the local query server and the Prometheus endpoint
package metrics

// Creates empty registry
func New() (new *Registry) {
	new = &Registry{}
	return
}
