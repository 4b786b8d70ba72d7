package metrics

// Prometheus metric namespaces
const (
	namespaceExecution = "execution"
	namespaceStorage   = "storage"
)

// Execution subsystems
const (
	subsystemRuntime  = "runtime"
	subsystemMTrie    = "mtrie"
	subsystemServices = "services"
)

// Storage subsystems
const (
	subsystemCache = "cache"
)
