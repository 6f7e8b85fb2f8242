package providers

import "time"

// shutdownTimeout bounds graceful shutdown of the HTTP server and the
// SSE manager so a stuck client cannot hold the process open.
const shutdownTimeout = 30 * time.Second
