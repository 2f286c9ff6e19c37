package ports

// Frontend defines the interface for a dashboard surface
type Frontend interface {
	// Start starts the front end. Long-running front ends return once they are serving.
	Start() error

	// Stop stops the front end and aborts any scan it started
	Stop() error
}
