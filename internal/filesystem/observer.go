package filesystem

// Observer records filesystem operation metrics. The metrics package provides
// the Prometheus implementation; keeping the interface here avoids an import
// cycle between the two packages.
type Observer interface {
	// ObserveOperation records duration and error status for one operation,
	// retries included. volume is the label resolved by the VolumeResolver.
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(operation, volume string)
	ObserveRetrySuccess(operation, volume string)
	ObserveRetryFailure(operation, volume string)
	ObserveStaleError(operation, volume string)
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, string, float64, error) {}
func (noopObserver) ObserveRetryAttempt(string, string)              {}
func (noopObserver) ObserveRetrySuccess(string, string)              {}
func (noopObserver) ObserveRetryFailure(string, string)              {}
func (noopObserver) ObserveStaleError(string, string)                {}

// defaultObserver is the package-level observer set at startup.
var defaultObserver Observer = noopObserver{}

// SetObserver sets the package-level metrics observer. Passing nil restores
// the no-op observer.
func SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
