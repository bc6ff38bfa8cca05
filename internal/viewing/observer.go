package viewing

const (
	SweepExpired    = "expired"
	SweepIncomplete = "incomplete"
	SweepAbandoned  = "abandoned"
)

// Observer receives lifecycle counts. internal/metrics exports them to prometheus.
type Observer interface {
	SessionStarted()
	GuessSubmitted()
	Rated()
	ImageUnavailable()
	SessionsSwept(reason string, count int64)
}

type nopObserver struct{}

func (nopObserver) SessionStarted() {}
func (nopObserver) GuessSubmitted() {}
func (nopObserver) Rated() {}
func (nopObserver) ImageUnavailable() {}
func (nopObserver) SessionsSwept(string, int64) {}
