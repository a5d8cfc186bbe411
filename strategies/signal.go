package strategies

// Signal is the per-date trading directive produced by a Strategy.
type Signal int8

const (
	Sell Signal = -1
	Hold Signal = 0
	Buy  Signal = +1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// holds returns n Hold signals.
func holds(n int) []Signal {
	return make([]Signal, n)
}
