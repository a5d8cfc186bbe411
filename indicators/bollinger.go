package indicators

// Bands holds upper, middle and lower Bollinger Bands.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger calculates bands numStd sample standard deviations around the
// period SMA.
func Bollinger(x []float64, period int, numStd float64) (Bands, error) {
	middle, err := SMA(x, period)
	if err != nil {
		return Bands{}, err
	}
	std := rolling(x, period, StdDev)

	b := Bands{
		Upper:  make([]float64, len(x)),
		Middle: middle,
		Lower:  make([]float64, len(x)),
	}
	for i := range x {
		b.Upper[i] = middle[i] + std[i]*numStd
		b.Lower[i] = middle[i] - std[i]*numStd
	}
	return b, nil
}
