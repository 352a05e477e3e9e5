package temporal

// BusinessFlags derives night-hour and peak-hour indicator columns (0/1)
// from an hour-of-day column. Night runs from after 20:00 to before 06:00,
// peak from after 16:00 to before 20:00, matching observed taxi demand.
func BusinessFlags(hours []float64) (night, peak []float64) {
	night = make([]float64, len(hours))
	peak = make([]float64, len(hours))
	for i, h := range hours {
		if h > 20 || h < 6 {
			night[i] = 1
		}
		if h > 16 && h < 20 {
			peak[i] = 1
		}
	}
	return night, peak
}
