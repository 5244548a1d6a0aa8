package smoke

// AQI conversion. Sensor PPM is taken 1:1 as a PM2.5 concentration in
// µg/m³ and interpolated over the EPA PM2.5 breakpoint table. The PPM
// scale is already synthetic, so the identity conversion just fixes where
// the category edges land; what matters downstream is that the mapping is
// monotonic and the category names mean the usual thing.

type aqiBreakpoint struct {
	cLow, cHigh float64 // concentration band, µg/m³
	iLow, iHigh float64 // index band
}

var aqiTable = []aqiBreakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

// PPMToAQI maps a smoothed PPM reading to an AQI value by piecewise-linear
// interpolation. Readings above the table saturate at 500.
func PPMToAQI(ppm float64) float64 {
	if ppm <= 0 {
		return 0
	}
	c := ppm // 1:1 PPM -> µg/m³

	for _, b := range aqiTable {
		if c <= b.cHigh {
			if c < b.cLow {
				c = b.cLow
			}
			return b.iLow + (c-b.cLow)*(b.iHigh-b.iLow)/(b.cHigh-b.cLow)
		}
	}
	return 500
}

// AQICategory names the band an AQI value falls in.
func AQICategory(aqi float64) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
