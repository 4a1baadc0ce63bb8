// Package util holds small formatting helpers shared by the CLI and the
// circuit facade's diagnostic printer PrintAllVariables.
package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders value in engineering notation with an SI
// prefix sized to its magnitude (m/u/n/p), falling back to scientific
// notation below 1e-12 — used for node voltages, branch currents, and
// transient timestamps.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatFrequency renders an AC sweep point in Hz/kHz/MHz, matching the
// column width ac_sweep's table printer uses.
func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

// FormatMagnitude renders an AC sweep complex sample's magnitude, switching
// to scientific notation outside [1e-3, 1e3) (zero excepted).
func FormatMagnitude(value float64) string {
	if value >= 1000 || (value < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value) // "1.00e+03" or "5.43e-05"
	}
	return fmt.Sprintf("%8.3g", value) // "     732" for 732.5
}

// FormatPhase renders a phase angle in degrees at fixed width.
func FormatPhase(value float64) string {
	return fmt.Sprintf("%6.1f", value) // "  90.0"
}
