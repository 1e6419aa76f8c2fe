package types

import "fmt"

// Score is the raw likelihood x impact product. The unrounded value is what
// gets bucketed into a RiskLevel; rounding to two decimals is display only.
type Score float64

// String formats the score for display with two decimal places
func (s Score) String() string {
	return fmt.Sprintf("%.2f", float64(s))
}

// Float returns the unrounded score value
func (s Score) Float() float64 {
	return float64(s)
}
