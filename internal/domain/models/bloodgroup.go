// internal/domain/models/bloodgroup.go
package models

import "strings"

// BloodGroups lists the accepted ABO/Rh groups in display order.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// NormalizeBloodGroup upper-cases and trims g. It returns "" and false if the
// result is not one of BloodGroups.
func NormalizeBloodGroup(g string) (string, bool) {
	g = strings.ToUpper(strings.TrimSpace(g))
	for _, bg := range BloodGroups {
		if g == bg {
			return g, true
		}
	}
	return "", false
}
