// Package geodata is the static district → upazila table for Bangladesh
// served to the client's location pickers.
package geodata

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

type district struct {
	name     string
	upazilas []string
}

// table order is the order Districts returns.
var table = []district{
	{"Dhaka", []string{"Mirpur", "Uttara", "Gulshan", "Banani", "Dhanmondi", "Motijheel", "Old Dhaka"}},
	{"Chittagong", []string{"Chandgaon", "Kotwali", "Double Mooring", "Khulshi", "Panchlaish"}},
	{"Khulna", []string{"Khulna Sadar", "Sonadanga", "Daulatpur", "Khalishpur"}},
	{"Rajshahi", []string{"Rajshahi Sadar", "Boalia", "Motihar"}},
	{"Sylhet", []string{"Sylhet Sadar", "Kotwali", "Jalalabad"}},
	{"Barisal", []string{"Barisal Sadar", "Kotwali", "Babuganj"}},
	{"Rangpur", []string{"Rangpur Sadar", "Kotwali", "Pirgachha"}},
	{"Mymensingh", []string{"Mymensingh Sadar", "Trishal", "Gafargaon"}},
	{"Comilla", []string{"Comilla Sadar", "Kotwali", "Chandina"}},
	{"Narayanganj", []string{"Narayanganj Sadar", "Fatullah", "Bandar"}},
}

// Districts returns the district names. The slice is a copy.
func Districts() []string {
	out := make([]string, len(table))
	for i, d := range table {
		out[i] = d.name
	}
	return out
}

// Upazilas returns the upazilas of district, matched case-insensitively.
// Unknown districts yield an empty, non-nil slice.
func Upazilas(districtName string) []string {
	key := text.Fold(strings.TrimSpace(districtName))
	for _, d := range table {
		if text.Fold(d.name) == key {
			return append([]string(nil), d.upazilas...)
		}
	}
	return []string{}
}

// Known reports whether districtName is in the table.
func Known(districtName string) bool {
	key := text.Fold(strings.TrimSpace(districtName))
	for _, d := range table {
		if text.Fold(d.name) == key {
			return true
		}
	}
	return false
}
