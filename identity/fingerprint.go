package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"rowlly_listings/models"
)

var (
	streetReplacements = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"boulevard": "blvd",
		"lane":      "ln",
		"court":     "ct",
		"place":     "pl",
		"circle":    "cir",
		"crescent":  "cres",
		"terrace":   "ter",
		"highway":   "hwy",
		"parkway":   "pkwy",
		"square":    "sq",
		"north":     "n",
		"south":     "s",
		"east":      "e",
		"west":      "w",
		"northeast": "ne",
		"northwest": "nw",
		"southeast": "se",
		"southwest": "sw",
		"apartment": "apt",
		"suite":     "ste",
		"unit":      "unit",
		"floor":     "fl",
		"building":  "bldg",
	}
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Fingerprint identifies a physical home independently of its listing id, so
// two catalog entries for the same house at the same address collide.
func Fingerprint(p models.Property) string {
	normalized := NormalizeAddress(p.Address + " " + p.City + " " + p.State + " " + p.Zip)
	input := fmt.Sprintf("%s|%d|%g|%d|%s",
		normalized,
		p.Bedrooms,
		p.Bathrooms,
		p.SqFt,
		strings.ToLower(string(p.PropertyType)),
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// NormalizeAddress lower-cases an address, strips punctuation and abbreviates
// street words. Replacement is per word so the result does not depend on map
// iteration order.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = nonAlnumRegex.ReplaceAllString(addr, " ")
	words := strings.Fields(addr)
	for i, w := range words {
		if abbrev, ok := streetReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}
