package drivers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// premiumAllowanceGB : au-delà de ce volume de data (en GB) une offre est premium.
const premiumAllowanceGB = 50

var (
	gbPattern    = regexp.MustCompile(`(\d+)gb`)
	valuePattern = regexp.MustCompile(`(?i)(basic|save|4all|lifeline)`)
)

// TierClassifier associe un nom d'offre à un drapeau de tier. Ne panique jamais.
type TierClassifier func(productName string) bool

// Allowance extrait le volume de data d'un nom d'offre.
// unlimited=true pour une offre illimitée ; ok=false si rien n'est exploitable.
func Allowance(productName string) (gb int, unlimited bool, ok bool) {
	name := strings.ToLower(productName)
	if strings.Contains(name, "unlimited") {
		return 0, true, true
	}
	m := gbPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			// trop de chiffres pour un int : volume forcément au-delà du seuil
			return int(^uint(0) >> 1), false, true
		}
		return 0, false, false
	}
	return n, false, true
}

// IsHighTier : offre illimitée ou volume de data strictement supérieur à 50 GB.
func IsHighTier(productName string) bool {
	gb, unlimited, ok := Allowance(productName)
	if !ok {
		return false
	}
	return unlimited || gb > premiumAllowanceGB
}

// IsValueTier : le nom contient basic, save, 4all ou lifeline (casse ignorée).
func IsValueTier(productName string) bool {
	if productName == "" {
		return false
	}
	return valuePattern.MatchString(productName)
}
