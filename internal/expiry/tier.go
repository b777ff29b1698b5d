package expiry

import (
	"fmt"
	"strings"
)

// Tier is a notification urgency bucket derived from days until expiry.
type Tier int

// Tiers. The periodic sweep only ever yields the three warning tiers, the
// check on save only Expired and Today.
const (
	TierNone Tier = iota
	TierWeek
	TierThreeDays
	TierTomorrow
	TierExpired
	TierToday
)

var tierNames = map[Tier]string{
	TierNone:      "none",
	TierWeek:      "7-day-warning",
	TierThreeDays: "3-day-warning",
	TierTomorrow:  "1-day-urgent",
	TierExpired:   "expired",
	TierToday:     "today",
}

// Header lines are sent verbatim, Telegram renders the asterisks as bold.
var tierHeaders = map[Tier]string{
	TierWeek:      "🟡 *Scadenza tra 7 giorni*",
	TierThreeDays: "🟠 *Scadenza tra 3 giorni!*",
	TierTomorrow:  "🔴 *Scade DOMANI!*",
	TierExpired:   "🔴 *PRODOTTO SCADUTO!*",
	TierToday:     "🟠 *Scade OGGI!*",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// MarshalText lets tiers appear by name in JSON and log output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Header returns the first caption line for the tier, or "" for TierNone.
func (t Tier) Header() string {
	return tierHeaders[t]
}

// ClassifySweep maps days until expiry to a tier for the periodic sweep.
// Only exact values match: a product is announced on the day it is 7, 3 and
// 1 days out, not on every day below those marks.
func ClassifySweep(delta int) Tier {
	switch delta {
	case 7:
		return TierWeek
	case 3:
		return TierThreeDays
	case 1:
		return TierTomorrow
	default:
		return TierNone
	}
}

// ClassifyOnSave maps days until expiry to a tier for a product that was just
// created or updated.
func ClassifyOnSave(delta int) Tier {
	switch {
	case delta < 0:
		return TierExpired
	case delta == 0:
		return TierToday
	default:
		return TierNone
	}
}

// Caption builds the notification text. rawExpiry is shown exactly as it was
// stored, not reformatted.
func Caption(t Tier, name, rawExpiry string, quantity int) string {
	var b strings.Builder
	b.WriteString(t.Header())
	b.WriteString("\n📦 *")
	b.WriteString(name)
	b.WriteString("*\n📅 Scadenza: *")
	b.WriteString(rawExpiry)
	b.WriteString("*\n🔢 Quantità: *")
	fmt.Fprintf(&b, "%d", quantity)
	b.WriteString("*")
	return b.String()
}
