// internal/storage/merge.go
package storage

import (
	"strings"
	"unicode"

	"calorie-log/internal/models"
)

// mergeEntries recombines an incoming entry with the existing one for the
// same date. Meal text accumulates (existing first), estimates overwrite
// key-wise, notes append with a newline, other fields take the incoming
// value when it is non-empty.
func mergeEntries(existing, incoming *models.Entry) *models.Entry {
	out := existing.Clone()

	if strings.TrimSpace(incoming.Date) != "" {
		out.Date = incoming.Date
	}
	if incoming.DayType != "" {
		out.DayType = incoming.DayType
	}
	if incoming.Source != "" {
		out.Source = incoming.Source
	}

	for slot, txt := range incoming.MealsText {
		ex := out.MealsText[slot]
		switch {
		case strings.TrimSpace(txt) == "":
			// Blank incoming text leaves the slot alone.
		case strings.TrimSpace(ex) == "":
			out.MealsText[slot] = txt
		default:
			out.MealsText[slot] = strings.TrimRightFunc(ex, unicode.IsSpace) +
				"\n" + strings.TrimLeftFunc(txt, unicode.IsSpace)
		}
	}

	for k, v := range incoming.Estimates {
		out.Estimates[k] = v
	}

	if incoming.Notes != "" {
		if strings.TrimSpace(out.Notes) != "" {
			out.Notes = out.Notes + "\n" + incoming.Notes
		} else {
			out.Notes = incoming.Notes
		}
	}

	return out
}
