// Package birthdays selects contacts whose birthday falls within the next
// week. The computation is pure: no clock, no storage.
package birthdays

import (
	"time"

	"github.com/vlasenko/contacts_api/internal/models"
)

const window = 7 * 24 * time.Hour

// Upcoming returns the contacts whose birthday, with the birth year ignored,
// falls within the half-open window [today, today+7).
//
// When the window crosses a year boundary, today, the window end and every
// birthday are shifted back 14 days first so the whole comparison happens
// inside one nominal year. The shift is 14 days rather than 7 so both window
// edges land safely inside the same year after the year replacement.
func Upcoming(contacts []models.Contact, today time.Time) []models.Contact {
	today = truncate(today)
	over := today.Add(window)

	var shift time.Duration
	if today.Year() < over.Year() {
		shift = 14 * 24 * time.Hour
		today = today.Add(-shift)
		over = over.Add(-shift)
	}

	var matched []models.Contact
	for _, contact := range contacts {
		bday := truncate(contact.Birthday).Add(-shift)
		bday = normalizeYear(bday, today.Year())
		if !bday.Before(today) && bday.Before(over) {
			matched = append(matched, contact)
		}
	}
	return matched
}

// normalizeYear moves d into year keeping its month and day. February 29 in
// a non-leap year rolls forward to March 1.
func normalizeYear(d time.Time, year int) time.Time {
	if d.Month() == time.February && d.Day() == 29 && !isLeap(year) {
		return time.Date(year, time.March, 1, 0, 0, 0, 0, d.Location())
	}
	return time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
