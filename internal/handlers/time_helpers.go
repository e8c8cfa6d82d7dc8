package handlers

import (
	"time"

	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/timezone"
)

// Date and time parsing always happens in the business's timezone so "14:00"
// means wall-clock time at the shop, never server time.

func parseDateInBusiness(business *models.Business, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(business.Timezone),
	)
}

func parseDateTimeInBusiness(
	business *models.Business,
	dateStr string,
	timeStr string,
) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02 15:04",
		dateStr+" "+timeStr,
		timezone.Location(business.Timezone),
	)
}
