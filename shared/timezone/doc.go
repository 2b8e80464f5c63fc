// Package timezone pins every calendar computation to APP_TIMEZONE.
//
// Stay dates are plain YYYY-MM-DD values, so ParseDate and StartOfDay decide which day
// a check-in or check-out falls on and Today decides which bookings the completion job
// closes. Unknown zone names fall back to UTC.
package timezone
