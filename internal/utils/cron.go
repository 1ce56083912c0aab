package utils

import (
	"log"

	"github.com/robfig/cron/v3"
)

// ReminderJobs is the set of scheduled notification jobs.
type ReminderJobs interface {
	SendDailyReminders() int
	SendMonthlyReports() int
}

// StartCronScheduler registers the background jobs and starts the cron
// loop. Reminders go out at 08:00 UTC daily, reports on the first of each
// month.
func StartCronScheduler(jobs ReminderJobs) *cron.Cron {
	cronScheduler := cron.New()
	_, err := cronScheduler.AddFunc("0 8 * * *", func() { jobs.SendDailyReminders() })
	if err != nil {
		log.Fatalf("Failed to schedule reminder job: %v", err)
	}
	_, err = cronScheduler.AddFunc("0 8 1 * *", func() { jobs.SendMonthlyReports() })
	if err != nil {
		log.Fatalf("Failed to schedule monthly report job: %v", err)
	}
	cronScheduler.Start()
	return cronScheduler
}
