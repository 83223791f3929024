// Package jobs runs recurring maintenance work on cron schedules.
package jobs
