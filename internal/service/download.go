package service

import "time"

// DownloadFilename names the downloaded letter after the UTC calendar date of t.
func DownloadFilename(t time.Time) string {
	return "RTI_Letter_" + t.UTC().Format("2006-01-02") + ".txt"
}
